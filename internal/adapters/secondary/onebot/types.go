package onebot

import (
	"encoding/json"
	"strings"
)

const (
	SegmentText  = "text"
	SegmentAt    = "at"
	SegmentImage = "image"
	SegmentReply = "reply"
)

// Segment входящий сегмент сообщения в разобранном виде
type Segment struct {
	Type    string
	Text    string
	QQ      string
	URL     string
	File    string
	ReplyID string
}

type Sender struct {
	UserID   int64
	Nickname string
	Card     string
}

// DisplayName карточка в группе, иначе ник
func (s Sender) DisplayName() string {
	if s.Card != "" {
		return s.Card
	}
	return s.Nickname
}

// Event событие message от реализации OneBot
type Event struct {
	MessageType string
	SubType     string
	MessageID   string
	UserID      int64
	GroupID     int64
	SelfID      int64
	Sender      Sender
	Segments    []Segment
	RawMessage  string
}

func (e *Event) IsGroup() bool {
	return e.MessageType == "group"
}

// StoredMessage ответ get_msg
type StoredMessage struct {
	MessageID string
	Sender    Sender
	Segments  []Segment
}

// OutSegment исходящий сегмент в формате массива
type OutSegment struct {
	Type string            `json:"type"`
	Data map[string]string `json:"data"`
}

func TextSegment(text string) OutSegment {
	return OutSegment{Type: SegmentText, Data: map[string]string{"text": text}}
}

// ImageSegment file: http(s) ссылка, file:// путь или base64://
func ImageSegment(file string) OutSegment {
	return OutSegment{Type: SegmentImage, Data: map[string]string{"file": file}}
}

func ReplySegment(messageID string) OutSegment {
	return OutSegment{Type: SegmentReply, Data: map[string]string{"id": messageID}}
}

type rawEvent struct {
	PostType    string          `json:"post_type"`
	MessageType string          `json:"message_type"`
	SubType     string          `json:"sub_type"`
	MessageID   json.RawMessage `json:"message_id"`
	UserID      json.RawMessage `json:"user_id"`
	GroupID     json.RawMessage `json:"group_id"`
	SelfID      json.RawMessage `json:"self_id"`
	RawMessage  string          `json:"raw_message"`
	Message     json.RawMessage `json:"message"`
	Sender      rawSender       `json:"sender"`
	Echo        string          `json:"echo"`
}

type rawSender struct {
	UserID   json.RawMessage `json:"user_id"`
	Nickname string          `json:"nickname"`
	Card     string          `json:"card"`
}

type apiRequest struct {
	Action string `json:"action"`
	Params any    `json:"params"`
	Echo   string `json:"echo"`
}

type apiResponse struct {
	Status  string          `json:"status"`
	RetCode json.RawMessage `json:"retcode"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Wording string          `json:"wording"`
	Echo    string          `json:"echo"`
}

func (r *apiResponse) failed() bool {
	if strings.EqualFold(r.Status, "failed") {
		return true
	}
	code, err := parseJSONInt64(r.RetCode)
	return err == nil && code != 0
}

func (r *apiResponse) reason() string {
	if r.Wording != "" {
		return r.Wording
	}
	if r.Message != "" {
		return r.Message
	}
	return r.Status
}
