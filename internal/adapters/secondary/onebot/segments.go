package onebot

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var cqPattern = regexp.MustCompile(`\[CQ:([a-zA-Z0-9_]+)(?:,([^\]]*))?\]`)

var cqUnescaper = strings.NewReplacer("&#91;", "[", "&#93;", "]", "&#44;", ",", "&amp;", "&")

// parseMessage разбирает поле message: массив сегментов или CQ-строку.
// Если не подходит ни то, ни другое, используется raw_message как текст.
func parseMessage(raw json.RawMessage, rawMessage string) []Segment {
	if len(raw) > 0 && string(raw) != "null" {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return parseCQ(s)
		}

		var items []struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		if err := json.Unmarshal(raw, &items); err == nil {
			segments := make([]Segment, 0, len(items))
			for _, item := range items {
				if seg, ok := segmentFromData(item.Type, func(key string) string {
					return dataString(item.Data[key])
				}); ok {
					segments = append(segments, seg)
				}
			}
			return segments
		}
	}

	if strings.TrimSpace(rawMessage) == "" {
		return nil
	}
	return parseCQ(rawMessage)
}

func parseCQ(content string) []Segment {
	matches := cqPattern.FindAllStringSubmatchIndex(content, -1)
	segments := make([]Segment, 0, len(matches)+1)
	cursor := 0

	for _, m := range matches {
		if m[0] > cursor {
			segments = append(segments, Segment{Type: SegmentText, Text: cqUnescaper.Replace(content[cursor:m[0]])})
		}

		segType := content[m[2]:m[3]]
		params := ""
		if m[4] >= 0 {
			params = content[m[4]:m[5]]
		}
		values := parseCQParams(params)
		if seg, ok := segmentFromData(segType, func(key string) string { return values[key] }); ok {
			segments = append(segments, seg)
		}
		cursor = m[1]
	}

	if cursor < len(content) {
		segments = append(segments, Segment{Type: SegmentText, Text: cqUnescaper.Replace(content[cursor:])})
	}
	return segments
}

func parseCQParams(params string) map[string]string {
	result := make(map[string]string)
	for _, item := range strings.Split(params, ",") {
		key, value, ok := strings.Cut(item, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		result[key] = cqUnescaper.Replace(strings.TrimSpace(value))
	}
	return result
}

// segmentFromData неизвестные типы сегментов (face, json, record...) пропускаются.
// Текст остаётся как есть: пробелы на стыке с картинкой разделяют слова.
func segmentFromData(segType string, get func(key string) string) (Segment, bool) {
	field := func(key string) string { return strings.TrimSpace(get(key)) }

	switch segType {
	case SegmentText:
		return Segment{Type: SegmentText, Text: get("text")}, true
	case SegmentAt:
		return Segment{Type: SegmentAt, QQ: field("qq")}, true
	case SegmentImage:
		return Segment{Type: SegmentImage, URL: field("url"), File: field("file")}, true
	case SegmentReply:
		return Segment{Type: SegmentReply, ReplyID: field("id")}, true
	default:
		return Segment{}, false
	}
}

func dataString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseJSONInt64 id бывают и числом, и строкой
func parseJSONInt64(raw json.RawMessage) (int64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}

	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}
	return 0, fmt.Errorf("cannot parse as int64: %s", string(raw))
}

func parseJSONString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func parseEvent(raw *rawEvent) (*Event, error) {
	userID, err := parseJSONInt64(raw.UserID)
	if err != nil {
		return nil, fmt.Errorf("user_id: %w", err)
	}
	groupID, err := parseJSONInt64(raw.GroupID)
	if err != nil {
		return nil, fmt.Errorf("group_id: %w", err)
	}
	selfID, err := parseJSONInt64(raw.SelfID)
	if err != nil {
		return nil, fmt.Errorf("self_id: %w", err)
	}

	return &Event{
		MessageType: raw.MessageType,
		SubType:     raw.SubType,
		MessageID:   parseJSONString(raw.MessageID),
		UserID:      userID,
		GroupID:     groupID,
		SelfID:      selfID,
		Sender:      parseSender(raw.Sender, userID),
		Segments:    parseMessage(raw.Message, raw.RawMessage),
		RawMessage:  raw.RawMessage,
	}, nil
}

func parseSender(raw rawSender, fallbackID int64) Sender {
	id, err := parseJSONInt64(raw.UserID)
	if err != nil || id == 0 {
		id = fallbackID
	}
	return Sender{UserID: id, Nickname: raw.Nickname, Card: raw.Card}
}
