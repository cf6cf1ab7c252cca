package domain

// Platform площадка, с которой пришло сообщение
type Platform string

const (
	PlatformTelegram Platform = "telegram"
	PlatformOneBot   Platform = "onebot"
)

func (p Platform) String() string {
	return string(p)
}

type SegmentType string

const (
	SegmentText    SegmentType = "text"
	SegmentImage   SegmentType = "image"
	SegmentMention SegmentType = "mention"
	SegmentQuote   SegmentType = "quote"
)

// Segment часть входящего сообщения. Заполняются только поля, относящиеся к Type.
type Segment struct {
	Type SegmentType

	Text string

	// ImageURL и ImageFile - два независимых источника одной картинки,
	// ImageFile используется, если по ImageURL загрузить не удалось
	ImageURL  string
	ImageFile string

	UserID string

	// Quoted сегменты цитируемого сообщения
	Quoted []Segment
}

// Message платформо-независимое входящее сообщение
type Message struct {
	ID         string
	Platform   Platform
	ChatID     string
	SenderID   string
	SenderName string
	// GroupID пустой для личных сообщений
	GroupID string
	// Addressed сообщение адресовано боту (личка, упоминание или префикс пробуждения)
	Addressed bool
	// Text текст сообщения без префикса пробуждения и упоминания бота
	Text     string
	Segments []Segment
}

func (m *Message) IsGroup() bool {
	return m.GroupID != ""
}

// Reply адрес для ответа в тот же чат
func (m *Message) Reply() ChatRef {
	return ChatRef{
		Platform: m.Platform,
		ChatID:   m.ChatID,
		IsGroup:  m.IsGroup(),
		ReplyTo:  m.ID,
	}
}

// ChatRef адрес исходящего сообщения
type ChatRef struct {
	Platform Platform
	ChatID   string
	IsGroup  bool
	ReplyTo  string
}

// OutboundImage картинка для отправки: либо ссылка, либо байты
type OutboundImage struct {
	URL      string
	Data     []byte
	Filename string
}

func (i OutboundImage) HasData() bool {
	return len(i.Data) > 0
}
