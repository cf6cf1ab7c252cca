package domain

// дока - https://core.telegram.org/bots/api

// Update - входящее обновление от Telegram Bot API
type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *TelegramMessage `json:"message,omitempty"`
}

// TelegramMessage - сообщение от Telegram Bot API
type TelegramMessage struct {
	MessageID       int64            `json:"message_id"`
	From            *TelegramUser    `json:"from,omitempty"`
	Chat            *Chat            `json:"chat"`
	Date            int64            `json:"date"`
	Text            *string          `json:"text,omitempty"`
	Caption         *string          `json:"caption,omitempty"`
	Entities        []Entity         `json:"entities,omitempty"`
	CaptionEntities []Entity         `json:"caption_entities,omitempty"`
	Photo           []PhotoSize      `json:"photo,omitempty"`
	Sticker         *Sticker         `json:"sticker,omitempty"`
	ReplyToMessage  *TelegramMessage `json:"reply_to_message,omitempty"`
}

// Content текст или подпись к медиа вместе с их сущностями
func (m *TelegramMessage) Content() (string, []Entity) {
	if m.Text != nil {
		return *m.Text, m.Entities
	}
	if m.Caption != nil {
		return *m.Caption, m.CaptionEntities
	}
	return "", nil
}

// LargestPhoto file_id самой крупной версии фото (или статичного стикера)
func (m *TelegramMessage) LargestPhoto() string {
	if len(m.Photo) > 0 {
		best := m.Photo[0]
		for _, p := range m.Photo[1:] {
			if p.Width*p.Height > best.Width*best.Height {
				best = p
			}
		}
		return best.FileID
	}
	if m.Sticker != nil && !m.Sticker.IsAnimated && !m.Sticker.IsVideo {
		return m.Sticker.FileID
	}
	return ""
}

// TelegramUser - пользователь Telegram
type TelegramUser struct {
	ID        int64   `json:"id"`
	IsBot     bool    `json:"is_bot"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name,omitempty"`
	Username  *string `json:"username,omitempty"`
}

// Chat - чат в Telegram
type Chat struct {
	ID    int64   `json:"id"`
	Type  string  `json:"type"` // "private", "group", "supergroup", "channel"
	Title *string `json:"title,omitempty"`
}

func (c *Chat) IsPrivate() bool {
	return c.Type == "private"
}

// Entity - сущность в сообщении (команда, упоминание и т.д.)
type Entity struct {
	Type   string        `json:"type"`   // "bot_command", "mention", "text_mention" и т.д.
	Offset int           `json:"offset"` // смещение в UTF-16 кодовых единицах
	Length int           `json:"length"` // длина в UTF-16 кодовых единицах
	User   *TelegramUser `json:"user,omitempty"`
}

type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int    `json:"file_size,omitempty"`
}

type Sticker struct {
	FileID     string `json:"file_id"`
	IsAnimated bool   `json:"is_animated"`
	IsVideo    bool   `json:"is_video"`
}

// TelegramFile ответ getFile
type TelegramFile struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size,omitempty"`
}

// UserProfilePhotos ответ getUserProfilePhotos
type UserProfilePhotos struct {
	TotalCount int           `json:"total_count"`
	Photos     [][]PhotoSize `json:"photos"`
}
