package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// HandleUpdate переводит обновление в domain.Message и передаёт его обработчику
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}
	if update.Message == nil {
		return nil
	}
	if s.Bot == nil {
		return fmt.Errorf("bot service is not set")
	}

	msg := s.toMessage(ctx, update.Message)
	if msg == nil {
		return nil
	}
	return s.Bot.HandleMessage(ctx, msg)
}

func (s *Service) toMessage(ctx context.Context, m *domain.TelegramMessage) *domain.Message {
	if m.From == nil || m.From.IsBot || m.Chat == nil {
		return nil
	}

	text, entities := m.Content()
	msg := &domain.Message{
		ID:         strconv.FormatInt(m.MessageID, 10),
		Platform:   domain.PlatformTelegram,
		ChatID:     strconv.FormatInt(m.Chat.ID, 10),
		SenderID:   strconv.FormatInt(m.From.ID, 10),
		SenderName: displayName(m.From),
		Addressed:  m.Chat.IsPrivate(),
	}
	if !m.Chat.IsPrivate() {
		msg.GroupID = msg.ChatID
	}
	if s.isReplyToMe(m) {
		msg.Addressed = true
	}

	botMention := ""
	if s.me != nil && s.me.Username != nil {
		botMention = "@" + *s.me.Username
	}

	var mentions []domain.Segment
	cleaned := cutEntities(text, entities, func(e domain.Entity, value string) bool {
		switch {
		case e.Type == "text_mention" && e.User != nil:
			mentions = append(mentions, domain.Segment{
				Type:   domain.SegmentMention,
				UserID: strconv.FormatInt(e.User.ID, 10),
			})
			return true
		case e.Type == "mention" && botMention != "" && strings.EqualFold(value, botMention):
			msg.Addressed = true
			return true
		}
		return false
	})

	cleaned = strings.TrimSpace(cleaned)
	if strings.HasPrefix(cleaned, "/") {
		msg.Addressed = true
		cleaned = stripBotSuffix(strings.TrimPrefix(cleaned, "/"), botMention)
	}
	msg.Text = cleaned

	if msg.Text == "" {
		return msg
	}

	msg.Segments = append(msg.Segments, domain.Segment{Type: domain.SegmentText, Text: msg.Text})
	if seg, ok := s.photoSegment(ctx, m); ok {
		msg.Segments = append(msg.Segments, seg)
	}
	msg.Segments = append(msg.Segments, mentions...)

	if reply := m.ReplyToMessage; reply != nil {
		if seg, ok := s.photoSegment(ctx, reply); ok {
			msg.Segments = append(msg.Segments, domain.Segment{
				Type:   domain.SegmentQuote,
				Quoted: []domain.Segment{seg},
			})
		}
	}

	return msg
}

// photoSegment getFile вызывается только для сообщений с текстом, иначе картинка не понадобится
func (s *Service) photoSegment(ctx context.Context, m *domain.TelegramMessage) (domain.Segment, bool) {
	fileID := m.LargestPhoto()
	if fileID == "" {
		return domain.Segment{}, false
	}

	file, err := s.Client.GetFile(ctx, fileID)
	if err != nil {
		s.Log.Warn("failed to resolve photo", "error", err, "message_id", m.MessageID)
		return domain.Segment{}, false
	}
	return domain.Segment{Type: domain.SegmentImage, ImageURL: s.Client.FileURL(file.FilePath)}, true
}

func (s *Service) isReplyToMe(m *domain.TelegramMessage) bool {
	return s.me != nil && m.ReplyToMessage != nil && m.ReplyToMessage.From != nil &&
		m.ReplyToMessage.From.ID == s.me.ID
}

// cutEntities вырезает из текста сущности, для которых drop вернул true.
// Смещения сущностей в Telegram считаются в UTF-16.
func cutEntities(text string, entities []domain.Entity, drop func(e domain.Entity, value string) bool) string {
	if len(entities) == 0 {
		return text
	}

	units := utf16.Encode([]rune(text))
	removed := make([]bool, len(units))
	for _, e := range entities {
		start, end := e.Offset, e.Offset+e.Length
		if start < 0 || end > len(units) || start >= end {
			continue
		}
		if drop(e, string(utf16.Decode(units[start:end]))) {
			for i := start; i < end; i++ {
				removed[i] = true
			}
		}
	}

	kept := make([]uint16, 0, len(units))
	for i, u := range units {
		if !removed[i] {
			kept = append(kept, u)
		}
	}
	return string(utf16.Decode(kept))
}

// stripBotSuffix "lm帮助@my_bot args" -> "lm帮助 args"
func stripBotSuffix(text, botMention string) string {
	if botMention == "" {
		return text
	}
	head, rest, found := strings.Cut(text, " ")
	if idx := strings.Index(strings.ToLower(head), strings.ToLower(botMention)); idx > 0 {
		head = head[:idx]
	}
	if !found {
		return head
	}
	return head + " " + rest
}

func displayName(u *domain.TelegramUser) string {
	name := u.FirstName
	if u.LastName != nil && *u.LastName != "" {
		name += " " + *u.LastName
	}
	if name == "" {
		return username(u)
	}
	return name
}

func username(u *domain.TelegramUser) string {
	if u.Username == nil {
		return ""
	}
	return *u.Username
}
