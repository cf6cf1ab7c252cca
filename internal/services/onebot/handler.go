package onebot

import (
	"context"
	"strconv"
	"strings"

	ob "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/onebot"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

func (s *Service) toMessage(ctx context.Context, event *ob.Event) *domain.Message {
	selfID := event.SelfID
	if selfID == 0 {
		selfID = s.Client.SelfID()
	}
	if selfID != 0 && event.UserID == selfID {
		return nil
	}
	self := strconv.FormatInt(selfID, 10)

	msg := &domain.Message{
		ID:         event.MessageID,
		Platform:   domain.PlatformOneBot,
		SenderID:   strconv.FormatInt(event.UserID, 10),
		SenderName: event.Sender.DisplayName(),
		Addressed:  !event.IsGroup(),
	}
	if event.IsGroup() {
		msg.GroupID = strconv.FormatInt(event.GroupID, 10)
		msg.ChatID = msg.GroupID
	} else {
		msg.ChatID = msg.SenderID
	}

	var (
		text    strings.Builder
		other   []domain.Segment
		replyID string
	)
	for _, seg := range event.Segments {
		switch seg.Type {
		case ob.SegmentText:
			text.WriteString(seg.Text)
		case ob.SegmentAt:
			switch seg.QQ {
			case self:
				msg.Addressed = true
			case "all", "":
			default:
				other = append(other, domain.Segment{Type: domain.SegmentMention, UserID: seg.QQ})
			}
		case ob.SegmentImage:
			other = append(other, imageSegment(seg))
		case ob.SegmentReply:
			replyID = seg.ReplyID
		}
	}

	msg.Text = strings.TrimSpace(text.String())
	for _, prefix := range s.WakePrefixes {
		if prefix != "" && strings.HasPrefix(msg.Text, prefix) {
			msg.Addressed = true
			msg.Text = strings.TrimSpace(strings.TrimPrefix(msg.Text, prefix))
			break
		}
	}

	if msg.Text == "" {
		return msg
	}

	msg.Segments = append([]domain.Segment{{Type: domain.SegmentText, Text: msg.Text}}, other...)
	if replyID != "" {
		if quote, ok := s.quote(ctx, replyID); ok {
			msg.Segments = append(msg.Segments, quote)
		}
	}
	return msg
}

// quote загружает цитируемое сообщение и оставляет из него только картинки
func (s *Service) quote(ctx context.Context, replyID string) (domain.Segment, bool) {
	stored, err := s.Client.GetMsg(ctx, replyID)
	if err != nil {
		s.Log.Warn("failed to fetch replied message", "error", err, "reply_id", replyID)
		return domain.Segment{}, false
	}

	var images []domain.Segment
	for _, seg := range stored.Segments {
		if seg.Type == ob.SegmentImage {
			images = append(images, imageSegment(seg))
		}
	}
	if len(images) == 0 {
		return domain.Segment{}, false
	}
	return domain.Segment{Type: domain.SegmentQuote, Quoted: images}, true
}

func imageSegment(seg ob.Segment) domain.Segment {
	return domain.Segment{Type: domain.SegmentImage, ImageURL: seg.URL, ImageFile: seg.File}
}
