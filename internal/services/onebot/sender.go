package onebot

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"

	ob "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/onebot"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

func (s *Service) SendText(ctx context.Context, chat domain.ChatRef, text string) error {
	return s.send(ctx, chat, ob.TextSegment(text))
}

// SendImage байты уходят как base64://, ссылки как есть
func (s *Service) SendImage(ctx context.Context, chat domain.ChatRef, img domain.OutboundImage, caption string) error {
	file := img.URL
	if img.HasData() {
		file = "base64://" + base64.StdEncoding.EncodeToString(img.Data)
	}

	segments := []ob.OutSegment{ob.ImageSegment(file)}
	if caption != "" {
		segments = append(segments, ob.TextSegment(caption))
	}
	return s.send(ctx, chat, segments...)
}

func (s *Service) send(ctx context.Context, chat domain.ChatRef, segments ...ob.OutSegment) error {
	if chat.Platform != domain.PlatformOneBot {
		return fmt.Errorf("%w: %s", domain.ErrUnknownPlatform, chat.Platform)
	}
	id, err := strconv.ParseInt(chat.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chat.ChatID, err)
	}

	message := make([]ob.OutSegment, 0, len(segments)+1)
	if chat.ReplyTo != "" {
		message = append(message, ob.ReplySegment(chat.ReplyTo))
	}
	message = append(message, segments...)

	if chat.IsGroup {
		_, err = s.Client.SendGroupMsg(ctx, id, message)
	} else {
		_, err = s.Client.SendPrivateMsg(ctx, id, message)
	}
	if err != nil {
		s.Log.Error("failed to send onebot message",
			"error", err,
			"chat_id", id,
			"group", chat.IsGroup,
		)
		return fmt.Errorf("failed to send onebot message: %w", err)
	}
	return nil
}
