package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgClient "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// лимит подписи к фото в Telegram
const captionLimit = 1024

// SendText отправляет текст ответом на исходное сообщение
func (s *Service) SendText(ctx context.Context, chat domain.ChatRef, text string) error {
	chatID, replyID, err := parseChatRef(chat)
	if err != nil {
		return err
	}

	if _, err := s.Client.SendMessage(ctx, tgClient.SendMessageRequest{
		ChatID:          chatID,
		Text:            text,
		ReplyParameters: tgClient.ReplyTo(replyID),
	}); err != nil {
		s.Log.Error("failed to send message",
			"error", err,
			"chat_id", chatID,
		)
		return fmt.Errorf("failed to send message: %w", err)
	}

	s.Log.Debug("message sent successfully", "chat_id", chatID)
	return nil
}

// SendImage отправляет картинку байтами или ссылкой с подписью
func (s *Service) SendImage(ctx context.Context, chat domain.ChatRef, img domain.OutboundImage, caption string) error {
	chatID, replyID, err := parseChatRef(chat)
	if err != nil {
		return err
	}

	req := tgClient.SendPhotoRequest{
		ChatID:    chatID,
		Caption:   truncateRunes(caption, captionLimit),
		ReplyToID: replyID,
	}
	if img.HasData() {
		req.Photo = img.Data
		req.Filename = img.Filename
	} else {
		req.PhotoURL = img.URL
	}

	if _, err := s.Client.SendPhoto(ctx, req); err != nil {
		s.Log.Error("failed to send photo",
			"error", err,
			"chat_id", chatID,
			"by_url", !img.HasData(),
		)
		return fmt.Errorf("failed to send photo: %w", err)
	}

	s.Log.Debug("photo sent successfully", "chat_id", chatID)
	return nil
}

// AvatarURL ссылка на текущую аватарку пользователя
func (s *Service) AvatarURL(ctx context.Context, userID string) (string, error) {
	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid telegram user id %q: %w", userID, err)
	}

	photos, err := s.Client.GetUserProfilePhotos(ctx, id, 1)
	if err != nil {
		return "", fmt.Errorf("failed to get profile photos: %w", err)
	}
	if len(photos.Photos) == 0 || len(photos.Photos[0]) == 0 {
		return "", fmt.Errorf("user %d has no profile photo", id)
	}

	sizes := photos.Photos[0]
	best := sizes[len(sizes)-1]
	file, err := s.Client.GetFile(ctx, best.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to get avatar file: %w", err)
	}
	return s.Client.FileURL(file.FilePath), nil
}

func parseChatRef(chat domain.ChatRef) (chatID int64, replyID int64, err error) {
	if chat.Platform != domain.PlatformTelegram {
		return 0, 0, fmt.Errorf("%w: %s", domain.ErrUnknownPlatform, chat.Platform)
	}
	chatID, err = strconv.ParseInt(chat.ChatID, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid chat id %q: %w", chat.ChatID, err)
	}
	if chat.ReplyTo != "" {
		replyID, _ = strconv.ParseInt(chat.ReplyTo, 10, 64)
	}
	return chatID, replyID, nil
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
