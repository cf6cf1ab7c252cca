package service

import (
	"context"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// IMessenger отправка ответов в чат
type IMessenger interface {
	SendText(ctx context.Context, chat domain.ChatRef, text string) error
	// SendImage отправляет результат генерации (http(s), localhost или data:image) с подписью
	SendImage(ctx context.Context, chat domain.ChatRef, imageURL, caption string) error
}

// ISender транспорт одной площадки
type ISender interface {
	SendText(ctx context.Context, chat domain.ChatRef, text string) error
	SendImage(ctx context.Context, chat domain.ChatRef, img domain.OutboundImage, caption string) error
}
