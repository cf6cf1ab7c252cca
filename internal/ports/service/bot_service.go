package service

import (
	"context"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// IBotService обработчик входящих сообщений, общий для всех площадок
type IBotService interface {
	HandleMessage(ctx context.Context, msg *domain.Message) error
}
