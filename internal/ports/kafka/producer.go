package kafka

import (
	"context"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// IEventProducer публикует события генераций
type IEventProducer interface {
	SendGenerationEvent(ctx context.Context, g *domain.Generation) error
	Close() error
}
