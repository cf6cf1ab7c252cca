package repository

import (
	"context"
	"time"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// IGenerationRepo журнал генераций
type IGenerationRepo interface {
	Create(ctx context.Context, g *domain.Generation) error
	ListRecent(ctx context.Context, limit int) ([]*domain.Generation, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}
