package generationRepo

import (
	"context"
	"fmt"
	"time"

	ports "github.com/admin/tg-bots/figurine-bot/internal/ports/repository"

	"log/slog"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/persistence"
)

type generationColumns struct {
	TableName    string
	ID           string
	Platform     string
	ChatID       string
	SenderID     string
	GroupID      string
	Mode         string
	Label        string
	ImageCount   string
	Backend      string
	Status       string
	ImageURL     string
	ArchiveKey   string
	ErrorMessage string
	ElapsedMs    string
	CreatedAt    string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns generationColumns
}

// New создаёт репозиторий журнала генераций
func New(db persistence.Persistence, log *slog.Logger) ports.IGenerationRepo {
	cols := generationColumns{
		TableName:    "generations",
		ID:           "id",
		Platform:     "platform",
		ChatID:       "chat_id",
		SenderID:     "sender_id",
		GroupID:      "group_id",
		Mode:         "mode",
		Label:        "label",
		ImageCount:   "image_count",
		Backend:      "backend",
		Status:       "status",
		ImageURL:     "image_url",
		ArchiveKey:   "archive_key",
		ErrorMessage: "error_message",
		ElapsedMs:    "elapsed_ms",
		CreatedAt:    "created_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
	}
}

func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.Platform,
		r.columns.ChatID,
		r.columns.SenderID,
		r.columns.GroupID,
		r.columns.Mode,
		r.columns.Label,
		r.columns.ImageCount,
		r.columns.Backend,
		r.columns.Status,
		r.columns.ImageURL,
		r.columns.ArchiveKey,
		r.columns.ErrorMessage,
		r.columns.ElapsedMs,
		r.columns.CreatedAt)
}

// Create записывает завершённую генерацию
func (r *Repository) Create(ctx context.Context, g *domain.Generation) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		r.columns.TableName,
		r.allColumns())
	err := r.db.Exec(ctx, query,
		g.ID,
		g.Platform,
		g.ChatID,
		g.SenderID,
		g.GroupID,
		g.Mode,
		g.Label,
		g.ImageCount,
		g.Backend,
		g.Status,
		g.ImageURL,
		g.ArchiveKey,
		g.ErrorMessage,
		g.ElapsedMs,
		g.CreatedAt)
	if err != nil {
		r.Log.Error("failed to create generation", "error", err, "id", g.ID, "sender_id", g.SenderID)
		return fmt.Errorf("failed to create generation: %w", err)
	}
	r.Log.Debug("generation recorded", "id", g.ID, "status", g.Status)
	return nil
}

// ListRecent последние генерации, новые первыми
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*domain.Generation, error) {
	var generations []*domain.Generation
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC LIMIT $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.CreatedAt)
	if err := r.db.Select(ctx, &generations, query, limit); err != nil {
		r.Log.Error("failed to list generations", "error", err, "limit", limit)
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return generations, nil
}

// DeleteOlderThan чистит журнал, возвращает количество удалённых строк
func (r *Repository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s < $1`,
		r.columns.TableName,
		r.columns.CreatedAt)
	deleted, err := r.db.ExecWithResult(ctx, query, before)
	if err != nil {
		r.Log.Error("failed to prune generations", "error", err, "before", before)
		return 0, fmt.Errorf("failed to prune generations: %w", err)
	}
	r.Log.Info("generations pruned", "deleted", deleted, "before", before)
	return deleted, nil
}
