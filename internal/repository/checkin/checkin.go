package checkinRepo

import (
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/jsonfile"
	ports "github.com/admin/tg-bots/figurine-bot/internal/ports/repository"
)

type Repository struct {
	store *jsonfile.Store[map[string]string]
	Log   *slog.Logger
}

// New создаёт журнал отметок поверх user_checkin.json
func New(store *jsonfile.Store[map[string]string], log *slog.Logger) ports.ICheckinRepo {
	return &Repository{
		store: store,
		Log:   log,
	}
}

func (r *Repository) LastDate(userID string) string {
	var date string
	r.store.Read(func(m map[string]string) {
		date = m[userID]
	})
	return date
}

func (r *Repository) Mark(userID, date string) error {
	err := r.store.Update(func(m *map[string]string) bool {
		(*m)[userID] = date
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to persist checkin for %s: %w", userID, err)
	}
	return nil
}

// PruneBefore даты в формате YYYY-MM-DD сравниваются лексикографически
func (r *Repository) PruneBefore(date string) (int, error) {
	removed := 0
	err := r.store.Update(func(m *map[string]string) bool {
		for userID, last := range *m {
			if last < date {
				delete(*m, userID)
				removed++
			}
		}
		return removed > 0
	})
	if err != nil {
		return removed, fmt.Errorf("failed to persist checkin prune: %w", err)
	}
	return removed, nil
}
