package counterRepo

import (
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/jsonfile"
	ports "github.com/admin/tg-bots/figurine-bot/internal/ports/repository"
)

type Repository struct {
	store *jsonfile.Store[map[string]int]
	Log   *slog.Logger
}

// New создаёт счётчики поверх JSON-файла (user_counts.json или group_counts.json)
func New(store *jsonfile.Store[map[string]int], log *slog.Logger) ports.ICounterRepo {
	return &Repository{
		store: store,
		Log:   log,
	}
}

func (r *Repository) Get(id string) int {
	var count int
	r.store.Read(func(m map[string]int) {
		count = m[id]
	})
	return count
}

func (r *Repository) Decrement(id string) (int, error) {
	var count int
	err := r.store.Update(func(m *map[string]int) bool {
		count = (*m)[id]
		if count <= 0 {
			count = 0
			return false
		}
		count--
		(*m)[id] = count
		return true
	})
	if err != nil {
		return count, fmt.Errorf("failed to persist decrement for %s: %w", id, err)
	}
	return count, nil
}

func (r *Repository) Add(id string, amount int) (int, error) {
	var count int
	err := r.store.Update(func(m *map[string]int) bool {
		count = (*m)[id] + amount
		(*m)[id] = count
		return true
	})
	if err != nil {
		return count, fmt.Errorf("failed to persist grant for %s: %w", id, err)
	}
	r.Log.Debug("counter increased", "id", id, "amount", amount, "total", count)
	return count, nil
}
