package settingsRepo

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/storage/jsonfile"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	ports "github.com/admin/tg-bots/figurine-bot/internal/ports/repository"
)

type Repository struct {
	store *jsonfile.Store[domain.Settings]
	Log   *slog.Logger
}

// New открывает settings.json. Если файла ещё нет, он создаётся из defaults.
func New(store *jsonfile.Store[domain.Settings], defaults domain.Settings, log *slog.Logger) (ports.ISettingsRepo, error) {
	existed, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	r := &Repository{
		store: store,
		Log:   log,
	}

	if !existed {
		err := store.Update(func(s *domain.Settings) bool {
			s.APIKeys = slices.Clone(defaults.APIKeys)
			s.PromptList = slices.Clone(defaults.PromptList)
			return true
		})
		if err != nil {
			log.Warn("failed to write initial settings, continuing in memory", "error", err)
		}
		log.Info("settings seeded from defaults",
			"api_keys", len(defaults.APIKeys),
			"prompts", len(defaults.PromptList))
	}

	return r, nil
}

func (r *Repository) Get() domain.Settings {
	var out domain.Settings
	r.store.Read(func(s domain.Settings) {
		out = domain.Settings{
			APIKeys:    slices.Clone(s.APIKeys),
			PromptList: slices.Clone(s.PromptList),
		}
	})
	return out
}

func (r *Repository) SaveAPIKeys(keys []string) error {
	err := r.store.Update(func(s *domain.Settings) bool {
		s.APIKeys = slices.Clone(keys)
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to save api keys: %w", err)
	}
	return nil
}

func (r *Repository) SavePromptList(entries []string) error {
	err := r.store.Update(func(s *domain.Settings) bool {
		s.PromptList = slices.Clone(entries)
		return true
	})
	if err != nil {
		return fmt.Errorf("failed to save prompt list: %w", err)
	}
	return nil
}
