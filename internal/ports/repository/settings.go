package repository

import "github.com/admin/tg-bots/figurine-bot/internal/domain"

// ISettingsRepo ключи API и список промптов
type ISettingsRepo interface {
	Get() domain.Settings
	SaveAPIKeys(keys []string) error
	SavePromptList(entries []string) error
}
