package prompts

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/repository"
)

// Catalog список промптов вида "ключ:промпт" и индекс по ключу.
// Порядок записей сохраняется, при дублях ключа выигрывает последняя запись.
type Catalog struct {
	settings repository.ISettingsRepo
	log      *slog.Logger

	mu      sync.RWMutex
	entries []string
	lookup  map[string]string
}

// New создаёт каталог и строит индекс из сохранённого списка
func New(settings repository.ISettingsRepo, log *slog.Logger) *Catalog {
	c := &Catalog{
		settings: settings,
		log:      log,
	}
	c.Rebuild(settings.Get().PromptList)
	return c
}

// Rebuild перестраивает индекс. Записи без двоеточия пропускаются.
func (c *Catalog) Rebuild(entries []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rebuildLocked(entries)
}

func (c *Catalog) rebuildLocked(entries []string) {
	c.entries = slices.Clone(entries)
	c.lookup = make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := splitEntry(entry)
		if !ok {
			c.log.Warn("prompt entry without separator skipped", "entry", entry)
			continue
		}
		c.lookup[key] = value
	}
}

// AddOrUpdate заменяет запись с тем же ключом или добавляет новую в конец
func (c *Catalog) AddOrUpdate(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := slices.Clone(c.entries)
	entry := key + ":" + value
	if idx := c.indexLocked(key); idx >= 0 {
		entries[idx] = entry
	} else {
		entries = append(entries, entry)
	}
	return c.commitLocked(entries)
}

// Update заменяет существующую запись, ErrPromptNotFound если её нет
func (c *Catalog) Update(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(key)
	if idx < 0 {
		return domain.ErrPromptNotFound
	}
	entries := slices.Clone(c.entries)
	entries[idx] = key + ":" + value
	return c.commitLocked(entries)
}

// Remove удаляет запись и возвращает её исходный текст
func (c *Catalog) Remove(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexLocked(key)
	if idx < 0 {
		return "", domain.ErrPromptNotFound
	}
	removed := c.entries[idx]
	entries := slices.Delete(slices.Clone(c.entries), idx, idx+1)
	if err := c.commitLocked(entries); err != nil {
		return "", err
	}
	return removed, nil
}

func (c *Catalog) Lookup(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.lookup[key]
	return v, ok
}

func (c *Catalog) Entries() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.entries)
}

// Keys отсортированные ключи индекса
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.lookup))
	for k := range c.lookup {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// indexLocked позиция последней записи с ключом key, -1 если нет
func (c *Catalog) indexLocked(key string) int {
	for i := len(c.entries) - 1; i >= 0; i-- {
		if k, _, ok := splitEntry(c.entries[i]); ok && k == key {
			return i
		}
	}
	return -1
}

// commitLocked индекс перестраивается и при ошибке записи: хранилище настроек
// уже держит новый список в памяти, и каталог не должен с ним расходиться
func (c *Catalog) commitLocked(entries []string) error {
	err := c.settings.SavePromptList(entries)
	c.rebuildLocked(entries)
	if err != nil {
		return fmt.Errorf("failed to persist prompts: %w", err)
	}
	return nil
}

// splitEntry делит "ключ:промпт" по первому двоеточию
func splitEntry(entry string) (string, string, bool) {
	key, value, ok := strings.Cut(entry, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.TrimSpace(value), true
}

// ParseEntry разбирает пользовательский ввод "ключ:промпт", допускает полноширинное двоеточие
func ParseEntry(raw string) (string, string, bool) {
	raw = strings.Replace(strings.TrimSpace(raw), "：", ":", 1)
	key, value, ok := splitEntry(raw)
	if !ok || key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}
