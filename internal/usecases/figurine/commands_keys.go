package figurine

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/usecases/figurine/texts"
)

func (s *Service) handleAddKeys(ctx context.Context, msg *domain.Message, args string) error {
	candidates := strings.Fields(args)
	if len(candidates) == 0 {
		return s.reply(ctx, msg, texts.AddKeyUsage)
	}

	s.keysMu.Lock()
	defer s.keysMu.Unlock()

	keys := s.Settings.Get().APIKeys
	added := 0
	for _, key := range candidates {
		if slices.Contains(keys, key) {
			continue
		}
		keys = append(keys, key)
		added++
	}

	if err := s.saveKeysLocked(keys); err != nil {
		return s.reply(ctx, msg, texts.SaveFailed)
	}
	return s.reply(ctx, msg, texts.KeysAdded(added, len(keys)))
}

func (s *Service) handleListKeys(ctx context.Context, msg *domain.Message, _ string) error {
	keys := s.Settings.Get().APIKeys
	if len(keys) == 0 {
		return s.reply(ctx, msg, texts.NoKeys)
	}

	masked := make([]string, 0, len(keys))
	for _, key := range keys {
		masked = append(masked, maskKey(key))
	}
	return s.reply(ctx, msg, texts.KeyList(masked))
}

// handleDeleteKey "all" или номер из списка, начиная с 1
func (s *Service) handleDeleteKey(ctx context.Context, msg *domain.Message, args string) error {
	s.keysMu.Lock()
	defer s.keysMu.Unlock()

	keys := s.Settings.Get().APIKeys

	if strings.EqualFold(args, "all") {
		if err := s.saveKeysLocked(nil); err != nil {
			return s.reply(ctx, msg, texts.SaveFailed)
		}
		return s.reply(ctx, msg, texts.AllKeysDeleted(len(keys)))
	}

	idx, err := strconv.Atoi(args)
	if err != nil || idx < 1 || idx > len(keys) || strings.HasPrefix(args, "+") {
		return s.reply(ctx, msg, texts.DeleteKeyUsage)
	}

	removed := keys[idx-1]
	if err := s.saveKeysLocked(slices.Delete(slices.Clone(keys), idx-1, idx)); err != nil {
		return s.reply(ctx, msg, texts.SaveFailed)
	}
	return s.reply(ctx, msg, texts.KeyDeleted(keyPrefix(removed)))
}

// saveKeysLocked пул повторяет настройки в памяти, даже если запись на диск не удалась
func (s *Service) saveKeysLocked(keys []string) error {
	err := s.Settings.SaveAPIKeys(keys)
	s.Keys.Replace(keys)
	if err != nil {
		s.Log.Error("failed to persist api keys", "error", err)
		return err
	}
	s.Log.Info("api keys updated", "count", len(keys))
	return nil
}

func maskKey(key string) string {
	return keyPrefix(key) + "..." + key[max(0, len(key)-4):]
}

func keyPrefix(key string) string {
	return key[:min(8, len(key))]
}
