package figurine

import (
	"context"
	"errors"
	"strings"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/services/prompts"
	"github.com/admin/tg-bots/figurine-bot/internal/usecases/figurine/texts"
)

func (s *Service) handleAddPrompt(ctx context.Context, msg *domain.Message, args string) error {
	key, value, ok := prompts.ParseEntry(args)
	if !ok {
		return s.reply(ctx, msg, texts.AddPromptUsage)
	}

	if err := s.Catalog.AddOrUpdate(key, value); err != nil {
		s.Log.Error("failed to save prompt", "error", err, "key", key)
		return s.reply(ctx, msg, texts.SaveFailed)
	}
	return s.reply(ctx, msg, texts.PromptSaved(key, value))
}

func (s *Service) handleListPrompts(ctx context.Context, msg *domain.Message, _ string) error {
	entries := s.Catalog.Entries()
	if len(entries) == 0 {
		return s.reply(ctx, msg, texts.NoPrompts)
	}
	return s.reply(ctx, msg, texts.PromptList(entries))
}

func (s *Service) handleUpdatePrompt(ctx context.Context, msg *domain.Message, args string) error {
	key, value, ok := prompts.ParseEntry(args)
	if !ok {
		return s.reply(ctx, msg, texts.UpdatePromptUsage)
	}

	err := s.Catalog.Update(key, value)
	switch {
	case errors.Is(err, domain.ErrPromptNotFound):
		return s.reply(ctx, msg, texts.PromptToUpdateNotFound(key))
	case err != nil:
		s.Log.Error("failed to update prompt", "error", err, "key", key)
		return s.reply(ctx, msg, texts.SaveFailed)
	}
	return s.reply(ctx, msg, texts.PromptUpdated(key, value))
}

func (s *Service) handleDeletePrompt(ctx context.Context, msg *domain.Message, args string) error {
	key := strings.TrimSpace(args)
	if key == "" {
		return s.reply(ctx, msg, texts.DeletePromptUsage)
	}

	removed, err := s.Catalog.Remove(key)
	switch {
	case errors.Is(err, domain.ErrPromptNotFound):
		return s.reply(ctx, msg, texts.PromptToDeleteNotFound(key))
	case err != nil:
		s.Log.Error("failed to delete prompt", "error", err, "key", key)
		return s.reply(ctx, msg, texts.SaveFailed)
	}
	return s.reply(ctx, msg, texts.PromptDeleted(removed))
}

func (s *Service) handleHelp(ctx context.Context, msg *domain.Message, _ string) error {
	return s.reply(ctx, msg, texts.Help())
}

// handleEffects без аргумента - обзор пресетов, иначе промпт по последнему слову
func (s *Service) handleEffects(ctx context.Context, msg *domain.Message, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return s.reply(ctx, msg, texts.PresetOverview(s.Catalog.Keys()))
	}

	key := fields[len(fields)-1]
	prompt, ok := s.Catalog.Lookup(key)
	if !ok || prompt == "" {
		return s.reply(ctx, msg, texts.PresetNotFound(key))
	}
	return s.reply(ctx, msg, texts.PresetEffect(key, prompt))
}
