package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	tgClient "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/cache"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/service"
)

// Service связывает Telegram Bot API с платформо-независимым обработчиком сообщений
type Service struct {
	Client *tgClient.Client
	Bot    service.IBotService
	Dedup  cache.IDedupCache
	Log    *slog.Logger

	me      *domain.TelegramUser
	workers *errgroup.Group
}

func New(client *tgClient.Client, dedup cache.IDedupCache, workers int, log *slog.Logger) *Service {
	if workers <= 0 {
		workers = 8
	}
	g := &errgroup.Group{}
	g.SetLimit(workers)

	return &Service{
		Client:  client,
		Dedup:   dedup,
		Log:     log,
		workers: g,
	}
}

// SetBotService устанавливает обработчик (use case создаётся после транспорта)
func (s *Service) SetBotService(bot service.IBotService) {
	s.Bot = bot
}

// Setup узнаёт собственный аккаунт бота, регистрирует команды и режим получения обновлений
func (s *Service) Setup(ctx context.Context, cfg *tgClient.Config) error {
	me, err := s.Client.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}
	s.me = me

	commands := []tgClient.BotCommand{
		{Command: "lmh", Description: "手办化插件帮助"},
		{Command: "lma", Description: "添加自定义提示词 <名称:提示词>"},
	}
	if err := s.Client.SetMyCommands(ctx, commands); err != nil {
		s.Log.Warn("failed to set bot commands", "error", err)
	}

	if cfg.UseWebhook {
		if err := s.Client.SetWebhook(ctx, cfg.WebhookURL, cfg.WebhookSecret); err != nil {
			return fmt.Errorf("failed to set webhook: %w", err)
		}
	} else if err := s.Client.DeleteWebhook(ctx); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	s.Log.Info("telegram bot ready",
		"bot_id", me.ID,
		"username", username(me),
		"webhook", cfg.UseWebhook,
	)
	return nil
}

// Dispatch ставит обновление в очередь обработчиков и ждёт свободного, если все заняты.
// Используется при polling.
func (s *Service) Dispatch(ctx context.Context, update *domain.Update) {
	if update == nil {
		return
	}
	s.workers.Go(func() error {
		s.process(ctx, update)
		return nil
	})
}

// TryDispatch не блокируется: false, если все обработчики заняты.
// Отклонённое обновление не считается увиденным, повтор Telegram будет обработан.
func (s *Service) TryDispatch(ctx context.Context, update *domain.Update) bool {
	if update == nil {
		return true
	}
	return s.workers.TryGo(func() error {
		s.process(ctx, update)
		return nil
	})
}

// process повторные update_id отбрасываются
func (s *Service) process(ctx context.Context, update *domain.Update) {
	if s.Dedup != nil && s.Dedup.Seen("tg:"+strconv.FormatInt(update.UpdateID, 10)) {
		s.Log.Debug("duplicate update skipped", "update_id", update.UpdateID)
		return
	}

	if err := s.HandleUpdate(ctx, update); err != nil {
		if domain.IsBusinessError(err) {
			s.Log.Warn("telegram reply failed", "error", err, "update_id", update.UpdateID)
			return
		}
		s.Log.Error("failed to handle update", "error", err, "update_id", update.UpdateID)
	}
}

// Wait дожидается завершения запущенных обработчиков
func (s *Service) Wait() error {
	return s.workers.Wait()
}
