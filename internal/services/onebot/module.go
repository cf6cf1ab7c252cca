package onebot

import (
	"context"
	"log/slog"
	"strconv"

	ob "github.com/admin/tg-bots/figurine-bot/internal/adapters/secondary/onebot"
	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/cache"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/service"
)

// API часть клиента OneBot, нужная сервису
type API interface {
	Run(ctx context.Context, handler ob.EventHandler) error
	SelfID() int64
	GetMsg(ctx context.Context, messageID string) (*ob.StoredMessage, error)
	SendGroupMsg(ctx context.Context, groupID int64, message []ob.OutSegment) (string, error)
	SendPrivateMsg(ctx context.Context, userID int64, message []ob.OutSegment) (string, error)
}

// Service связывает OneBot v11 (QQ) с платформо-независимым обработчиком сообщений
type Service struct {
	Client       API
	Bot          service.IBotService
	Dedup        cache.IDedupCache
	WakePrefixes []string
	Log          *slog.Logger
}

func New(client API, dedup cache.IDedupCache, wakePrefixes []string, log *slog.Logger) *Service {
	return &Service{
		Client:       client,
		Dedup:        dedup,
		WakePrefixes: wakePrefixes,
		Log:          log,
	}
}

func (s *Service) SetBotService(bot service.IBotService) {
	s.Bot = bot
}

// Run читает события до отмены контекста
func (s *Service) Run(ctx context.Context) error {
	return s.Client.Run(ctx, s.HandleEvent)
}

// HandleEvent обрабатывает одно событие message
func (s *Service) HandleEvent(ctx context.Context, event *ob.Event) {
	key := "ob:" + strconv.FormatInt(event.SelfID, 10) + ":" + event.MessageID
	if s.Dedup != nil && s.Dedup.Seen(key) {
		s.Log.Debug("duplicate onebot message skipped", "message_id", event.MessageID)
		return
	}

	msg := s.toMessage(ctx, event)
	if msg == nil || s.Bot == nil {
		return
	}

	if err := s.Bot.HandleMessage(ctx, msg); err != nil {
		if domain.IsBusinessError(err) {
			s.Log.Warn("onebot reply failed", "error", err, "message_id", event.MessageID)
			return
		}
		s.Log.Error("failed to handle onebot message",
			"error", err,
			"message_id", event.MessageID,
			"user_id", event.UserID,
		)
	}
}
