package checkin

import (
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/repository"
)

const dateLayout = "2006-01-02"

type Config struct {
	Enabled   bool
	Random    bool
	Fixed     int
	RandomMax int
}

// Service ежедневная отметка с начислением генераций
type Service struct {
	cfg    Config
	users  repository.ICounterRepo
	ledger repository.ICheckinRepo
	log    *slog.Logger

	// mu не даёт двум параллельным отметкам одного дня пройти обе
	mu   sync.Mutex
	now  func() time.Time
	intn func(n int) int
}

func New(cfg Config, users repository.ICounterRepo, ledger repository.ICheckinRepo, log *slog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		users:  users,
		ledger: ledger,
		log:    log,
		now:    time.Now,
		intn:   rand.Intn,
	}
}

// Result итог отметки
type Result struct {
	Reward int
	Total  int
}

// Checkin начисляет награду за сегодня.
// ErrCheckinDisabled - функция выключена, ErrAlreadyCheckedIn - уже отмечался сегодня
// (Total при этом содержит текущий остаток).
func (s *Service) Checkin(userID string) (Result, error) {
	if !s.cfg.Enabled {
		return Result{}, domain.ErrCheckinDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().Format(dateLayout)
	if s.ledger.LastDate(userID) == today {
		return Result{Total: s.users.Get(userID)}, domain.ErrAlreadyCheckedIn
	}

	reward := s.reward()

	// сначала квота, потом журнал
	total, err := s.users.Add(userID, reward)
	if err != nil {
		s.log.Warn("checkin reward kept in memory only", "user_id", userID, "error", err)
	}
	if err := s.ledger.Mark(userID, today); err != nil {
		s.log.Warn("checkin date kept in memory only", "user_id", userID, "error", err)
	}

	s.log.Info("user checked in", "user_id", userID, "reward", reward, "total", total)
	return Result{Reward: reward, Total: total}, nil
}

// PruneStale удаляет отметки старше сегодняшнего дня, они больше ни на что не влияют
func (s *Service) PruneStale() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.PruneBefore(s.now().Format(dateLayout))
}

func (s *Service) reward() int {
	if s.cfg.Random {
		max := s.cfg.RandomMax
		if max < 1 {
			max = 1
		}
		return s.intn(max) + 1
	}
	return s.cfg.Fixed
}
