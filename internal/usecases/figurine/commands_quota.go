package figurine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
	"github.com/admin/tg-bots/figurine-bot/internal/ports/repository"
	"github.com/admin/tg-bots/figurine-bot/internal/usecases/figurine/texts"
)

var (
	trailingAmountRe = regexp.MustCompile(`(\d+)\s*$`)
	idAndAmountRe    = regexp.MustCompile(`(-?\d+)\s+(\d+)`)
	anyIDRe          = regexp.MustCompile(`-?\d+`)
)

func (s *Service) handleCheckin(ctx context.Context, msg *domain.Message, _ string) error {
	if s.Checkin == nil {
		return s.reply(ctx, msg, texts.CheckinDisabled)
	}

	res, err := s.Checkin.Checkin(msg.SenderID)
	switch {
	case errors.Is(err, domain.ErrCheckinDisabled):
		return s.reply(ctx, msg, texts.CheckinDisabled)
	case errors.Is(err, domain.ErrAlreadyCheckedIn):
		return s.reply(ctx, msg, texts.AlreadyCheckedIn(res.Total))
	case err != nil:
		s.Log.Error("checkin failed", "error", err, "user_id", msg.SenderID)
		return s.reply(ctx, msg, texts.SaveFailed)
	}
	return s.reply(ctx, msg, texts.CheckinSuccess(res.Reward, res.Total))
}

// handleGrantUser "@user n" или "<id> n"
func (s *Service) handleGrantUser(ctx context.Context, msg *domain.Message, args string) error {
	target, amount := "", 0
	if mentioned := firstMention(msg); mentioned != "" {
		target = mentioned
		if m := trailingAmountRe.FindStringSubmatch(args); m != nil {
			amount, _ = strconv.Atoi(m[1])
		}
	} else if m := idAndAmountRe.FindStringSubmatch(args); m != nil {
		target = m[1]
		amount, _ = strconv.Atoi(m[2])
	}
	if target == "" || amount <= 0 {
		return s.reply(ctx, msg, texts.GrantUserUsage)
	}

	total, err := s.Grant(domain.ScopeUser, target, amount)
	if err != nil {
		s.Log.Error("failed to grant user quota", "error", err, "user_id", target)
		return s.reply(ctx, msg, texts.SaveFailed)
	}
	return s.reply(ctx, msg, texts.UserGranted(target, amount, total))
}

func (s *Service) handleGrantGroup(ctx context.Context, msg *domain.Message, args string) error {
	m := idAndAmountRe.FindStringSubmatch(args)
	if m == nil {
		return s.reply(ctx, msg, texts.GrantGroupUsage)
	}
	target := m[1]
	amount, _ := strconv.Atoi(m[2])
	if amount <= 0 {
		return s.reply(ctx, msg, texts.GrantGroupUsage)
	}

	total, err := s.Grant(domain.ScopeGroup, target, amount)
	if err != nil {
		s.Log.Error("failed to grant group quota", "error", err, "group_id", target)
		return s.reply(ctx, msg, texts.SaveFailed)
	}
	return s.reply(ctx, msg, texts.GroupGranted(target, amount, total))
}

// handleQueryCounts админ может спросить про другого пользователя
func (s *Service) handleQueryCounts(ctx context.Context, msg *domain.Message, args string) error {
	target := msg.SenderID
	if s.isAdmin(msg.SenderID) {
		if mentioned := firstMention(msg); mentioned != "" {
			target = mentioned
		} else if id := anyIDRe.FindString(args); id != "" {
			target = id
		}
	}

	groupLeft := -1
	if msg.IsGroup() {
		groupLeft = s.Groups.Get(msg.GroupID)
	}
	return s.reply(ctx, msg, texts.QueryCounts(target, s.Users.Get(target), target == msg.SenderID, groupLeft))
}

// QuotaOf текущий остаток пользователя или группы
func (s *Service) QuotaOf(scope domain.QuotaScope, id string) (int, error) {
	counter, err := s.counter(scope)
	if err != nil {
		return 0, err
	}
	return counter.Get(id), nil
}

// Grant начисляет генерации и возвращает новый остаток
func (s *Service) Grant(scope domain.QuotaScope, id string, amount int) (int, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	counter, err := s.counter(scope)
	if err != nil {
		return 0, err
	}

	total, err := counter.Add(id, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to add %s quota: %w", scope, err)
	}
	s.Log.Info("quota granted",
		"scope", scope,
		"id", id,
		"amount", amount,
		"total", total,
	)
	return total, nil
}

func (s *Service) counter(scope domain.QuotaScope) (repository.ICounterRepo, error) {
	switch scope {
	case domain.ScopeUser:
		return s.Users, nil
	case domain.ScopeGroup:
		return s.Groups, nil
	default:
		return nil, domain.ErrInvalidScope
	}
}

func firstMention(msg *domain.Message) string {
	for _, seg := range msg.Segments {
		if seg.Type == domain.SegmentMention && seg.UserID != "" {
			return seg.UserID
		}
	}
	return ""
}
