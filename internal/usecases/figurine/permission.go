package figurine

import (
	"slices"

	"github.com/admin/tg-bots/figurine-bot/internal/domain"
)

// Decision итог проверки доступа
type Decision int

const (
	Allowed Decision = iota
	DeniedUserBlacklist
	DeniedGroupBlacklist
	DeniedUserWhitelist
	DeniedGroupWhitelist
	DeniedGroupAndUserQuota
	DeniedUserQuota
)

// QuotaPolicy флаги ограничений и текущие остатки
type QuotaPolicy struct {
	UserLimit  bool
	GroupLimit bool
	UserLeft   int
	GroupLeft  int
}

// Allow в группе отказ только когда нет ни личных, ни групповых генераций
func (p QuotaPolicy) Allow(inGroup bool) Decision {
	hasGroup := !(p.GroupLimit && inGroup) || p.GroupLeft > 0
	hasUser := !p.UserLimit || p.UserLeft > 0

	if inGroup {
		if !hasGroup && !hasUser {
			return DeniedGroupAndUserQuota
		}
		return Allowed
	}
	if !hasUser {
		return DeniedUserQuota
	}
	return Allowed
}

// checkAccess админы проходят без проверок
func (s *Service) checkAccess(msg *domain.Message) Decision {
	if s.isAdmin(msg.SenderID) {
		return Allowed
	}

	sender, group := msg.SenderID, msg.GroupID
	switch {
	case slices.Contains(s.Cfg.UserBlacklist, sender):
		return DeniedUserBlacklist
	case group != "" && slices.Contains(s.Cfg.GroupBlacklist, group):
		return DeniedGroupBlacklist
	case len(s.Cfg.UserWhitelist) > 0 && !slices.Contains(s.Cfg.UserWhitelist, sender):
		return DeniedUserWhitelist
	case group != "" && len(s.Cfg.GroupWhitelist) > 0 && !slices.Contains(s.Cfg.GroupWhitelist, group):
		return DeniedGroupWhitelist
	}

	policy := QuotaPolicy{
		UserLimit:  s.Cfg.EnableUserLimit,
		GroupLimit: s.Cfg.EnableGroupLimit,
		UserLeft:   s.Users.Get(sender),
	}
	if group != "" {
		policy.GroupLeft = s.Groups.Get(group)
	}
	return policy.Allow(group != "")
}
