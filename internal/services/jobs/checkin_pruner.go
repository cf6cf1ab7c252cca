package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const checkinPrunerName = "checkin-pruner"

// StalePruner удаляет отметки прошлых дней
type StalePruner interface {
	PruneStale() (int, error)
}

// CheckinPruner раз в сутки чистит журнал отметок
type CheckinPruner struct {
	checkin  StalePruner
	schedule *Schedule
	log      *slog.Logger
}

func NewCheckinPruner(checkin StalePruner, schedule *Schedule, log *slog.Logger) *CheckinPruner {
	return &CheckinPruner{
		checkin:  checkin,
		schedule: schedule,
		log:      log,
	}
}

func (j *CheckinPruner) Name() string {
	return checkinPrunerName
}

func (j *CheckinPruner) NextRun(now time.Time) time.Time {
	return j.schedule.Next(now)
}

func (j *CheckinPruner) Run(_ context.Context) error {
	removed, err := j.checkin.PruneStale()
	if err != nil {
		return fmt.Errorf("failed to prune checkin ledger: %w", err)
	}
	j.log.Info("checkin ledger pruned", "removed", removed)
	return nil
}
