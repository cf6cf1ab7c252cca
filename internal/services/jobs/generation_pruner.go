package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/figurine-bot/internal/ports/repository"
)

const generationPrunerName = "generation-pruner"

// GenerationPruner удаляет записи журнала старше retention
type GenerationPruner struct {
	repo      repository.IGenerationRepo
	retention time.Duration
	schedule  *Schedule
	log       *slog.Logger
	now       func() time.Time
}

func NewGenerationPruner(repo repository.IGenerationRepo, retention time.Duration, schedule *Schedule, log *slog.Logger) *GenerationPruner {
	return &GenerationPruner{
		repo:      repo,
		retention: retention,
		schedule:  schedule,
		log:       log,
		now:       time.Now,
	}
}

func (j *GenerationPruner) Name() string {
	return generationPrunerName
}

func (j *GenerationPruner) NextRun(now time.Time) time.Time {
	return j.schedule.Next(now)
}

func (j *GenerationPruner) Run(ctx context.Context) error {
	before := j.now().Add(-j.retention)
	deleted, err := j.repo.DeleteOlderThan(ctx, before)
	if err != nil {
		return fmt.Errorf("failed to prune generations: %w", err)
	}
	j.log.Info("generations pruned", "deleted", deleted, "before", before)
	return nil
}
