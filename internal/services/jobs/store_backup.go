package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/admin/tg-bots/figurine-bot/internal/ports/storage"
)

const storeBackupName = "store-backup"

// Snapshotter JSON-хранилище, которое умеет отдать своё содержимое
type Snapshotter interface {
	Path() string
	Snapshot() ([]byte, error)
}

// StoreBackup копирует JSON-файлы в S3: backups/<дата>/<файл>
type StoreBackup struct {
	stores   []Snapshotter
	s3       storage.IS3Client
	schedule *Schedule
	log      *slog.Logger
	now      func() time.Time
}

func NewStoreBackup(s3 storage.IS3Client, schedule *Schedule, log *slog.Logger, stores ...Snapshotter) *StoreBackup {
	return &StoreBackup{
		stores:   stores,
		s3:       s3,
		schedule: schedule,
		log:      log,
		now:      time.Now,
	}
}

func (j *StoreBackup) Name() string {
	return storeBackupName
}

func (j *StoreBackup) NextRun(now time.Time) time.Time {
	return j.schedule.Next(now)
}

// Run один сломанный файл не мешает остальным, ошибки собираются
func (j *StoreBackup) Run(ctx context.Context) error {
	day := j.now().In(j.schedule.location).Format("2006-01-02")

	var errs []error
	for _, store := range j.stores {
		data, err := store.Snapshot()
		if err != nil {
			errs = append(errs, fmt.Errorf("snapshot %s: %w", store.Path(), err))
			continue
		}

		key := fmt.Sprintf("backups/%s/%s", day, filepath.Base(store.Path()))
		if err := j.s3.PutFile(ctx, key, data, "application/json"); err != nil {
			errs = append(errs, fmt.Errorf("upload %s: %w", key, err))
			continue
		}
		j.log.Info("store backed up", "key", key, "size", len(data))
	}
	return errors.Join(errs...)
}
