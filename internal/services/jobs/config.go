package jobs

import "time"

type Config struct {
	Timezone            string        `envconfig:"TIMEZONE" default:"Asia/Shanghai"`
	BackupCron          string        `envconfig:"BACKUP_CRON" default:"0 4 * * *"`
	CheckinPruneCron    string        `envconfig:"CHECKIN_PRUNE_CRON" default:"10 0 * * *"`
	GenerationPruneCron string        `envconfig:"GENERATION_PRUNE_CRON" default:"30 3 * * *"`
	GenerationRetention time.Duration `envconfig:"GENERATION_RETENTION" default:"720h"`
}

// Location часовой пояс расписаний, UTC если пояс не найден
func (c *Config) Location() *time.Location {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil || location == nil {
		return time.UTC
	}
	return location
}
