package jobs

import (
	"fmt"
	"time"

	cronlib "github.com/robfig/cron/v3"
)

var cronParser = cronlib.NewParser(cronlib.Minute | cronlib.Hour | cronlib.Dom | cronlib.Month | cronlib.Dow | cronlib.Descriptor)

// Schedule cron-выражение в заданном часовом поясе
type Schedule struct {
	expr     string
	sched    cronlib.Schedule
	location *time.Location
}

// ParseSchedule пять полей или дескриптор (@daily, @every 1h)
func ParseSchedule(expr string, location *time.Location) (*Schedule, error) {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	if location == nil {
		location = time.UTC
	}
	return &Schedule{expr: expr, sched: sched, location: location}, nil
}

func (s *Schedule) Next(now time.Time) time.Time {
	return s.sched.Next(now.In(s.location))
}

func (s *Schedule) String() string {
	return s.expr
}
