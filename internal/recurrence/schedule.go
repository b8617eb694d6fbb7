package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// cronParser accepts the same field layout as a typical crontab, plus an
// optional leading seconds field and the usual @hourly/@daily descriptors.
var cronParser = cron.NewParser(
	cron.SecondOptional |
		cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow |
		cron.Descriptor,
)

// Schedule computes the materialiser's next fire time from a cron
// expression, for operators who want a fixed wall-clock cadence (e.g. "run
// at 03:00") rather than a fixed interval since the last tick.
type Schedule struct {
	expr     string
	schedule cron.Schedule
}

// NewSchedule parses expr into a Schedule, or returns an error if it is not
// a valid cron expression.
func NewSchedule(expr string) (*Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("cron expression is required")
	}
	parsed, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return &Schedule{expr: expr, schedule: parsed}, nil
}

// Next returns the first fire time strictly after now.
func (s *Schedule) Next(now time.Time) time.Time {
	return s.schedule.Next(now)
}
