// Package recurrence implements the Recurrence Materialiser: a scheduled
// job that turns recurring task templates into concrete occurrences once
// their next_recurrence_date has passed.
package recurrence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rabiasohail098/todo-chat-agent/internal/observability"
	"github.com/rabiasohail098/todo-chat-agent/internal/tasks"
	"github.com/rabiasohail098/todo-chat-agent/pkg/models"
)

// DefaultBatchSize bounds how many due templates a single tick inspects.
const DefaultBatchSize = 100

// Ticker is the minimal surface of *time.Ticker the Materialiser depends
// on, so tests can drive it with a synthetic channel instead of waiting on
// a real clock.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// realTicker adapts *time.Ticker to Ticker.
type realTicker struct {
	t *time.Ticker
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// Config configures a Materialiser.
type Config struct {
	// TickInterval is how often the materialiser scans for due templates.
	// Defaults to one hour. Ignored when CronExpr is set.
	TickInterval time.Duration

	// CronExpr, when non-empty, drives the tick cadence from a cron
	// expression instead of a fixed interval — useful when operators want
	// the scan to land on a specific wall-clock moment (e.g. "0 3 * * *"
	// for just after midnight maintenance windows) rather than a duration
	// since the last tick.
	CronExpr string

	// BatchSize bounds how many due templates a single tick processes.
	// Defaults to DefaultBatchSize.
	BatchSize int

	// Now returns the current time; overridable in tests. Defaults to
	// time.Now.
	Now func() time.Time

	Logger *slog.Logger

	// Metrics, when set, records a recurrence_materialised_total outcome
	// for every template processed by Tick. Left nil in tests.
	Metrics *observability.Metrics
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = time.Hour
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default().With("component", "recurrence-materialiser")
	}
	return c
}

// Materialiser periodically scans tasks.Store for recurring templates that
// are due and materialises their next occurrence, one per template per
// tick.
type Materialiser struct {
	store    tasks.Store
	config   Config
	schedule *Schedule

	newTicker func(time.Duration) Ticker

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs a Materialiser over store. Pass a zero Config to accept
// hourly defaults. If Config.CronExpr is set but does not parse, New falls
// back to TickInterval and logs the problem rather than failing
// construction — a malformed cadence should not prevent the rest of
// startup from proceeding.
func New(store tasks.Store, config Config) *Materialiser {
	config = config.withDefaults()

	var schedule *Schedule
	if config.CronExpr != "" {
		parsed, err := NewSchedule(config.CronExpr)
		if err != nil {
			config.Logger.Error("recurrence materialiser: invalid cron expression, falling back to tick_interval", "cron_expr", config.CronExpr, "error", err)
		} else {
			schedule = parsed
		}
	}

	return &Materialiser{
		store:    store,
		config:   config,
		schedule: schedule,
		newTicker: func(d time.Duration) Ticker {
			return &realTicker{t: time.NewTicker(d)}
		},
	}
}

// Start begins the tick loop in a background goroutine. Calling Start on
// an already-running Materialiser is a no-op.
func (m *Materialiser) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.mu.Unlock()

	m.config.Logger.Info("starting recurrence materialiser",
		"tick_interval", m.config.TickInterval,
		"batch_size", m.config.BatchSize,
	)

	go m.loop(ctx)
}

// Stop cancels the tick loop and waits for it to exit.
func (m *Materialiser) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	cancel := m.cancel
	done := m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (m *Materialiser) loop(ctx context.Context) {
	defer close(m.done)

	if m.schedule != nil {
		m.scheduleLoop(ctx)
		return
	}

	ticker := m.newTicker(m.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			m.Tick(ctx)
		}
	}
}

// scheduleLoop drives ticks from m.schedule instead of a fixed interval,
// recomputing the next fire time after every tick (and after startup) so a
// slow tick never causes a missed or doubled firing.
func (m *Materialiser) scheduleLoop(ctx context.Context) {
	for {
		next := m.schedule.Next(m.config.Now())
		wait := time.Until(next)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			m.Tick(ctx)
		}
	}
}

// Tick scans for due templates and materialises at most one missed
// occurrence per template. A failure materialising one template does not
// prevent the others in the batch from being processed: each template is
// its own transaction at the store layer, and Tick itself never aborts
// early on a single error.
func (m *Materialiser) Tick(ctx context.Context) {
	now := m.config.Now()

	due, err := m.store.DueTemplates(ctx, now, m.config.BatchSize)
	if err != nil {
		m.config.Logger.Error("failed to list due recurrence templates", "error", err)
		return
	}

	for _, template := range due {
		if err := m.materialiseOne(ctx, template, now); err != nil {
			m.config.Logger.Error("failed to materialise recurrence",
				"task_id", template.ID,
				"recurrence_pattern", template.RecurrencePattern,
				"error", err,
			)
			if m.config.Metrics != nil {
				m.config.Metrics.RecordRecurrenceTick("error")
			}
			continue
		}
		m.config.Logger.Info("materialised recurrence occurrence",
			"task_id", template.ID,
			"recurrence_pattern", template.RecurrencePattern,
		)
		if m.config.Metrics != nil {
			m.config.Metrics.RecordRecurrenceTick("success")
		}
	}
}

func (m *Materialiser) materialiseOne(ctx context.Context, template *models.Task, now time.Time) error {
	// Advance from the occurrence that just fired, not from the tick's wall
	// clock, so a template's time-of-day and calendar alignment survive
	// across ticks instead of drifting to whenever the scanner happened to run.
	from := now
	if template.NextRecurrenceDate != nil {
		from = *template.NextRecurrenceDate
	}
	next := tasks.NextRecurrence(template.RecurrencePattern, template.RecurrenceInterval, from)
	return m.store.MaterialiseOccurrence(ctx, template, next)
}
