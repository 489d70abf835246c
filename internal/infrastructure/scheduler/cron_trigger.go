package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// cronTickerInterval is how often the trigger checks the schedules
const cronTickerInterval = time.Minute

// CronSpec is a parsed five field cron expression:
// minute hour day-of-month month day-of-week
type CronSpec struct {
	minutes  uint64
	hours    uint64
	days     uint64
	months   uint64
	weekdays uint64
	// anyDay and anyWeekday record a "*" field, for the day matching rule
	anyDay     bool
	anyWeekday bool
}

type cronField struct {
	min, max int
}

var cronFields = [5]cronField{
	{0, 59}, // minute
	{0, 23}, // hour
	{1, 31}, // day of month
	{1, 12}, // month
	{0, 7},  // day of week, 0 and 7 are Sunday
}

// ParseCronSpec parses expressions such as "0 6 * * *", "*/15 8-18 * * 1-6"
// or "30 7 * * 1". Lists, ranges and steps are supported.
func ParseCronSpec(expr string) (*CronSpec, error) {
	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return nil, fmt.Errorf("%w: %q needs 5 fields", ErrInvalidCronSpec, expr)
	}
	var sets [5]uint64
	for i, part := range parts {
		set, err := parseCronField(part, cronFields[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCronSpec, expr, err)
		}
		sets[i] = set
	}
	// Sunday may be written 7
	if sets[4]&(1<<7) != 0 {
		sets[4] |= 1
	}
	return &CronSpec{
		minutes:    sets[0],
		hours:      sets[1],
		days:       sets[2],
		months:     sets[3],
		weekdays:   sets[4],
		anyDay:     parts[2] == "*",
		anyWeekday: parts[4] == "*",
	}, nil
}

func parseCronField(field string, bounds cronField) (uint64, error) {
	var set uint64
	for _, item := range strings.Split(field, ",") {
		step := 1
		if base, s, ok := strings.Cut(item, "/"); ok {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 {
				return 0, fmt.Errorf("bad step %q", s)
			}
			step = n
			item = base
		}

		lo, hi := bounds.min, bounds.max
		switch {
		case item == "*":
		case strings.Contains(item, "-"):
			a, b, _ := strings.Cut(item, "-")
			var err error
			if lo, err = strconv.Atoi(a); err != nil {
				return 0, fmt.Errorf("bad range %q", item)
			}
			if hi, err = strconv.Atoi(b); err != nil {
				return 0, fmt.Errorf("bad range %q", item)
			}
		default:
			n, err := strconv.Atoi(item)
			if err != nil {
				return 0, fmt.Errorf("bad value %q", item)
			}
			lo, hi = n, n
			if step > 1 {
				hi = bounds.max
			}
		}
		if lo < bounds.min || hi > bounds.max || lo > hi {
			return 0, fmt.Errorf("%q out of range %d-%d", item, bounds.min, bounds.max)
		}
		for v := lo; v <= hi; v += step {
			set |= 1 << uint(v)
		}
	}
	return set, nil
}

func has(set uint64, v int) bool {
	return set&(1<<uint(v)) != 0
}

// Matches reports whether the spec fires during the minute of t
func (c *CronSpec) Matches(t time.Time) bool {
	if !has(c.minutes, t.Minute()) || !has(c.hours, t.Hour()) || !has(c.months, int(t.Month())) {
		return false
	}
	dayOK := has(c.days, t.Day())
	weekdayOK := has(c.weekdays, int(t.Weekday()))
	// when both day fields are restricted either one may match
	switch {
	case c.anyDay && c.anyWeekday:
		return true
	case c.anyDay:
		return weekdayOK
	case c.anyWeekday:
		return dayOK
	default:
		return dayOK || weekdayOK
	}
}

type cronEntry struct {
	task string
	spec *CronSpec
	expr string
}

// CronTrigger submits scheduler tasks when their cron expression matches
type CronTrigger struct {
	scheduler *Scheduler
	logger    *zap.Logger
	interval  time.Duration
	now       func() time.Time

	entries []cronEntry
	lastRun map[string]string

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewCronTrigger creates a new cron trigger
func NewCronTrigger(scheduler *Scheduler, logger *zap.Logger) *CronTrigger {
	return &CronTrigger{
		scheduler: scheduler,
		logger:    logger,
		interval:  cronTickerInterval,
		now:       time.Now,
		lastRun:   make(map[string]string),
	}
}

// Add schedules a registered task on a cron expression
func (c *CronTrigger) Add(task, expr string) error {
	spec, err := ParseCronSpec(expr)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, cronEntry{task: task, spec: spec, expr: expr})
	return nil
}

// Start starts the cron trigger
func (c *CronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	entries := len(c.entries)
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Cron trigger started",
		zap.Int("schedules", entries),
		zap.Duration("check_interval", c.interval),
	)
	return nil
}

// Stop stops the cron trigger
func (c *CronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.checkAndTrigger()
		}
	}
}

// checkAndTrigger submits every task due this minute, once per minute
func (c *CronTrigger) checkAndTrigger() []string {
	now := c.now()
	minute := now.Format("2006-01-02T15:04")

	var due []string
	c.mu.Lock()
	for _, e := range c.entries {
		if c.lastRun[e.task] == minute || !e.spec.Matches(now) {
			continue
		}
		c.lastRun[e.task] = minute
		due = append(due, e.task)
	}
	c.mu.Unlock()

	for _, task := range due {
		if _, err := c.scheduler.Submit(task); err != nil {
			c.logger.Error("Failed to submit scheduled task",
				zap.String("task", task),
				zap.Error(err),
			)
		}
	}
	return due
}
