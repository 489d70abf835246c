// Package publicform screens submissions of the public site forms: bot traps,
// per-IP throttling and input sanitising.
package publicform

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	minFillTime = 3 * time.Second
	maxFillTime = 24 * time.Hour
)

// CodeRateLimited is the error code of a throttled submission
const CodeRateLimited = "RATE_LIMIT_EXCEEDED"

// Trap carries the hidden fields a human never fills
type Trap struct {
	Honeypot  string `json:"honeypot"`
	HPName    string `json:"_hp_name"`
	Website   string `json:"website"`
	Timestamp int64  `json:"_timestamp"`
}

// Check returns the reason a submission looks automated, or "" for a human.
// Timestamp is the page render time in Unix milliseconds.
func (t Trap) Check(now time.Time) string {
	if strings.TrimSpace(t.Honeypot) != "" || strings.TrimSpace(t.HPName) != "" || strings.TrimSpace(t.Website) != "" {
		return "honeypot_triggered"
	}
	if t.Timestamp > 0 {
		elapsed := now.Sub(time.UnixMilli(t.Timestamp))
		if elapsed < minFillTime {
			return "submission_too_fast"
		}
		if elapsed > maxFillTime {
			return "timestamp_expired"
		}
	}
	return ""
}

// Decision is the outcome of a throttle check
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Throttle counts hits per key over a sliding window
type Throttle interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

// Sanitizer strips markup from visitor input
type Sanitizer interface {
	// Line cleans a single-line value
	Line(s string) string
	// Block cleans free text, keeping line breaks
	Block(s string) string
}

// LimitError reports a throttled submission
type LimitError struct {
	RetryAfter time.Duration
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("Trop de requêtes. Réessayez dans %d secondes.", int(e.RetryAfter.Seconds()))
}

// Unwrap exposes the domain error for status mapping
func (e *LimitError) Unwrap() error {
	return shared.NewDomainError(CodeRateLimited, e.Error())
}

// Config sets the per-IP quota of a form
type Config struct {
	Limit  int
	Window time.Duration
}

// DefaultConfig allows five submissions per hour
func DefaultConfig() Config {
	return Config{Limit: 5, Window: time.Hour}
}

// Guard screens public form submissions
type Guard struct {
	throttle  Throttle
	sanitizer Sanitizer
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

// NewGuard creates a Guard. A nil throttle disables throttling.
func NewGuard(throttle Throttle, sanitizer Sanitizer, cfg Config, logger *zap.Logger) *Guard {
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		cfg = DefaultConfig()
	}
	return &Guard{throttle: throttle, sanitizer: sanitizer, cfg: cfg, logger: logger, now: time.Now}
}

// SetClock overrides time.Now, for tests
func (g *Guard) SetClock(now func() time.Time) {
	g.now = now
}

// Sanitizer returns the input cleaner
func (g *Guard) Sanitizer() Sanitizer {
	return g.sanitizer
}

// IsBot reports whether the trap fields betray an automated submission
func (g *Guard) IsBot(form, ip string, trap Trap) bool {
	reason := trap.Check(g.now())
	if reason == "" {
		return false
	}
	g.logger.Warn("bot submission discarded",
		zap.String("form", form), zap.String("ip", ip), zap.String("reason", reason))
	return true
}

// Admit counts a submission from ip and refuses it over quota. A failing
// throttle backend lets the submission through.
func (g *Guard) Admit(ctx context.Context, form, ip string) error {
	if g.throttle == nil {
		return nil
	}
	d, err := g.throttle.Allow(ctx, form+":"+ip, g.cfg.Limit, g.cfg.Window)
	if err != nil {
		g.logger.Warn("form throttle unavailable", zap.String("form", form), zap.Error(err))
		return nil
	}
	if !d.Allowed {
		g.logger.Info("form submission throttled", zap.String("form", form), zap.String("ip", ip))
		return &LimitError{RetryAfter: d.RetryAfter}
	}
	return nil
}

// Line cleans a single-line value
func (g *Guard) Line(s string) string {
	return g.sanitizer.Line(s)
}

// OptionalLine cleans a value and maps blank to nil
func (g *Guard) OptionalLine(s *string) *string {
	if s == nil {
		return nil
	}
	v := g.sanitizer.Line(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Block cleans free text
func (g *Guard) Block(s string) string {
	return g.sanitizer.Block(s)
}
