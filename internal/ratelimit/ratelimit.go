// Package ratelimit caps command throughput per minute and per hour. The
// canonical variant counts rows in the shared store so the caps hold across
// concurrent hook processes; a process-local sliding window covers callers
// with no store.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/bashbros/bashbros/internal/config"
	"github.com/bashbros/bashbros/internal/model"
)

// CommandCounter is the slice of the store the limiter needs.
type CommandCounter interface {
	CountCommandsSince(t time.Time) (int, error)
}

// Check tests the per-minute and per-hour caps against the store. A count
// error propagates to the caller, which decides whether to fail open.
func Check(now time.Time, cfg config.RateLimitConfig, counter CommandCounter) (*model.Violation, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	if cfg.MaxPerMinute > 0 {
		n, err := counter.CountCommandsSince(now.Add(-time.Minute))
		if err != nil {
			return nil, fmt.Errorf("per-minute count: %w", err)
		}
		if n >= cfg.MaxPerMinute {
			return &model.Violation{
				Type:     model.ViolationRateLimit,
				Rule:     "rate_per_minute",
				Message:  fmt.Sprintf("rate limit exceeded: %d commands in the last minute (max %d)", n, cfg.MaxPerMinute),
				Severity: model.SeverityMedium,
			}, nil
		}
	}

	if cfg.MaxPerHour > 0 {
		n, err := counter.CountCommandsSince(now.Add(-time.Hour))
		if err != nil {
			return nil, fmt.Errorf("per-hour count: %w", err)
		}
		if n >= cfg.MaxPerHour {
			return &model.Violation{
				Type:     model.ViolationRateLimit,
				Rule:     "rate_per_hour",
				Message:  fmt.Sprintf("rate limit exceeded: %d commands in the last hour (max %d)", n, cfg.MaxPerHour),
				Severity: model.SeverityMedium,
			}, nil
		}
	}

	return nil, nil
}

// Local is the process-local fallback: two sliding windows of timestamps,
// cleaned on each check. Not safe for concurrent use.
type Local struct {
	cfg    config.RateLimitConfig
	minute []time.Time
	hour   []time.Time
}

// NewLocal creates a process-local limiter.
func NewLocal(cfg config.RateLimitConfig) *Local {
	return &Local{cfg: cfg}
}

// Check tests both windows at the given time.
func (l *Local) Check(now time.Time) *model.Violation {
	if !l.cfg.Enabled {
		return nil
	}

	l.minute = prune(l.minute, now.Add(-time.Minute))
	l.hour = prune(l.hour, now.Add(-time.Hour))

	if l.cfg.MaxPerMinute > 0 && len(l.minute) >= l.cfg.MaxPerMinute {
		return &model.Violation{
			Type:     model.ViolationRateLimit,
			Rule:     "rate_per_minute",
			Message:  fmt.Sprintf("rate limit exceeded: %d commands in the last minute (max %d)", len(l.minute), l.cfg.MaxPerMinute),
			Severity: model.SeverityMedium,
		}
	}
	if l.cfg.MaxPerHour > 0 && len(l.hour) >= l.cfg.MaxPerHour {
		return &model.Violation{
			Type:     model.ViolationRateLimit,
			Rule:     "rate_per_hour",
			Message:  fmt.Sprintf("rate limit exceeded: %d commands in the last hour (max %d)", len(l.hour), l.cfg.MaxPerHour),
			Severity: model.SeverityMedium,
		}
	}
	return nil
}

// Record pushes an allowed command into both windows.
func (l *Local) Record(now time.Time) {
	l.minute = append(l.minute, now)
	l.hour = append(l.hour, now)
}

func prune(window []time.Time, cutoff time.Time) []time.Time {
	kept := window[:0]
	for _, t := range window {
		if !t.Before(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
