package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/bashbros/bashbros/internal/config"
)

// fakeCounter returns canned counts keyed by how far back the query reaches.
type fakeCounter struct {
	perMinute int
	perHour   int
	err       error
}

func (f *fakeCounter) CountCommandsSince(since time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if time.Since(since) < 2*time.Minute {
		return f.perMinute, nil
	}
	return f.perHour, nil
}

func rateConfig() config.RateLimitConfig {
	return config.RateLimitConfig{Enabled: true, MaxPerMinute: 100, MaxPerHour: 2000}
}

func TestUnderCapsPasses(t *testing.T) {
	v, err := Check(time.Now(), rateConfig(), &fakeCounter{perMinute: 50, perHour: 500})
	if err != nil {
		t.Fatal(err)
	}
	if v != nil {
		t.Errorf("expected pass under both caps, got %v", v)
	}
}

func TestMinuteCap(t *testing.T) {
	v, err := Check(time.Now(), rateConfig(), &fakeCounter{perMinute: 100, perHour: 500})
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || v.Rule != "rate_per_minute" {
		t.Errorf("expected rate_per_minute violation, got %v", v)
	}
}

func TestHourCap(t *testing.T) {
	v, err := Check(time.Now(), rateConfig(), &fakeCounter{perMinute: 10, perHour: 2000})
	if err != nil {
		t.Fatal(err)
	}
	if v == nil || v.Rule != "rate_per_hour" {
		t.Errorf("expected rate_per_hour violation, got %v", v)
	}
}

func TestDisabledSkipsCounter(t *testing.T) {
	cfg := rateConfig()
	cfg.Enabled = false
	v, err := Check(time.Now(), cfg, &fakeCounter{err: errors.New("store down")})
	if err != nil || v != nil {
		t.Errorf("disabled limiter must pass without touching the store, got %v %v", v, err)
	}
}

func TestCounterErrorPropagates(t *testing.T) {
	_, err := Check(time.Now(), rateConfig(), &fakeCounter{err: errors.New("store down")})
	if err == nil {
		t.Error("expected the count error to propagate")
	}
}

func TestLocalSlidingWindow(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, MaxPerMinute: 3, MaxPerHour: 100}
	l := NewLocal(cfg)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if v := l.Check(now); v != nil {
			t.Fatalf("command %d should pass, got %v", i, v)
		}
		l.Record(now)
	}

	if v := l.Check(now); v == nil || v.Rule != "rate_per_minute" {
		t.Errorf("expected rate_per_minute at the cap, got %v", v)
	}

	// A minute later the window has drained.
	if v := l.Check(now.Add(61 * time.Second)); v != nil {
		t.Errorf("expected pass after the window expired, got %v", v)
	}
}
