// Package notify posts denial notifications to operator-configured webhook
// endpoints. Delivery is best-effort: a webhook outage never changes or
// delays the gate decision beyond the bounded send.
package notify

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// WebhookConfig defines one notification destination.
type WebhookConfig struct {
	URL     string            `yaml:"url"     json:"url"`
	Format  string            `yaml:"format"  json:"format"` // "generic", "slack", "pagerduty"
	Events  []string          `yaml:"events"  json:"events"` // violation type tokens, or "blocked" for any denial
	Headers map[string]string `yaml:"headers" json:"headers"`
}

// Event is the payload sent to webhook endpoints.
type Event struct {
	Timestamp string   `json:"timestamp"`
	SessionID string   `json:"session_id,omitempty"`
	Command   string   `json:"command"`
	Rule      string   `json:"rule"`
	Reason    string   `json:"reason"`
	Types     []string `json:"types"`
	RiskScore int      `json:"risk_score"`
	RiskLevel string   `json:"risk_level"`
}

// Dispatcher fans out events to the webhooks whose Events list matches.
type Dispatcher struct {
	configs  []WebhookConfig
	attempts int
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Returns nil when no webhooks are
// configured; callers nil-check before dispatching.
func NewDispatcher(configs []WebhookConfig) *Dispatcher {
	if len(configs) == 0 {
		return nil
	}
	return &Dispatcher{configs: configs, attempts: maxRetries}
}

// SingleAttempt disables retries for dispatched sends, bounding each webhook
// to one request deadline. The per-command hook path uses this so a webhook
// outage cannot hold the command decision for the full retry schedule.
func (d *Dispatcher) SingleAttempt() *Dispatcher {
	if d != nil {
		d.attempts = 1
	}
	return d
}

// Dispatch sends the event to every matching webhook without blocking the
// caller. Call Close before process exit to let in-flight sends finish.
func (d *Dispatcher) Dispatch(event Event) {
	for _, cfg := range d.configs {
		if !matches(cfg.Events, event) {
			continue
		}
		d.wg.Add(1)
		go func(cfg WebhookConfig) {
			defer d.wg.Done()
			if err := send(cfg, event, d.attempts); err != nil {
				log.Warn().Str("url", cfg.URL).Err(err).Msg("webhook notification failed")
			}
		}(cfg)
	}
}

// Close waits for in-flight sends. Each is bounded by its own deadline.
func (d *Dispatcher) Close() {
	d.wg.Wait()
}

// matches reports whether the webhook subscribes to this event. An empty
// Events list or the token "blocked" matches every denial; otherwise the
// event's violation type tokens are compared.
func matches(events []string, event Event) bool {
	if len(events) == 0 {
		return true
	}
	for _, e := range events {
		if e == "blocked" {
			return true
		}
		for _, t := range event.Types {
			if e == t {
				return true
			}
		}
	}
	return false
}
