package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func sampleEvent() Event {
	return Event{
		Timestamp: "2025-06-02T14:30:00Z",
		Command:   "rm -rf /",
		Rule:      "block:rm -rf /*",
		Reason:    "command blocked: rm -rf /",
		Types:     []string{"command", "risk"},
		RiskScore: 9,
		RiskLevel: "critical",
	}
}

func TestSendGeneric(t *testing.T) {
	var got Event
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &got)
		auth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	cfg := WebhookConfig{
		URL:     srv.URL,
		Headers: map[string]string{"Authorization": "Bearer tok"},
	}
	if err := Send(cfg, sampleEvent()); err != nil {
		t.Fatal(err)
	}
	if got.Command != "rm -rf /" || got.Rule != "block:rm -rf /*" {
		t.Errorf("unexpected payload: %+v", got)
	}
	if auth != "Bearer tok" {
		t.Errorf("expected custom header forwarded, got %q", auth)
	}
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
	}))
	defer srv.Close()

	if err := Send(WebhookConfig{URL: srv.URL}, sampleEvent()); err != nil {
		t.Fatalf("expected success on third attempt, got %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	if err := Send(WebhookConfig{URL: srv.URL}, sampleEvent()); err == nil {
		t.Fatal("expected error on 403")
	}
	if calls.Load() != 1 {
		t.Errorf("4xx must not be retried, got %d attempts", calls.Load())
	}
}

func TestDispatcherMatching(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	d := NewDispatcher([]WebhookConfig{
		{URL: srv.URL, Events: []string{"secrets"}},         // no match
		{URL: srv.URL, Events: []string{"blocked"}},         // matches any denial
		{URL: srv.URL, Events: []string{"command", "loop"}}, // matches by type
		{URL: srv.URL},                                      // empty list matches all
	})
	d.Dispatch(sampleEvent())
	d.Close()

	if hits.Load() != 3 {
		t.Errorf("expected 3 webhooks hit, got %d", hits.Load())
	}
}

func TestNewDispatcherEmpty(t *testing.T) {
	if d := NewDispatcher(nil); d != nil {
		t.Error("expected nil dispatcher with no webhooks")
	}
	if d := NewDispatcher(nil).SingleAttempt(); d != nil {
		t.Error("expected SingleAttempt to pass through a nil dispatcher")
	}
}

func TestSingleAttemptDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := NewDispatcher([]WebhookConfig{{URL: srv.URL}}).SingleAttempt()
	d.Dispatch(sampleEvent())
	d.Close()

	if calls.Load() != 1 {
		t.Errorf("expected exactly 1 attempt, got %d", calls.Load())
	}
}

func TestSlackFormat(t *testing.T) {
	body, err := FormatPayload("slack", sampleEvent())
	if err != nil {
		t.Fatal(err)
	}
	s := string(body)
	if !strings.Contains(s, "blocks") || !strings.Contains(s, "rm -rf /") {
		t.Errorf("unexpected slack payload: %s", s)
	}
}

func TestPagerDutySeverity(t *testing.T) {
	body, err := FormatPayload("pagerduty", sampleEvent())
	if err != nil {
		t.Fatal(err)
	}
	var payload struct {
		EventAction string `json:"event_action"`
		Payload     struct {
			Severity string `json:"severity"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.EventAction != "trigger" || payload.Payload.Severity != "critical" {
		t.Errorf("unexpected pagerduty payload: %+v", payload)
	}
}
