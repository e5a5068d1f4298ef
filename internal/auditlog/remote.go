package auditlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bashbros/bashbros/internal/model"
)

// remoteTimeout bounds each remote POST.
const remoteTimeout = 5 * time.Second

// Version is stamped into the remote User-Agent header.
var Version = "dev"

// remotePayload is the JSON body posted to the remote audit endpoint.
type remotePayload struct {
	Timestamp  string            `json:"timestamp"`
	Command    string            `json:"command"`
	Allowed    bool              `json:"allowed"`
	Violations []remoteViolation `json:"violations"`
	Duration   int64             `json:"duration"`
	Agent      string            `json:"agent"`
}

type remoteViolation struct {
	Type    string `json:"type"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// remoteSender posts entries to an https endpoint. Failures are silent by
// contract: remote audit is best-effort and must never slow or change the
// gate decision.
type remoteSender struct {
	url    string
	client *http.Client
}

// newRemoteSender validates the URL scheme. Only https is accepted.
func newRemoteSender(url string) (*remoteSender, error) {
	if !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("remote audit URL must be https://, got %q", url)
	}
	return &remoteSender{
		url:    url,
		client: &http.Client{Timeout: remoteTimeout},
	}, nil
}

func (r *remoteSender) send(entry Entry, violations []model.Violation, agent string) {
	payload := remotePayload{
		Timestamp: entry.Timestamp.UTC().Format(time.RFC3339),
		Command:   Sanitize(entry.Command),
		Allowed:   entry.Allowed,
		Duration:  entry.DurationMs,
		Agent:     agent,
	}
	payload.Violations = make([]remoteViolation, 0, len(violations))
	for _, v := range violations {
		payload.Violations = append(payload.Violations, remoteViolation{
			Type:    string(v.Type),
			Rule:    v.Rule,
			Message: v.Message,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "BashBros/"+Version)

	resp, err := r.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
