package notify

import (
	"encoding/json"
	"fmt"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, event Event) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(event)
	case "pagerduty":
		return formatPagerDuty(event)
	default:
		return json.Marshal(event)
	}
}

func formatSlack(event Event) ([]byte, error) {
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": "bashbros: command blocked",
				},
			},
			map[string]any{
				"type": "section",
				"fields": []any{
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Command:* `%s`", event.Command)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Rule:* %s", event.Rule)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Risk:* %d (%s)", event.RiskScore, event.RiskLevel)},
					map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Reason:* %s", event.Reason)},
				},
			},
		},
	}
	return json.Marshal(payload)
}

func formatPagerDuty(event Event) ([]byte, error) {
	severity := "warning"
	switch event.RiskLevel {
	case "critical":
		severity = "critical"
	case "dangerous":
		severity = "error"
	}

	payload := map[string]any{
		"event_action": "trigger",
		"payload": map[string]any{
			"summary":  fmt.Sprintf("bashbros blocked: %s", event.Command),
			"severity": severity,
			"source":   "bashbros",
			"custom_details": map[string]any{
				"command":    event.Command,
				"rule":       event.Rule,
				"reason":     event.Reason,
				"risk_score": event.RiskScore,
				"session_id": event.SessionID,
			},
		},
	}
	return json.Marshal(payload)
}
