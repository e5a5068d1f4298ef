package model

// ViolationType identifies which policy layer produced a violation.
type ViolationType string

const (
	ViolationCommand   ViolationType = "command"
	ViolationPath      ViolationType = "path"
	ViolationSecrets   ViolationType = "secrets"
	ViolationRisk      ViolationType = "risk"
	ViolationRateLimit ViolationType = "rate_limit"
	ViolationLoop      ViolationType = "loop"
	ViolationAnomaly   ViolationType = "anomaly"
)

// Severity classifies how serious a violation is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Violation is a structured deny reason from one policy check.
type Violation struct {
	Type        ViolationType `json:"type"`
	Rule        string        `json:"rule"`
	Message     string        `json:"message"`
	Remediation []string      `json:"remediation,omitempty"`
	Severity    Severity      `json:"severity,omitempty"`
}

// Types returns the deduplicated violation type tokens in first-seen order.
// Used for the bracket tag in audit log lines.
func Types(violations []Violation) []string {
	seen := make(map[ViolationType]bool)
	var out []string
	for _, v := range violations {
		if !seen[v.Type] {
			seen[v.Type] = true
			out = append(out, string(v.Type))
		}
	}
	return out
}
