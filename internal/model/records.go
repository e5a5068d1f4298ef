package model

import "time"

// SessionStatus is the lifecycle state of a supervised session.
type SessionStatus string

const (
	StatusRunning   SessionStatus = "running"
	StatusCompleted SessionStatus = "completed"
	StatusCrashed   SessionStatus = "crashed"
)

// Session is one supervised run of an agent, from start to termination.
type Session struct {
	ID           string            `json:"id"`
	Agent        string            `json:"agent"`
	PID          int               `json:"pid"`
	WorkingDir   string            `json:"working_dir"`
	RepoName     string            `json:"repo_name,omitempty"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      *time.Time        `json:"end_time,omitempty"`
	Status       SessionStatus     `json:"status"`
	CommandCount int               `json:"command_count"`
	BlockedCount int               `json:"blocked_count"`
	AvgRiskScore float64           `json:"avg_risk_score"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// RiskLevel buckets a 1-10 risk score.
type RiskLevel string

const (
	RiskSafe      RiskLevel = "safe"
	RiskCaution   RiskLevel = "caution"
	RiskDangerous RiskLevel = "dangerous"
	RiskCritical  RiskLevel = "critical"
)

// LevelForScore maps a 1-10 score to its risk level bucket.
// Buckets: 1-3 safe, 4-5 caution, 6-8 dangerous, 9-10 critical.
func LevelForScore(score int) RiskLevel {
	switch {
	case score >= 9:
		return RiskCritical
	case score >= 6:
		return RiskDangerous
	case score >= 4:
		return RiskCaution
	default:
		return RiskSafe
	}
}

// CommandRecord is one gated command, inserted at hook time and never mutated.
type CommandRecord struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Command     string    `json:"command"`
	Allowed     bool      `json:"allowed"`
	RiskScore   int       `json:"risk_score"`
	RiskLevel   RiskLevel `json:"risk_level"`
	RiskFactors []string  `json:"risk_factors,omitempty"`
	DurationMs  int64     `json:"duration_ms"`
	Violations  []string  `json:"violations,omitempty"`
}

// MaxPromptLength caps stored prompt text. The original length is preserved.
const MaxPromptLength = 50000

// PromptRecord is one captured user prompt.
type PromptRecord struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"session_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Prompt         string    `json:"prompt"`
	OriginalLength int       `json:"original_length"`
	WordCount      int       `json:"word_count"`
	CharLength     int       `json:"char_length"`
	WorkingDir     string    `json:"working_dir,omitempty"`
}

// ToolUseRecord is one captured generic tool invocation.
type ToolUseRecord struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	ToolName   string    `json:"tool_name"`
	Input      string    `json:"input"`  // JSON-encoded
	Output     string    `json:"output"` // JSON-encoded
	ExitCode   *int      `json:"exit_code,omitempty"`
	Success    *bool     `json:"success,omitempty"`
	WorkingDir string    `json:"working_dir,omitempty"`
	RepoName   string    `json:"repo_name,omitempty"`
}

// EgressBlock records a denied network command.
type EgressBlock struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Command   string    `json:"command"`
	Rule      string    `json:"rule"`
}

// Event is one entry on the observability timeline.
type Event struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Kind      string    `json:"kind"`
	Payload   string    `json:"payload,omitempty"` // JSON-encoded
}
