// Package auditlog appends one text line per gate decision to an
// append-only log under the user state directory, coordinating concurrent
// writer processes with an advisory lock file and rotating the log at a
// size threshold. Availability beats strict ordering: if the lock cannot be
// acquired the write proceeds without it.
package auditlog

import (
	"fmt"
	"strings"
	"time"
)

// MaxCommandLength caps the sanitized command in a log line.
const MaxCommandLength = 1000

// Entry is one audit record.
type Entry struct {
	Timestamp  time.Time `json:"timestamp"`
	Command    string    `json:"command"`
	Allowed    bool      `json:"allowed"`
	Types      []string  `json:"types,omitempty"` // violation type tokens
	DurationMs int64     `json:"duration"`
	Agent      string    `json:"agent,omitempty"`
}

// Sanitize strips ASCII control characters (0x00-0x1f, 0x7f) from a command
// and caps it at MaxCommandLength.
func Sanitize(command string) string {
	var b strings.Builder
	b.Grow(len(command))
	for i := 0; i < len(command) && b.Len() < MaxCommandLength; i++ {
		c := command[i]
		if c < 0x20 || c == 0x7f {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// FormatLine renders an entry as one audit log line:
//
//	[<ISO8601>] <ALLOWED|BLOCKED> [<type1,type2>] (<duration>ms) <command>
//
// The bracket tag is omitted for allowed entries with no violations.
func FormatLine(e Entry) string {
	status := "ALLOWED"
	if !e.Allowed {
		status = "BLOCKED"
	}

	tag := ""
	if len(e.Types) > 0 {
		tag = " [" + strings.Join(e.Types, ",") + "]"
	}

	return fmt.Sprintf("[%s] %s%s (%dms) %s\n",
		e.Timestamp.UTC().Format(time.RFC3339),
		status, tag, e.DurationMs, Sanitize(e.Command))
}

// ParseLine parses a line produced by FormatLine. Used by audit verify and
// tail. The command is returned as written (already sanitized).
func ParseLine(line string) (Entry, error) {
	var e Entry

	if !strings.HasPrefix(line, "[") {
		return e, fmt.Errorf("missing timestamp bracket")
	}
	end := strings.Index(line, "] ")
	if end < 0 {
		return e, fmt.Errorf("unterminated timestamp")
	}
	ts, err := time.Parse(time.RFC3339, line[1:end])
	if err != nil {
		return e, fmt.Errorf("bad timestamp: %w", err)
	}
	e.Timestamp = ts
	rest := line[end+2:]

	switch {
	case strings.HasPrefix(rest, "ALLOWED"):
		e.Allowed = true
		rest = rest[len("ALLOWED"):]
	case strings.HasPrefix(rest, "BLOCKED"):
		rest = rest[len("BLOCKED"):]
	default:
		return e, fmt.Errorf("missing status token")
	}

	rest = strings.TrimPrefix(rest, " ")
	if strings.HasPrefix(rest, "[") {
		close := strings.Index(rest, "]")
		if close < 0 {
			return e, fmt.Errorf("unterminated type tag")
		}
		e.Types = strings.Split(rest[1:close], ",")
		rest = strings.TrimPrefix(rest[close+1:], " ")
	}

	if !strings.HasPrefix(rest, "(") {
		return e, fmt.Errorf("missing duration")
	}
	close := strings.Index(rest, "ms)")
	if close < 0 {
		return e, fmt.Errorf("unterminated duration")
	}
	if _, err := fmt.Sscanf(rest[1:close], "%d", &e.DurationMs); err != nil {
		return e, fmt.Errorf("bad duration: %w", err)
	}
	e.Command = strings.TrimPrefix(rest[close+3:], " ")

	return e, nil
}
