package anomaly

import (
	"strings"
	"time"

	"github.com/bashbros/bashbros/internal/config"
)

// sensitiveHeads are command types whose first appearance after learning is
// worth flagging even when nothing else looks wrong.
var sensitiveHeads = map[string]bool{
	"curl": true, "wget": true,
	"nc": true, "netcat": true,
	"ssh": true, "scp": true, "rsync": true,
	"sudo": true, "su": true,
	"chmod": true, "chown": true,
	"mount": true, "umount": true,
}

// Baseline is the process-local anomaly variant: it learns the command heads
// and working directories seen during the learning window, then flags new
// sensitive command types. Used where no shared store is available.
// Not safe for concurrent use.
type Baseline struct {
	cfg      config.AnomalyDetectionConfig
	heads    map[string]bool
	cwds     map[string]bool
	observed int
}

// NewBaseline creates an empty process-local baseline.
func NewBaseline(cfg config.AnomalyDetectionConfig) *Baseline {
	return &Baseline{
		cfg:   cfg,
		heads: make(map[string]bool),
		cwds:  make(map[string]bool),
	}
}

// Learning reports whether the baseline is still inside its learning window.
func (b *Baseline) Learning() bool {
	return b.observed < b.cfg.LearningCommands
}

// Observe records one command and returns findings. During learning it only
// records. After learning, a sensitive command head not seen before is
// flagged as new_command_type, plus the shared off-hours check.
func (b *Baseline) Observe(command, cwd string, now time.Time) []string {
	head := commandHead(command)
	learning := b.Learning()
	b.observed++

	if learning {
		if head != "" {
			b.heads[head] = true
		}
		if cwd != "" {
			b.cwds[cwd] = true
		}
		return nil
	}

	var findings []string

	if sensitiveHeads[head] && !b.heads[head] {
		findings = append(findings, "new_command_type: "+head)
		b.heads[head] = true
	}

	hour := now.Hour()
	if hour < b.cfg.WorkingHours.Start || hour >= b.cfg.WorkingHours.End {
		findings = append(findings, "off_hours")
	}

	if cwd != "" && !b.cwds[cwd] {
		b.cwds[cwd] = true
	}

	return findings
}

// commandHead returns the first token of a command, with any leading path
// stripped ("/usr/bin/curl" -> "curl").
func commandHead(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	head := fields[0]
	if i := strings.LastIndex(head, "/"); i >= 0 {
		head = head[i+1:]
	}
	return head
}
