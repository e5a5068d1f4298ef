// Package anomaly flags off-hours activity, command bursts, and
// suspicious-pattern commands once a learning phase has passed. The learning
// phase is measured by the TOTAL command count in the shared store, not per
// session: a long-lived store makes learning essentially instantaneous, and
// a fresh store re-enters learning for its first session.
package anomaly

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bashbros/bashbros/internal/config"
	"github.com/bashbros/bashbros/internal/model"
	"github.com/bashbros/bashbros/internal/pattern"
)

// History is the slice of the store the detector needs.
type History interface {
	TotalCommandCount() (int, error)
	CountCommandsSince(t time.Time) (int, error)
}

// builtinSuspicious is the built-in suspicious command set, matched
// case-insensitively as regexes over the whole command.
var builtinSuspicious = []*regexp.Regexp{
	regexp.MustCompile(`(?i)passwd`),
	regexp.MustCompile(`(?i)shadow`),
	regexp.MustCompile(`(?i)/root/`),
	regexp.MustCompile(`(?i)\.ssh/`),
	regexp.MustCompile(`(?i)\.gnupg/`),
	regexp.MustCompile(`(?i)\.aws/`),
	regexp.MustCompile(`(?i)\.kube/`),
	regexp.MustCompile(`(?i)wallet`),
	regexp.MustCompile(`(?i)crypto`),
	regexp.MustCompile(`(?i)bitcoin`),
	regexp.MustCompile(`(?i)ethereum`),
	regexp.MustCompile(`(?i)private.*key`),
}

// Result is the outcome of one anomaly check. Warn mode joins all findings
// into one warning; block mode produces a violation instead.
type Result struct {
	Violation *model.Violation
	Warning   string
}

// Detector evaluates commands against the anomaly rules.
type Detector struct {
	cfg   config.AnomalyDetectionConfig
	extra []pattern.Compiled
}

// New compiles the user-supplied suspicious regexes. Invalid ones are
// dropped by the pattern catalog.
func New(cfg config.AnomalyDetectionConfig) *Detector {
	return &Detector{
		cfg:   cfg,
		extra: pattern.CompileRegexes(cfg.Patterns),
	}
}

// Check runs anomaly detection for a command at the given time. A store
// read error propagates to the caller, which fails open.
func (d *Detector) Check(command string, now time.Time, hist History) (Result, error) {
	if !d.cfg.Enabled {
		return Result{}, nil
	}

	total, err := hist.TotalCommandCount()
	if err != nil {
		return Result{}, fmt.Errorf("total command count: %w", err)
	}
	if total < d.cfg.LearningCommands {
		return Result{}, nil
	}

	var findings []string

	hour := now.Hour()
	if hour < d.cfg.WorkingHours.Start || hour >= d.cfg.WorkingHours.End {
		findings = append(findings, fmt.Sprintf("off_hours: activity at %02d:00 outside %02d:00-%02d:00",
			hour, d.cfg.WorkingHours.Start, d.cfg.WorkingHours.End))
	}

	if d.cfg.TypicalCommandsPerMinute > 0 {
		recent, err := hist.CountCommandsSince(now.Add(-time.Minute))
		if err != nil {
			return Result{}, fmt.Errorf("recent command count: %w", err)
		}
		if recent > 2*d.cfg.TypicalCommandsPerMinute {
			findings = append(findings, fmt.Sprintf("high_rate: %d commands in the last minute (typical %d)",
				recent, d.cfg.TypicalCommandsPerMinute))
		}
	}

	if label := d.matchSuspicious(command); label != "" {
		findings = append(findings, "suspicious_pattern: "+label)
	}

	if len(findings) == 0 {
		return Result{}, nil
	}

	message := strings.Join(findings, "; ")
	if d.cfg.Action == "block" {
		return Result{Violation: &model.Violation{
			Type:     model.ViolationAnomaly,
			Rule:     ruleFor(findings[0]),
			Message:  message,
			Severity: model.SeverityMedium,
		}}, nil
	}
	return Result{Warning: message}, nil
}

// matchSuspicious returns the matched pattern source, stopping at the first
// hit across built-in then user patterns.
func (d *Detector) matchSuspicious(command string) string {
	for _, re := range builtinSuspicious {
		if re.MatchString(command) {
			return re.String()
		}
	}
	if hit := pattern.MatchAny(d.extra, command); hit != nil {
		return hit.Source
	}
	return ""
}

// ruleFor extracts the rule token from a finding string.
func ruleFor(finding string) string {
	if i := strings.Index(finding, ":"); i > 0 {
		return finding[:i]
	}
	return "anomaly"
}
