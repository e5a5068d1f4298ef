// Package loop detects repeated commands within a session: exact repeats,
// semantic repeats (Jaccard similarity over normalized tokens), and a
// max-turn cutoff. It reads the session's recent command window from the
// shared store so detection spans short-lived hook processes.
package loop

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/bashbros/bashbros/internal/config"
	"github.com/bashbros/bashbros/internal/model"
)

// History is the slice of the store the detector needs.
type History interface {
	SessionCommandCount(sessionID string) (int, error)
	RecentSessionCommandTexts(sessionID string, n int) ([]string, error)
}

// Result is the outcome of one loop check. A warn-mode detection sets
// Warning and leaves Violation nil.
type Result struct {
	Violation *model.Violation
	Warning   string
}

var (
	quoteRe = regexp.MustCompile("[\"'`]")
	spaceRe = regexp.MustCompile(`\s+`)
	digitRe = regexp.MustCompile(`\d+`)
	hexRe   = regexp.MustCompile(`\b[0-9a-fA-F]{8,}\b`)
)

// Normalize reduces a command to its semantic shape: lowercase, quotes
// stripped, whitespace collapsed, digit runs replaced with N, and hex runs
// of 8+ chars replaced with H. Two normalized commands that differ only in
// literals compare equal.
func Normalize(command string) string {
	s := strings.ToLower(command)
	s = quoteRe.ReplaceAllString(s, "")
	s = hexRe.ReplaceAllString(s, "H")
	s = digitRe.ReplaceAllString(s, "N")
	s = spaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Similarity computes the Jaccard index over whitespace-split tokens of two
// normalized commands.
func Similarity(a, b string) float64 {
	tokensA := strings.Fields(Normalize(a))
	tokensB := strings.Fields(Normalize(b))
	if len(tokensA) == 0 && len(tokensB) == 0 {
		return 1
	}

	setA := make(map[string]bool, len(tokensA))
	for _, t := range tokensA {
		setA[t] = true
	}
	setB := make(map[string]bool, len(tokensB))
	for _, t := range tokensB {
		setB[t] = true
	}

	intersection := 0
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Check runs loop detection for an incoming command against the session's
// stored history. An error reading history propagates to the caller, which
// fails open.
func Check(command, sessionID string, cfg config.LoopDetectionConfig, hist History) (Result, error) {
	if !cfg.Enabled || sessionID == "" {
		return Result{}, nil
	}

	// Max-turn cutoff comes first: a session that has run away is stopped
	// regardless of what the command is.
	if cfg.MaxTurns > 0 {
		total, err := hist.SessionCommandCount(sessionID)
		if err != nil {
			return Result{}, fmt.Errorf("session command count: %w", err)
		}
		if total >= cfg.MaxTurns {
			return emit(cfg, "max_turns",
				fmt.Sprintf("session reached %d commands (max %d)", total, cfg.MaxTurns)), nil
		}
	}

	window := cfg.WindowSize
	if window <= 0 {
		window = 20
	}
	recent, err := hist.RecentSessionCommandTexts(sessionID, window)
	if err != nil {
		return Result{}, fmt.Errorf("recent commands: %w", err)
	}

	maxRepeats := cfg.MaxRepeats
	if maxRepeats <= 0 {
		maxRepeats = 3
	}

	exact := 0
	for _, prev := range recent {
		if prev == command {
			exact++
		}
	}
	// The incoming command itself counts as one occurrence.
	if exact+1 >= maxRepeats && exact > 0 {
		return emit(cfg, "exact_repeat",
			fmt.Sprintf("command repeated %d times: %s", exact+1, command)), nil
	}

	// Semantic repeats count only prior commands: the window must already
	// hold maxRepeats near-identical entries.
	similar := 0
	for _, prev := range recent {
		if Similarity(command, prev) >= cfg.SimilarityThreshold {
			similar++
		}
	}
	if similar >= maxRepeats {
		return emit(cfg, "semantic_repeat",
			fmt.Sprintf("near-identical command seen %d times recently: %s", similar, command)), nil
	}

	return Result{}, nil
}

func emit(cfg config.LoopDetectionConfig, rule, message string) Result {
	if cfg.Action == "block" {
		return Result{Violation: &model.Violation{
			Type:     model.ViolationLoop,
			Rule:     rule,
			Message:  message,
			Severity: model.SeverityMedium,
			Remediation: []string{
				"the agent appears to be stuck; vary the approach or stop the session",
			},
		}}
	}
	return Result{Warning: message}
}
