// Package risk assigns a 1-10 risk score and human-readable factor labels
// to a command. The score is the maximum over all matching pattern weights;
// adding patterns can only raise a command's score, never lower it.
package risk

import (
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/bashbros/bashbros/internal/config"
	"github.com/bashbros/bashbros/internal/model"
)

// weighted is one built-in or configured risk pattern.
type weighted struct {
	re    *regexp.Regexp
	score int
	label string
}

// builtinPatterns is the built-in weight table. Labels surface as risk
// factors in command records and audit output.
var builtinPatterns = []weighted{
	{regexp.MustCompile(`(?i)\brm\s+(-[a-z]*r[a-z]*f|-[a-z]*f[a-z]*r)\b.*\s(/|/\*|~|\$HOME)(\s|$)`), 9, "Recursive delete of root or home"},
	{regexp.MustCompile(`(?i)\b(curl|wget)\b.*\|\s*(bash|sh|zsh|python3?)\b`), 10, "Remote code execution"},
	{regexp.MustCompile(`(?i)\bchmod\s+(-[a-z]+\s+)?777\b`), 7, "World-writable permissions"},
	{regexp.MustCompile(`(?i)\b(sudo|su\s|doas)\b`), 6, "Privilege escalation"},
	{regexp.MustCompile(`(?i)\b(mkfs|dd\s+[^|]*of=/dev/|>\s*/dev/sd[a-z])`), 10, "Direct block device write"},
	{regexp.MustCompile(`:\(\)\s*\{\s*:\|:&\s*\};:`), 10, "Fork bomb"},
	{regexp.MustCompile(`(?i)/etc/passwd`), 5, "System password file access"},
	{regexp.MustCompile(`(?i)/etc/shadow`), 8, "Shadow password file access"},
	{regexp.MustCompile(`(?i)\.(ssh|aws|gnupg|kube|docker)/`), 6, "Credential directory access"},
	{regexp.MustCompile(`(?i)\.env\b`), 5, "Environment file access"},
	{regexp.MustCompile(`(?i)\bbase64\s+(-d|--decode)\b`), 4, "Base64 decode"},
	{regexp.MustCompile(`(?i)\beval\b`), 6, "Dynamic code evaluation"},
	{regexp.MustCompile(`(?i)\bgit\s+push\s+(--force|-f)\b`), 7, "Force push"},
	{regexp.MustCompile(`(?i)\b(nc|netcat|ncat)\b.*\s-e\b`), 9, "Reverse shell"},
	{regexp.MustCompile(`(?i)\b(iptables|ufw)\s+(-F|--flush|disable)\b`), 8, "Firewall teardown"},
	{regexp.MustCompile(`(?i)\bcrontab\s+-r\b`), 7, "Crontab wipe"},
	{regexp.MustCompile(`(?i)\bkill\s+-9\s+-?1\b`), 8, "Mass process kill"},
	{regexp.MustCompile(`(?i)\bhistory\s+-c\b`), 6, "History clearing"},
}

// Assessment is the result of scoring one command.
type Assessment struct {
	Score   int             `json:"score"`
	Level   model.RiskLevel `json:"level"`
	Factors []string        `json:"factors,omitempty"`
}

// Scorer scores commands against the built-in table plus config patterns.
type Scorer struct {
	patterns []weighted
}

// New builds a scorer. Config patterns with invalid regexes or out-of-range
// scores are dropped with a warning.
func New(extra []config.RiskPatternConfig) *Scorer {
	patterns := make([]weighted, len(builtinPatterns))
	copy(patterns, builtinPatterns)

	for _, p := range extra {
		if p.Score < 1 || p.Score > 10 {
			log.Warn().Str("pattern", p.Pattern).Int("score", p.Score).Msg("dropping risk pattern with out-of-range score")
			continue
		}
		re, err := regexp.Compile("(?i)" + p.Pattern)
		if err != nil {
			log.Warn().Str("pattern", p.Pattern).Err(err).Msg("dropping invalid risk pattern")
			continue
		}
		label := p.Label
		if label == "" {
			label = p.Pattern
		}
		patterns = append(patterns, weighted{re: re, score: p.Score, label: label})
	}

	return &Scorer{patterns: patterns}
}

// Score assesses a command. The baseline score for an unmatched command is 1.
func (s *Scorer) Score(command string) Assessment {
	score := 1
	var factors []string

	for _, w := range s.patterns {
		if w.re.MatchString(command) {
			factors = append(factors, w.label)
			if w.score > score {
				score = w.score
			}
		}
	}

	return Assessment{
		Score:   score,
		Level:   model.LevelForScore(score),
		Factors: factors,
	}
}
