// Package pattern compiles the glob and regex patterns used by the
// allow/block/secrets lists. Compilation happens once per process; a pattern
// that fails to compile is dropped with a warning, never an error — an
// operator typo must not take down the gate path.
package pattern

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Compiled is one user pattern ready for matching, with its source retained
// for violation messages.
type Compiled struct {
	Source string
	Regex  *regexp.Regexp
}

// GlobToRegex converts a glob string to a case-insensitive regex anchored at
// both ends. Non-metacharacters are escaped; "*" becomes ".*".
func GlobToRegex(glob string) string {
	escaped := regexp.QuoteMeta(glob)
	escaped = strings.ReplaceAll(escaped, `\*`, ".*")
	return "(?i)^" + escaped + "$"
}

// CompileGlobs compiles a list of glob strings. Invalid results are dropped.
func CompileGlobs(globs []string) []Compiled {
	out := make([]Compiled, 0, len(globs))
	for _, g := range globs {
		re, err := regexp.Compile(GlobToRegex(g))
		if err != nil {
			log.Warn().Str("pattern", g).Err(err).Msg("dropping invalid glob pattern")
			continue
		}
		out = append(out, Compiled{Source: g, Regex: re})
	}
	return out
}

// CompileRegexes compiles a list of raw regex strings case-insensitively.
// Invalid regexes are dropped.
func CompileRegexes(exprs []string) []Compiled {
	out := make([]Compiled, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			log.Warn().Str("pattern", expr).Err(err).Msg("dropping invalid regex pattern")
			continue
		}
		out = append(out, Compiled{Source: expr, Regex: re})
	}
	return out
}

// MatchAny returns the first compiled pattern that matches s, or nil.
func MatchAny(patterns []Compiled, s string) *Compiled {
	for i := range patterns {
		if patterns[i].Regex.MatchString(s) {
			return &patterns[i]
		}
	}
	return nil
}
