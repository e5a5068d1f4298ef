package policy

import "strings"

// shell metacharacters that end a token.
const breakChars = "|&;<>()"

// ExtractPaths tokenizes a command and returns the arguments that look like
// filesystem paths: absolute, home-relative, dot-relative, or containing a
// separator. Flags and bare words are skipped. This is a heuristic
// tokenizer, not a shell parser — it exists to feed the sandbox and secrets
// guard, both of which tolerate false positives.
func ExtractPaths(command string) []string {
	var paths []string
	for _, tok := range tokenize(command) {
		if tok == "" || strings.HasPrefix(tok, "-") {
			continue
		}
		if looksLikePath(tok) {
			paths = append(paths, tok)
		}
	}
	return paths
}

func looksLikePath(tok string) bool {
	if strings.HasPrefix(tok, "/") || strings.HasPrefix(tok, "~") ||
		strings.HasPrefix(tok, "./") || strings.HasPrefix(tok, "../") {
		return true
	}
	// Relative paths with a separator, but not URLs or option=value forms.
	if strings.Contains(tok, "/") && !strings.Contains(tok, "://") && !strings.Contains(tok, "=") {
		return true
	}
	return false
}

// tokenize splits on whitespace and shell metacharacters, honoring simple
// single and double quoting.
func tokenize(command string) []string {
	var tokens []string
	var cur strings.Builder
	var quote byte

	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(command); i++ {
		c := command[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ' ' || c == '\t':
			flush()
		case strings.IndexByte(breakChars, c) >= 0:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return tokens
}
