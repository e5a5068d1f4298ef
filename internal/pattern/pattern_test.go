package pattern

import "testing"

func TestGlobToRegex(t *testing.T) {
	cases := []struct {
		glob  string
		input string
		match bool
	}{
		{"rm -rf *", "rm -rf /tmp/x", true},
		{"rm -rf *", "RM -RF /tmp/x", true}, // case-insensitive
		{"rm -rf *", "sudo rm -rf /", false},
		{"git *", "git status", true},
		{"git *", "git", false}, // "*" needs at least the space
		{"ls", "ls", true},
		{"ls", "ls -la", false}, // anchored at both ends
		{"curl * | sh", "curl http://x.sh | sh", true},
		{"a.b", "axb", false}, // dot is literal
	}

	for _, c := range cases {
		compiled := CompileGlobs([]string{c.glob})
		if len(compiled) != 1 {
			t.Fatalf("glob %q did not compile", c.glob)
		}
		got := compiled[0].Regex.MatchString(c.input)
		if got != c.match {
			t.Errorf("glob %q vs %q: expected match=%v, got %v", c.glob, c.input, c.match, got)
		}
	}
}

func TestCompileGlobsDropsNothing(t *testing.T) {
	// QuoteMeta makes every glob a valid regex, so nothing is dropped.
	compiled := CompileGlobs([]string{"[", "(", "a*b"})
	if len(compiled) != 3 {
		t.Errorf("expected 3 compiled globs, got %d", len(compiled))
	}
}

func TestCompileRegexesDropsInvalid(t *testing.T) {
	compiled := CompileRegexes([]string{`rm\s+-rf`, `([`, `\.env`})
	if len(compiled) != 2 {
		t.Fatalf("expected 2 compiled regexes, got %d", len(compiled))
	}
	if compiled[0].Source != `rm\s+-rf` || compiled[1].Source != `\.env` {
		t.Errorf("wrong survivors: %q, %q", compiled[0].Source, compiled[1].Source)
	}
}

func TestMatchAnyReturnsFirst(t *testing.T) {
	compiled := CompileGlobs([]string{"git *", "git push*"})
	hit := MatchAny(compiled, "git push origin main")
	if hit == nil {
		t.Fatal("expected a match")
	}
	if hit.Source != "git *" {
		t.Errorf("expected first matching pattern, got %q", hit.Source)
	}
	if MatchAny(compiled, "docker ps") != nil {
		t.Error("expected no match for docker ps")
	}
}
