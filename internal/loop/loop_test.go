package loop

import (
	"testing"

	"github.com/bashbros/bashbros/internal/config"
)

// fakeHistory serves a fixed command window.
type fakeHistory struct {
	total  int
	recent []string
	err    error
}

func (f *fakeHistory) SessionCommandCount(string) (int, error) { return f.total, f.err }
func (f *fakeHistory) RecentSessionCommandTexts(string, int) ([]string, error) {
	return f.recent, f.err
}

func loopConfig() config.LoopDetectionConfig {
	return config.LoopDetectionConfig{
		Enabled:             true,
		MaxRepeats:          3,
		MaxTurns:            500,
		WindowSize:          20,
		SimilarityThreshold: 0.85,
		Action:              "block",
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in, out string
	}{
		{"Git   Status", "git status"},
		{`echo "hello world"`, "echo hello world"},
		{"retry attempt 42", "retry attempt N"},
		{"git checkout deadbeef1234", "git checkout H"},
		{"  ls  ", "ls"},
	}
	for _, c := range cases {
		if got := Normalize(c.in); got != c.out {
			t.Errorf("Normalize(%q): expected %q, got %q", c.in, c.out, got)
		}
	}
}

func TestNormalizeEquatesLiteralVariants(t *testing.T) {
	a := Normalize("curl https://api.example/items/17")
	b := Normalize("curl https://api.example/items/99")
	if a != b {
		t.Errorf("expected equal shapes, got %q vs %q", a, b)
	}
}

func TestSimilarity(t *testing.T) {
	if s := Similarity("git status", "git status"); s != 1 {
		t.Errorf("identical commands: expected 1, got %f", s)
	}
	if s := Similarity("git status", "docker ps"); s != 0 {
		t.Errorf("disjoint commands: expected 0, got %f", s)
	}
	// 3 of 4 tokens shared.
	s := Similarity("npm run test unit", "npm run test integration")
	if s < 0.59 || s > 0.61 {
		t.Errorf("expected ~0.6, got %f", s)
	}
}

func TestExactRepeatBlocks(t *testing.T) {
	hist := &fakeHistory{recent: []string{"make build", "make build", "ls"}}
	res, err := Check("make build", "s1", loopConfig(), hist)
	if err != nil {
		t.Fatal(err)
	}
	if res.Violation == nil {
		t.Fatal("expected a violation: 2 stored + incoming = 3 repeats")
	}
	if res.Violation.Rule != "exact_repeat" {
		t.Errorf("expected exact_repeat, got %q", res.Violation.Rule)
	}
}

func TestExactRepeatBelowThresholdPasses(t *testing.T) {
	hist := &fakeHistory{recent: []string{"make build", "ls"}}
	res, err := Check("make build", "s1", loopConfig(), hist)
	if err != nil {
		t.Fatal(err)
	}
	if res.Violation != nil || res.Warning != "" {
		t.Errorf("1 stored + incoming = 2 < 3: expected pass, got %+v", res)
	}
}

func TestSemanticRepeatCountsPriorOnly(t *testing.T) {
	cfg := loopConfig()

	// Two similar prior commands: below the threshold of 3.
	hist := &fakeHistory{recent: []string{
		"curl https://api.example/items/1",
		"curl https://api.example/items/2",
	}}
	res, err := Check("curl https://api.example/items/3", "s1", cfg, hist)
	if err != nil {
		t.Fatal(err)
	}
	if res.Violation != nil {
		t.Errorf("2 similar prior commands: expected pass, got %v", res.Violation)
	}

	// Three similar prior commands trigger.
	hist.recent = append(hist.recent, "curl https://api.example/items/5")
	res, err = Check("curl https://api.example/items/9", "s1", cfg, hist)
	if err != nil {
		t.Fatal(err)
	}
	if res.Violation == nil {
		t.Fatal("3 similar prior commands: expected violation")
	}
	if res.Violation.Rule != "semantic_repeat" {
		t.Errorf("expected semantic_repeat, got %q", res.Violation.Rule)
	}
}

func TestMaxTurns(t *testing.T) {
	hist := &fakeHistory{total: 500}
	res, err := Check("ls", "s1", loopConfig(), hist)
	if err != nil {
		t.Fatal(err)
	}
	if res.Violation == nil || res.Violation.Rule != "max_turns" {
		t.Errorf("expected max_turns violation, got %+v", res)
	}
}

func TestWarnActionSetsWarningOnly(t *testing.T) {
	cfg := loopConfig()
	cfg.Action = "warn"
	hist := &fakeHistory{recent: []string{"make build", "make build"}}
	res, err := Check("make build", "s1", cfg, hist)
	if err != nil {
		t.Fatal(err)
	}
	if res.Violation != nil {
		t.Errorf("warn mode must not produce a violation, got %v", res.Violation)
	}
	if res.Warning == "" {
		t.Error("warn mode must set the warning message")
	}
}

func TestDisabledOrNoSession(t *testing.T) {
	cfg := loopConfig()
	cfg.Enabled = false
	hist := &fakeHistory{total: 9999, recent: []string{"x", "x", "x", "x"}}
	if res, _ := Check("x", "s1", cfg, hist); res.Violation != nil || res.Warning != "" {
		t.Errorf("disabled detector must pass, got %+v", res)
	}
	if res, _ := Check("x", "", loopConfig(), hist); res.Violation != nil || res.Warning != "" {
		t.Errorf("empty session must pass, got %+v", res)
	}
}
