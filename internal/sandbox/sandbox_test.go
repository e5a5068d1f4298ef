package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bashbros/bashbros/internal/model"
)

func TestBlockPrefix(t *testing.T) {
	s := New([]string{"*"}, []string{"/etc", "/boot"})

	v := s.Check("/etc/passwd")
	if v == nil {
		t.Fatal("expected violation for /etc/passwd")
	}
	if v.Type != model.ViolationPath {
		t.Errorf("expected path violation, got %s", v.Type)
	}
	if v.Rule != "block:/etc" {
		t.Errorf("expected block rule, got %q", v.Rule)
	}

	if v := s.Check("/etcetera/file"); v != nil {
		t.Errorf("prefix match must respect path boundaries, got %v", v)
	}
}

func TestAllowPrefix(t *testing.T) {
	dir := t.TempDir()
	s := New([]string{dir}, nil)

	inside := filepath.Join(dir, "sub", "file.txt")
	if v := s.Check(inside); v != nil {
		t.Errorf("expected %s allowed, got %v", inside, v)
	}

	v := s.Check("/var/lib/other")
	if v == nil {
		t.Fatal("expected violation outside allowed prefixes")
	}
	if v.Rule != "not-allowed" {
		t.Errorf("expected not-allowed rule, got %q", v.Rule)
	}
}

func TestBlockWinsOverAllow(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "secrets")
	s := New([]string{dir}, []string{blocked})

	if v := s.Check(filepath.Join(blocked, "key.pem")); v == nil {
		t.Error("expected block to win inside an allowed prefix")
	}
}

func TestResolveMissingPath(t *testing.T) {
	r := Resolve("/no/such/path/anywhere")
	if r.Real != "/no/such/path/anywhere" {
		t.Errorf("missing path should resolve to its cleaned form, got %q", r.Real)
	}
	if r.WasSymlink {
		t.Error("missing path cannot be a symlink")
	}
}

func TestSymlinkFollowedToTarget(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	if err := os.WriteFile(target, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	r := Resolve(link)
	if !r.WasSymlink {
		t.Error("expected WasSymlink for a symlink")
	}
	if r.Real != target {
		t.Errorf("expected resolution to %s, got %s", target, r.Real)
	}
}

func TestSymlinkEscapeDetected(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "sneaky")
	if err := os.Symlink("/etc", link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	s := New([]string{"*"}, nil)
	v := s.Check(link)
	if v == nil {
		t.Fatal("expected symlink escape violation")
	}
	if v.Rule != "symlink_escape" {
		t.Errorf("expected symlink_escape rule, got %q", v.Rule)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got := expandHome("~/projects")
	want := filepath.Join(home, "projects")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if expandHome("/absolute") != "/absolute" {
		t.Error("absolute paths must pass through unchanged")
	}
}
