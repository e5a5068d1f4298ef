package statedir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLayoutPaths(t *testing.T) {
	l := Layout{Root: "/home/u/.bashbros"}
	if l.DBPath() != "/home/u/.bashbros/dashboard.db" {
		t.Errorf("unexpected db path %q", l.DBPath())
	}
	if l.AuditLogPath() != "/home/u/.bashbros/audit.log" {
		t.Errorf("unexpected audit path %q", l.AuditLogPath())
	}
	if l.AuditLockPath() != "/home/u/.bashbros/audit.lock" {
		t.Errorf("unexpected lock path %q", l.AuditLockPath())
	}
	if l.UndoDir() != "/home/u/.bashbros/undo" {
		t.Errorf("unexpected undo dir %q", l.UndoDir())
	}
}

func TestEnsureCreatesPrivateDirs(t *testing.T) {
	l := Layout{Root: filepath.Join(t.TempDir(), ".bashbros")}
	if err := l.Ensure(); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{l.Root, l.UndoDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected %s created: %v", dir, err)
		}
		if perm := info.Mode().Perm(); perm != 0700 {
			t.Errorf("%s: expected mode 0700, got %o", dir, perm)
		}
	}

	// Idempotent.
	if err := l.Ensure(); err != nil {
		t.Errorf("second Ensure must succeed: %v", err)
	}
}
