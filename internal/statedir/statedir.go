// Package statedir defines the per-user state directory layout.
// Everything bashbros persists lives under ~/.bashbros, mode 0700.
package statedir

import (
	"fmt"
	"os"
	"path/filepath"
)

// dirPerm is the permission for supervisor-managed directories.
const dirPerm = 0700

// Layout holds the resolved state directory paths.
type Layout struct {
	Root string // ~/.bashbros
}

// Default resolves the layout under the current user's home directory.
func Default() (Layout, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Layout{}, fmt.Errorf("resolve home dir: %w", err)
	}
	return Layout{Root: filepath.Join(home, ".bashbros")}, nil
}

// DBPath returns the path to the shared store.
func (l Layout) DBPath() string {
	return filepath.Join(l.Root, "dashboard.db")
}

// AuditLogPath returns the path to the active audit log.
func (l Layout) AuditLogPath() string {
	return filepath.Join(l.Root, "audit.log")
}

// AuditLockPath returns the path to the audit lock file.
func (l Layout) AuditLockPath() string {
	return filepath.Join(l.Root, "audit.lock")
}

// UndoDir returns the path to the undo backup directory.
func (l Layout) UndoDir() string {
	return filepath.Join(l.Root, "undo")
}

// SessionAllowPath returns the path to the process-local session allowlist.
func (l Layout) SessionAllowPath() string {
	return filepath.Join(l.Root, "session-allow.json")
}

// SessionStatePath returns the path to the current-session marker file.
func (l Layout) SessionStatePath() string {
	return filepath.Join(l.Root, "session.json")
}

// Ensure creates the root and undo directories. Idempotent.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.Root, l.UndoDir()} {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
