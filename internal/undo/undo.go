// Package undo keeps a per-session stack of file backups so destructive
// file operations performed on the agent's behalf can be reversed. Backups
// live under the user undo directory; the stack index is a JSON file
// rewritten atomically (tmp + rename) on every change.
package undo

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxBackupSize is the per-file backup cap. Larger files are tracked
	// without a backup so undo still knows the operation happened.
	MaxBackupSize = 10 * 1024 * 1024
	// MaxEntries caps the stack; the oldest entry is evicted beyond it.
	MaxEntries = 100
)

// Operation is the kind of file change an entry records.
type Operation string

const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Entry is one recorded file operation.
type Entry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path"`
	Operation  Operation `json:"operation"`
	BackupPath string    `json:"backup_path,omitempty"`
	Command    string    `json:"command,omitempty"`
}

// Stack is the persistent undo stack rooted at a backup directory.
type Stack struct {
	dir     string
	entries []Entry
}

// Open loads (or initializes) the stack in the given directory.
func Open(dir string) (*Stack, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create undo dir: %w", err)
	}

	s := &Stack{dir: dir}
	data, err := os.ReadFile(s.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read undo index: %w", err)
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		return nil, fmt.Errorf("parse undo index: %w", err)
	}
	return s, nil
}

// Entries returns the stack contents, oldest first.
func (s *Stack) Entries() []Entry {
	return s.entries
}

// RecordCreate records a file about to be created. No backup is needed —
// undoing a create is deletion.
func (s *Stack) RecordCreate(path, command string) error {
	return s.push(Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Path:      path,
		Operation: OpCreate,
		Command:   command,
	})
}

// RecordModify backs up a file about to be modified.
func (s *Stack) RecordModify(path, command string) error {
	return s.recordWithBackup(path, command, OpModify)
}

// RecordDelete backs up a file about to be deleted.
func (s *Stack) RecordDelete(path, command string) error {
	return s.recordWithBackup(path, command, OpDelete)
}

func (s *Stack) recordWithBackup(path, command string, op Operation) error {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Path:      path,
		Operation: op,
		Command:   command,
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if info.Size() <= MaxBackupSize {
		backup := filepath.Join(s.dir, fmt.Sprintf("%d-%s.backup", time.Now().UnixNano(), entry.ID[:8]))
		if err := copyFile(path, backup); err != nil {
			return fmt.Errorf("backup %s: %w", path, err)
		}
		entry.BackupPath = backup
	}

	return s.push(entry)
}

// Undo reverses the top entry and pops it. Create is undone by unlinking;
// modify and delete restore the backup, creating parent directories as
// needed.
func (s *Stack) Undo() (*Entry, error) {
	if len(s.entries) == 0 {
		return nil, fmt.Errorf("undo stack is empty")
	}
	entry := s.entries[len(s.entries)-1]

	switch entry.Operation {
	case OpCreate:
		if err := os.Remove(entry.Path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("undo create: %w", err)
		}
	case OpModify, OpDelete:
		if entry.BackupPath == "" {
			return nil, fmt.Errorf("no backup recorded for %s (file exceeded %d bytes)", entry.Path, MaxBackupSize)
		}
		if err := os.MkdirAll(filepath.Dir(entry.Path), 0755); err != nil {
			return nil, fmt.Errorf("restore parent dir: %w", err)
		}
		if err := copyFile(entry.BackupPath, entry.Path); err != nil {
			return nil, fmt.Errorf("restore %s: %w", entry.Path, err)
		}
		_ = os.Remove(entry.BackupPath)
	}

	s.entries = s.entries[:len(s.entries)-1]
	if err := s.save(); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Stack) push(entry Entry) error {
	s.entries = append(s.entries, entry)

	// Evict oldest beyond the cap, deleting their backups.
	for len(s.entries) > MaxEntries {
		old := s.entries[0]
		if old.BackupPath != "" {
			_ = os.Remove(old.BackupPath)
		}
		s.entries = s.entries[1:]
	}

	return s.save()
}

func (s *Stack) indexPath() string {
	return filepath.Join(s.dir, "stack.json")
}

// save rewrites the index atomically so a killed process never leaves a
// truncated stack.
func (s *Stack) save() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal undo index: %w", err)
	}

	tmp := s.indexPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write undo index: %w", err)
	}
	if err := os.Rename(tmp, s.indexPath()); err != nil {
		return fmt.Errorf("replace undo index: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
