package undo

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestUndoCreateRemovesFile(t *testing.T) {
	work := t.TempDir()
	stack, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(work, "new.txt")
	if err := stack.RecordCreate(target, "touch new.txt"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, target, "content")

	entry, err := stack.Undo()
	if err != nil {
		t.Fatal(err)
	}
	if entry.Operation != OpCreate {
		t.Errorf("expected create entry, got %s", entry.Operation)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("expected created file removed")
	}
	if len(stack.Entries()) != 0 {
		t.Error("expected empty stack after undo")
	}
}

func TestUndoModifyRestoresContent(t *testing.T) {
	work := t.TempDir()
	stack, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(work, "file.txt")
	writeFile(t, target, "original")
	if err := stack.RecordModify(target, "sed -i ..."); err != nil {
		t.Fatal(err)
	}
	writeFile(t, target, "mangled")

	if _, err := stack.Undo(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Errorf("expected original content restored, got %q", data)
	}
}

func TestUndoDeleteRecreatesParents(t *testing.T) {
	work := t.TempDir()
	stack, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	dir := filepath.Join(work, "a", "b")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "file.txt")
	writeFile(t, target, "keep me")
	if err := stack.RecordDelete(target, "rm -r a"); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(filepath.Join(work, "a")); err != nil {
		t.Fatal(err)
	}

	if _, err := stack.Undo(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "keep me" {
		t.Errorf("expected deleted file restored, got %q", data)
	}
}

func TestRecordMissingFileFails(t *testing.T) {
	stack, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := stack.RecordModify("/no/such/file", "x"); err == nil {
		t.Error("expected error recording a missing file")
	}
}

func TestUndoEmptyStack(t *testing.T) {
	stack, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := stack.Undo(); err == nil {
		t.Error("expected error on empty stack")
	}
}

func TestStackPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	work := t.TempDir()
	target := filepath.Join(work, "f.txt")
	writeFile(t, target, "v1")

	stack, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := stack.RecordModify(target, "edit"); err != nil {
		t.Fatal(err)
	}

	// A second process opening the same directory sees the entry.
	reopened, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	entries := reopened.Entries()
	if len(entries) != 1 || entries[0].Path != target {
		t.Fatalf("expected persisted entry, got %+v", entries)
	}

	writeFile(t, target, "v2")
	if _, err := reopened.Undo(); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "v1" {
		t.Errorf("expected v1 restored, got %q", data)
	}
}

func TestEvictionDropsOldestBackups(t *testing.T) {
	dir := t.TempDir()
	work := t.TempDir()
	stack, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}

	target := filepath.Join(work, "f.txt")
	writeFile(t, target, "content")
	for i := 0; i < MaxEntries+5; i++ {
		if err := stack.RecordModify(target, "edit"); err != nil {
			t.Fatal(err)
		}
	}

	if len(stack.Entries()) != MaxEntries {
		t.Errorf("expected stack capped at %d, got %d", MaxEntries, len(stack.Entries()))
	}
}
