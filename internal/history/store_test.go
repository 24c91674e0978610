package history

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultPathUsesXDGState(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state")
	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath error: %v", err)
	}
	if got != "/tmp/state/qline/history.json" {
		t.Fatalf("DefaultPath = %q", got)
	}
}

func TestNewStoreEmptyPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	s, err := NewStore("", 10)
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	if s.Path() != filepath.Join(dir, "qline", "history.json") {
		t.Fatalf("Path = %q", s.Path())
	}
}

func TestLoadMissing(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "none.json"), 10)
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	entries, err := s.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %q, want none", entries)
	}
}

func TestSaveLoadKeepsNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	s, err := NewStore(path, 2)
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	if err := s.Save([]string{"one", "two", "three\nlines"}); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	entries, err := s.Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := []string{"two", "three\nlines"}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("entries = %q, want %q", entries, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), `"last_saved"`) {
		t.Fatalf("history file missing last_saved:\n%s", data)
	}
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := NewStore(path, 0)
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	if _, err := s.Load(); err == nil {
		t.Fatalf("expected decode error")
	}
}
