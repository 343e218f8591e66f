package leaderboard

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "leaderboard.json"))
	entries, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %+v, want empty", entries)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := NewFileStore(filepath.Join(t.TempDir(), "leaderboard.json"))
	want := []Entry{
		{UserID: 1, DisplayName: "Anna", Score: 9, TotalQuestions: 10, Percentage: 90},
		{UserID: 2, Score: 8, TotalQuestions: 10, Percentage: 80},
	}
	if err := fs.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fs := NewFileStore(path)
	_, err := fs.Load()
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "leaderboard.json"))
	if err := fs.Save([]Entry{{UserID: 1, Score: 1, TotalQuestions: 10, Percentage: 10}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, f := range files {
		if strings.HasPrefix(f.Name(), ".leaderboard-") {
			t.Errorf("leftover temp file %s", f.Name())
		}
	}
	if len(files) != 1 {
		t.Errorf("dir has %d files, want just the leaderboard", len(files))
	}
}

func TestFileStoreSaveNilWritesEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leaderboard.json")
	fs := NewFileStore(path)
	if err := fs.Save(nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries, err := fs.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %+v, want empty", entries)
	}
}

func TestFileStoreCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "leaderboard.json")
	fs := NewFileStore(path)
	if err := fs.Save([]Entry{{UserID: 1, Score: 1, TotalQuestions: 10, Percentage: 10}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("stat: %v", err)
	}
}
