package wordlist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/fillbox/internal/model"
)

func TestReadEntries(t *testing.T) {
	entries, err := ReadEntries(strings.NewReader("# farm\ncat\t🐱\n\n dog \nfish\t\n"))
	if err != nil {
		t.Fatalf("read entries: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Key != "cat" || entries[0].Decoration != "🐱" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Key != "dog" || entries[2].Decoration != "" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestLoadEntriesRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("# nothing\n\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadEntries(path); err == nil {
		t.Fatalf("expected empty list error")
	}
}

func TestBuildItemsFiltersByMode(t *testing.T) {
	entries := []Entry{{Key: "cat"}, {Key: "12"}, {Key: "co-op"}, {Key: "sun", Decoration: "☀️"}}
	items, skipped := BuildItems(entries, model.ModeWord)
	if skipped != 2 || len(items) != 2 {
		t.Fatalf("expected 2 items and 2 skipped, got %d/%d", len(items), skipped)
	}
	if items[0].Key != "CAT" || items[1].Decoration != "☀️" || items[0].ID == "" || items[0].ID == items[1].ID {
		t.Fatalf("unexpected items: %+v", items)
	}
}
