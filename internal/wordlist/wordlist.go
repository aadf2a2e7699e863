// Package wordlist loads content lists from plain-text files.
package wordlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/fillbox/internal/lists"
	"github.com/verte-zerg/fillbox/internal/model"
)

// Entry is one parsed line: a key with an optional decoration.
type Entry struct {
	Key        string
	Decoration string
}

// LoadEntries reads one key per line from the provided file path. A tab
// separates the key from an optional decoration; lines starting with # are
// comments.
func LoadEntries(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only list file.
			_ = cerr
		}
	}()
	return ReadEntries(file)
}

// ReadEntries parses entries from r.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, decoration, _ := strings.Cut(line, "\t")
		entries = append(entries, Entry{
			Key:        strings.TrimSpace(key),
			Decoration: strings.TrimSpace(decoration),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}
	return entries, nil
}

// BuildItems normalizes entries for mode, drops the ones the mode cannot
// use and returns fresh items plus the number skipped.
func BuildItems(entries []Entry, mode model.Mode) ([]model.ContentItem, int) {
	filter := FilterForMode(mode)
	items := make([]model.ContentItem, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		key := strings.ToUpper(e.Key)
		if !filter(key) {
			skipped++
			continue
		}
		items = append(items, lists.NewItem(key, e.Decoration))
	}
	return items, skipped
}
