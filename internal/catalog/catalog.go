// Package catalog provides the built-in content lists.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/fillbox/internal/model"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Default list ids per mode.
const (
	DefaultWordList   = "animals-easy"
	DefaultNumberList = "numbers-1-20"
	DefaultLetterList = "letters-a-z"
)

// BuiltIn parses the embedded catalog.
func BuiltIn() ([]model.ContentList, error) {
	return Parse(catalogYAML)
}

// Parse decodes a YAML list catalog.
func Parse(raw []byte) ([]model.ContentList, error) {
	var lists []model.ContentList
	if err := yaml.Unmarshal(raw, &lists); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	for i, l := range lists {
		if l.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if !l.Mode.Valid() {
			return nil, fmt.Errorf("catalog list %s has unknown mode %q", l.ID, l.Mode)
		}
		if len(l.Items) == 0 {
			return nil, fmt.Errorf("catalog list %s has no items", l.ID)
		}
	}
	return lists, nil
}

// DefaultListID returns the built-in list selected when switching to mode.
func DefaultListID(mode model.Mode) string {
	switch mode {
	case model.ModeWord:
		return DefaultWordList
	case model.ModeNumber:
		return DefaultNumberList
	case model.ModeLetter:
		return DefaultLetterList
	default:
		return ""
	}
}
