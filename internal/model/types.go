// Package model defines shared data structures.
package model

import (
	"strings"
	"time"
)

// Mode is the practice category of a list or round.
type Mode string

const (
	ModeWord   Mode = "WORDS"
	ModeNumber Mode = "NUMBERS"
	ModeLetter Mode = "LETTERS"
)

// Modes lists every supported mode in display order.
var Modes = []Mode{ModeWord, ModeNumber, ModeLetter}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeWord, ModeNumber, ModeLetter:
		return true
	default:
		return false
	}
}

// ParseMode accepts the stored names as well as the short forms used on the command line.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "words", "word":
		return ModeWord, true
	case "numbers", "number":
		return ModeNumber, true
	case "letters", "letter":
		return ModeLetter, true
	default:
		return "", false
	}
}

// Label returns a short human label.
func (m Mode) Label() string {
	switch m {
	case ModeWord:
		return "word"
	case ModeNumber:
		return "number"
	case ModeLetter:
		return "letter"
	default:
		return string(m)
	}
}

// Palette holds display colors.
type Palette struct {
	Bg        string `json:"bg"`
	Primary   string `json:"primary"`
	Accent    string `json:"accent"`
	BoxBg     string `json:"boxBg"`
	BoxBorder string `json:"boxBorder"`
}

// AppConfig defines process-wide game settings.
type AppConfig struct {
	Mode                 Mode    `json:"mode"`
	BoxesPerRound        int     `json:"boxesPerRound"`
	SoundsEnabled        bool    `json:"soundsEnabled"`
	Palette              Palette `json:"palette"`
	BuiltInTheme         string  `json:"builtInTheme"`
	ParentButtonPosition string  `json:"subtleParentButtonPosition"`
}

// DefaultConfig returns the settings used when nothing is persisted.
func DefaultConfig() AppConfig {
	return AppConfig{
		Mode:          ModeWord,
		BoxesPerRound: 6,
		SoundsEnabled: true,
		Palette: Palette{
			Bg:        "#F3F7FF",
			Primary:   "#2B6CF6",
			Accent:    "#FFB400",
			BoxBg:     "#FFFFFF",
			BoxBorder: "#DDE7FF",
		},
		BuiltInTheme:         "animals",
		ParentButtonPosition: "top-right",
	}
}

// ContentItem is one target the learner must type.
type ContentItem struct {
	ID         string `json:"id" yaml:"id"`
	Key        string `json:"key" yaml:"key"`
	Decoration string `json:"emoji,omitempty" yaml:"decoration,omitempty"`
}

// ContentList is a named collection of items usable in one mode.
type ContentList struct {
	ID        string        `json:"id" yaml:"id"`
	Title     string        `json:"title" yaml:"title"`
	Mode      Mode          `json:"type" yaml:"mode"`
	Items     []ContentItem `json:"items" yaml:"items"`
	CreatedAt time.Time     `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time     `json:"updatedAt" yaml:"-"`
}

// Clone returns a copy that shares no slices with l.
func (l ContentList) Clone() ContentList {
	out := l
	out.Items = append([]ContentItem(nil), l.Items...)
	return out
}

// BoxState is one fill-in slot of a round.
type BoxState struct {
	Target     string `json:"target"`
	Entered    string `json:"entered"`
	Locked     bool   `json:"locked"`
	Correct    bool   `json:"correct"`
	Decoration string `json:"decoration,omitempty"`
}

// RoundState is the single active round.
type RoundState struct {
	RoundID     string              `json:"roundId"`
	ListID      string              `json:"listId"`
	Mode        Mode                `json:"mode,omitempty"`
	BoxOrder    []string            `json:"boxOrder"`
	BoxStates   map[string]BoxState `json:"boxStates"`
	Completed   bool                `json:"completed"`
	StartedAt   time.Time           `json:"startedAt"`
	CompletedAt *time.Time          `json:"completedAt"`
}

// Clone returns a deep copy of r.
func (r RoundState) Clone() RoundState {
	out := r
	out.BoxOrder = append([]string(nil), r.BoxOrder...)
	out.BoxStates = make(map[string]BoxState, len(r.BoxStates))
	for id, box := range r.BoxStates {
		out.BoxStates[id] = box
	}
	if r.CompletedAt != nil {
		at := *r.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

// AllCorrect reports whether every box has been validated correct.
func (r RoundState) AllCorrect() bool {
	if len(r.BoxStates) == 0 {
		return false
	}
	for _, box := range r.BoxStates {
		if !box.Correct {
			return false
		}
	}
	return true
}

// OrderIsPermutation reports whether BoxOrder lists every box exactly once.
func (r RoundState) OrderIsPermutation() bool {
	if len(r.BoxOrder) != len(r.BoxStates) {
		return false
	}
	seen := make(map[string]struct{}, len(r.BoxOrder))
	for _, id := range r.BoxOrder {
		if _, ok := r.BoxStates[id]; !ok {
			return false
		}
		if _, dup := seen[id]; dup {
			return false
		}
		seen[id] = struct{}{}
	}
	return true
}

// Progress returns the number of correct boxes and the total.
func (r RoundState) Progress() (correct, total int) {
	for _, box := range r.BoxStates {
		if box.Correct {
			correct++
		}
	}
	return correct, len(r.BoxStates)
}

// Achievement is an earned badge.
type Achievement struct {
	ID       string    `json:"id"`
	EarnedAt time.Time `json:"earnedAt"`
}

// AchievementSet is the persisted set of badges.
type AchievementSet struct {
	Badges []Achievement `json:"badges"`
}

// Has reports whether id was earned.
func (s AchievementSet) Has(id string) bool {
	for _, b := range s.Badges {
		if b.ID == id {
			return true
		}
	}
	return false
}

// Snapshot is the bulk export/import shape. Nil fields are absent.
type Snapshot struct {
	Config       *AppConfig      `json:"config,omitempty"`
	Lists        []ContentList   `json:"lists"`
	Achievements *AchievementSet `json:"achievements,omitempty"`
	ExportedAt   time.Time       `json:"exportedAt"`
}
