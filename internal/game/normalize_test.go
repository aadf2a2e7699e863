package game

import (
	"testing"

	"github.com/verte-zerg/fillbox/internal/model"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		mode model.Mode
		in   string
		want string
	}{
		{model.ModeWord, "cat", "CAT"},
		{model.ModeWord, "c4t!", "CT"},
		{model.ModeWord, "éléphant", "ELEPHANT"},
		{model.ModeWord, "  dog  ", "DOG"},
		{model.ModeNumber, "abc123", "123"},
		{model.ModeNumber, "1a2B3", "123"},
		{model.ModeNumber, "x", ""},
		{model.ModeLetter, "b", "B"},
		{model.ModeLetter, "9qz", "Q"},
		{model.ModeLetter, "", ""},
	}
	for _, tc := range cases {
		if got := Normalize(tc.mode, tc.in); got != tc.want {
			t.Fatalf("Normalize(%s, %q) = %q, want %q", tc.mode, tc.in, got, tc.want)
		}
	}
}

func TestNormalizeUnknownModeUsesWordRules(t *testing.T) {
	if got := Normalize("", "fish1"); got != "FISH" {
		t.Fatalf("expected word rules, got %q", got)
	}
}

func TestCloseness(t *testing.T) {
	if Closeness("CAT", "CAT") != Exact {
		t.Fatalf("expected exact")
	}
	if Closeness("CAR", "CAT") != Near {
		t.Fatalf("expected near for one edit")
	}
	if Closeness("ELEPHNT", "ELEPHANT") != Near {
		t.Fatalf("expected near for long word")
	}
	if Closeness("DOG", "CAT") != Far {
		t.Fatalf("expected far")
	}
	if Closeness("", "CAT") != Far {
		t.Fatalf("empty entry is never near")
	}
}
