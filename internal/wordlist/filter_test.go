package wordlist

import (
	"testing"

	"github.com/verte-zerg/fillbox/internal/model"
)

func TestFilterWords(t *testing.T) {
	filter := FilterForMode(model.ModeWord)
	if !filter("HELLO") {
		t.Fatalf("expected HELLO to pass word filter")
	}
	for _, key := range []string{"RÉSUMÉ", "DON'T", "CO-OP", "R2D2", ""} {
		if filter(key) {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}

func TestFilterNumbers(t *testing.T) {
	filter := FilterForMode(model.ModeNumber)
	if !filter("42") {
		t.Fatalf("expected 42 to pass number filter")
	}
	if filter("4.2") || filter("-1") {
		t.Fatalf("expected punctuation to be rejected")
	}
}

func TestFilterLetters(t *testing.T) {
	filter := FilterForMode(model.ModeLetter)
	if !filter("Q") || filter("QU") || filter("1") {
		t.Fatalf("letter filter accepts exactly one letter")
	}
}
