package game

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/verte-zerg/fillbox/internal/model"
)

// Normalize applies the input filter of mode to raw.
//
//	word:   uppercase, accents folded, letters A-Z only
//	number: digits 0-9 only
//	letter: word rules, first letter only
func Normalize(mode model.Mode, raw string) string {
	switch mode {
	case model.ModeNumber:
		return keep(raw, isDigit)
	case model.ModeLetter:
		letters := upperLetters(raw)
		if len(letters) > 1 {
			return letters[:1]
		}
		return letters
	default:
		return upperLetters(raw)
	}
}

func upperLetters(raw string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), raw)
	if err != nil {
		folded = raw
	}
	return keep(strings.ToUpper(folded), isUpperASCII)
}

func keep(s string, pred func(rune) bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if pred(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isUpperASCII(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// Grade classifies an entry against its target for feedback only; it never
// affects validation.
type Grade int

const (
	Far Grade = iota
	Near
	Exact
)

// Closeness grades entered against target by edit distance.
func Closeness(entered, target string) Grade {
	if entered == target {
		return Exact
	}
	if entered == "" || target == "" {
		return Far
	}
	limit := 1
	if len(target) >= 6 {
		limit = 2
	}
	if levenshtein.ComputeDistance(entered, target) <= limit {
		return Near
	}
	return Far
}
