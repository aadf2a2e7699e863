package wordlist

import "github.com/verte-zerg/fillbox/internal/model"

// FilterFunc returns true when a key should be kept.
type FilterFunc func(string) bool

// FilterForMode returns the key filter matching the input rules of mode, so
// every imported key can actually be typed.
func FilterForMode(mode model.Mode) FilterFunc {
	switch mode {
	case model.ModeNumber:
		return filterDigits
	case model.ModeLetter:
		return func(key string) bool { return len(key) == 1 && filterLetters(key) }
	default:
		return filterLetters
	}
}

func filterLetters(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if ch < 'A' || ch > 'Z' {
			return false
		}
	}
	return true
}

func filterDigits(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}
