package session

import (
	"fmt"

	"github.com/verte-zerg/fillbox/internal/game"
)

// EventKind identifies a session notification.
type EventKind int

const (
	RoundStarted EventKind = iota + 1
	RoundUpdated
	RoundCompleted
	RoundCleared
	ConfigChanged
	SelectionChanged
	ListsChanged
	AchievementEarned
	Error
)

func (k EventKind) String() string {
	switch k {
	case RoundStarted:
		return "started"
	case RoundUpdated:
		return "updated"
	case RoundCompleted:
		return "completed"
	case RoundCleared:
		return "cleared"
	case ConfigChanged:
		return "config"
	case SelectionChanged:
		return "selection"
	case ListsChanged:
		return "lists"
	case AchievementEarned:
		return "achievement"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event tells observers that state changed; they re-read what they need.
type Event struct {
	Kind          EventKind
	RoundID       string
	AchievementID string
	Err           error
}

const eventBuffer = 32

func fromChange(c game.Change) Event {
	ev := Event{RoundID: c.RoundID, AchievementID: c.AchievementID, Err: c.Err}
	switch c.Kind {
	case game.RoundStarted:
		ev.Kind = RoundStarted
	case game.RoundUpdated:
		ev.Kind = RoundUpdated
	case game.RoundCompleted:
		ev.Kind = RoundCompleted
	case game.RoundCleared:
		ev.Kind = RoundCleared
	case game.AchievementEarned:
		ev.Kind = AchievementEarned
	default:
		ev.Kind = Error
	}
	return ev
}

// publish never blocks; slow observers miss events and re-read state.
func (s *Session) publish(ev Event) {
	s.evMu.Lock()
	defer s.evMu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.log.Debug("event dropped", "kind", ev.Kind.String())
	}
}

// Events returns the notification channel. It is closed by Close.
func (s *Session) Events() <-chan Event {
	return s.events
}
