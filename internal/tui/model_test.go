package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/fillbox/internal/catalog"
	"github.com/verte-zerg/fillbox/internal/generator"
	"github.com/verte-zerg/fillbox/internal/kv"
	"github.com/verte-zerg/fillbox/internal/model"
	"github.com/verte-zerg/fillbox/internal/session"
	"github.com/verte-zerg/fillbox/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	seeds, err := catalog.BuiltIn()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	sess := session.New(session.Options{
		Store:      store.New(kv.NewMemory()),
		Generator:  generator.NewWithSeed(11),
		ClearDelay: time.Hour,
		Seeds:      seeds,
	})
	if err := sess.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(sess.Close)
	m := NewModel(sess, nil)
	m.bell = func() {}
	m.Update(startMsg{})
	if m.round == nil {
		t.Fatalf("expected a round after start")
	}
	return m
}

func typeText(m *Model, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func pressEnter(m *Model) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func focusedTarget(t *testing.T, m *Model) (string, string) {
	t.Helper()
	b := m.focusedBox()
	if b == nil {
		t.Fatalf("expected a focused box")
	}
	return b.id, m.round.BoxStates[b.id].Target
}

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		round: &model.RoundState{
			BoxOrder:  []string{"a", "b", "c", "d"},
			BoxStates: map[string]model.BoxState{"a": {Correct: true}, "b": {Correct: true}, "c": {}, "d": {}},
		},
		badges: 1,
	}
	out := m.renderFooter()
	if !containsAll(out, []string{"Progress [##--] 2/4", "Badges 1", "ctrl+n new"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestTypingNormalizesAndLocksBox(t *testing.T) {
	m := newTestModel(t)
	id, target := focusedTarget(t, m)

	typeText(m, strings.ToLower(target))
	if got := m.round.BoxStates[id].Entered; got != target {
		t.Fatalf("expected normalized entry %q, got %q", target, got)
	}
	pressEnter(m)
	if !m.round.BoxStates[id].Locked {
		t.Fatalf("expected box locked after correct answer")
	}
	if m.message != "Correct!" {
		t.Fatalf("unexpected message: %q", m.message)
	}
	if b := m.focusedBox(); b == nil || b.id == id {
		t.Fatalf("expected focus to move to the next open box")
	}
}

func TestNearMissRingsBell(t *testing.T) {
	m := newTestModel(t)
	rang := 0
	m.bell = func() { rang++ }
	id, target := focusedTarget(t, m)

	typeText(m, strings.ToLower(target[:len(target)-1])+"q")
	if m.round.BoxStates[id].Entered == target {
		t.Skip("substitution produced the target")
	}
	cmd := pressEnter(m)
	if m.round.BoxStates[id].Locked {
		t.Fatalf("wrong answer locked the box")
	}
	if !strings.HasPrefix(m.message, "So close") {
		t.Fatalf("expected near-miss feedback, got %q", m.message)
	}
	if cmd == nil {
		t.Fatalf("expected a bell command")
	}
	cmd()
	if rang != 1 {
		t.Fatalf("expected one bell, got %d", rang)
	}
}

func TestCompletingAllBoxesCelebrates(t *testing.T) {
	m := newTestModel(t)
	for range m.round.BoxOrder {
		_, target := focusedTarget(t, m)
		typeText(m, strings.ToLower(target))
		pressEnter(m)
	}
	if !m.round.Completed {
		t.Fatalf("expected completed round")
	}
	if m.messageKind != msgCelebrate {
		t.Fatalf("expected celebration, got %q", m.message)
	}
	if m.focusedBox() != nil {
		t.Fatalf("completed round should have no editable box")
	}
}

func TestPickerSelectsList(t *testing.T) {
	m := newTestModel(t)
	m.openPicker()
	if m.screen != screenPicker {
		t.Fatalf("expected picker screen")
	}
	target := -1
	for i, id := range m.pickerIDs {
		if id == catalog.DefaultNumberList {
			target = i
		}
	}
	if target < 0 {
		t.Fatalf("number list missing from picker")
	}
	m.picker.SetCursor(target)
	pressEnter(m)

	if m.screen != screenPlay || m.sess.Selected() != catalog.DefaultNumberList {
		t.Fatalf("selection not applied: screen=%d selected=%q", m.screen, m.sess.Selected())
	}
	if m.round == nil || m.round.Mode != model.ModeNumber {
		t.Fatalf("expected a number round, got %+v", m.round)
	}
}

func TestAbandonRound(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	if m.round != nil || len(m.boxes) != 0 {
		t.Fatalf("expected round abandoned")
	}
	if !strings.Contains(m.View(), "No active round") {
		t.Fatalf("expected empty-round view")
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
