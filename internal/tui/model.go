// Package tui provides the Bubble Tea fill-in-the-box interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/fillbox/internal/achievement"
	"github.com/verte-zerg/fillbox/internal/game"
	"github.com/verte-zerg/fillbox/internal/logger"
	"github.com/verte-zerg/fillbox/internal/model"
	"github.com/verte-zerg/fillbox/internal/report"
	"github.com/verte-zerg/fillbox/internal/session"
)

type screen int

const (
	screenPlay screen = iota
	screenPicker
)

type messageKind int

const (
	msgInfo messageKind = iota
	msgSuccess
	msgError
	msgCelebrate
)

type box struct {
	id    string
	input textinput.Model
}

type eventMsg session.Event

// Model implements the Bubble Tea game UI.
type Model struct {
	sess *session.Session
	log  *logger.Logger
	bell func()

	cfg       model.AppConfig
	round     *model.RoundState
	listTitle string
	badges    int

	boxes []box
	focus int

	screen    screen
	picker    table.Model
	pickerIDs []string

	message     string
	messageKind messageKind

	width  int
	height int
	styles styles
}

// NewModel constructs the game UI over an initialized session.
func NewModel(sess *session.Session, log *logger.Logger) *Model {
	if log == nil {
		log = logger.NewNop()
	}
	m := &Model{
		sess: sess,
		log:  log,
		bell: ringTerminal,
	}
	m.refresh()
	if sess.Degraded() {
		m.setMessage("Storage unavailable: progress will not be saved.", msgError)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.sess.Events()), textinput.Blink}
	if m.round == nil {
		cmds = append(cmds, func() tea.Msg { return startMsg{} })
	}
	return tea.Batch(cmds...)
}

type startMsg struct{}

func waitForEvent(ch <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePicker()
		return m, nil
	case startMsg:
		return m, m.newRound()
	case eventMsg:
		m.handleEvent(session.Event(msg))
		return m, waitForEvent(m.sess.Events())
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.screen == screenPicker {
			return m.updatePicker(msg)
		}
		return m.updatePlay(msg)
	}
	return m, nil
}

func (m *Model) updatePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, tea.Quit
	case "ctrl+n":
		return m, m.newRound()
	case "ctrl+l":
		m.openPicker()
		return m, nil
	case "ctrl+r":
		if err := m.sess.ClearRound(context.Background()); err != nil {
			m.setError(err)
			return m, nil
		}
		m.refresh()
		m.setMessage("Round abandoned. Press ctrl+n for a new one.", msgInfo)
		return m, nil
	case "ctrl+t":
		return m, m.cycleMode()
	case "enter":
		return m, m.validate()
	case "tab", "right":
		return m, m.moveFocus(1)
	case "shift+tab", "left":
		return m, m.moveFocus(-1)
	}
	return m, m.typeInto(msg)
}

func (m *Model) typeInto(msg tea.KeyMsg) tea.Cmd {
	b := m.focusedBox()
	if b == nil {
		return nil
	}
	var cmd tea.Cmd
	b.input, cmd = b.input.Update(msg)
	round, err := m.sess.UpdateEntry(context.Background(), b.id, b.input.Value())
	if err != nil {
		m.setError(err)
		m.syncInputs()
		return cmd
	}
	m.apply(round)
	if m.round != nil && m.round.Mode == model.ModeLetter && m.round.BoxStates[b.id].Entered != "" {
		return tea.Batch(cmd, m.validate())
	}
	return cmd
}

func (m *Model) validate() tea.Cmd {
	b := m.focusedBox()
	if b == nil {
		return nil
	}
	id := b.id
	ok, round, err := m.sess.ValidateBox(context.Background(), id)
	if err != nil {
		m.setError(err)
	}
	m.apply(round)
	if ok {
		if m.round != nil && m.round.Completed {
			m.setMessage("Round complete! Well done.", msgCelebrate)
			return nil
		}
		m.setMessage("Correct!", msgSuccess)
		return m.moveFocus(1)
	}
	if err != nil || m.round == nil {
		return nil
	}
	state, exists := m.round.BoxStates[id]
	if !exists || state.Locked {
		return nil
	}
	m.setMessage(feedbackFor(state), msgError)
	return m.ring()
}

func feedbackFor(state model.BoxState) string {
	if state.Entered == "" {
		return "Type an answer first."
	}
	if game.Closeness(state.Entered, state.Target) == game.Near {
		return "So close! Check the spelling."
	}
	return "Not quite, try again."
}

func (m *Model) newRound() tea.Cmd {
	round, err := m.sess.NewRound(context.Background())
	switch {
	case errors.Is(err, game.ErrNoListSelected):
		m.openPicker()
		m.setMessage("Pick a list to play.", msgInfo)
		return nil
	case errors.Is(err, game.ErrEmptyList):
		m.openPicker()
		m.setMessage("That list has no items yet. Add some with `fillbox lists import`.", msgError)
		return nil
	case err != nil:
		m.setError(err)
		return nil
	}
	m.apply(round)
	m.setMessage("", msgInfo)
	return m.focusFirstOpen()
}

func (m *Model) cycleMode() tea.Cmd {
	next := model.Modes[0]
	for i, mode := range model.Modes {
		if mode == m.cfg.Mode {
			next = model.Modes[(i+1)%len(model.Modes)]
		}
	}
	if err := m.sess.SetMode(context.Background(), next); err != nil {
		m.setError(err)
		return nil
	}
	m.refresh()
	if m.round == nil {
		return m.newRound()
	}
	return nil
}

func (m *Model) handleEvent(ev session.Event) {
	switch ev.Kind {
	case session.RoundCompleted:
		m.setMessage("Round complete! Well done.", msgCelebrate)
	case session.AchievementEarned:
		if ev.AchievementID != "" {
			m.setMessage("Badge earned: "+achievement.Title(ev.AchievementID), msgCelebrate)
		}
	case session.RoundCleared:
		if m.sess.Round() == nil && m.messageKind == msgCelebrate {
			m.setMessage("Press ctrl+n for a new round.", msgInfo)
		}
	case session.Error:
		m.setError(ev.Err)
	}
	m.refresh()
	if m.screen == screenPicker && (ev.Kind == session.ListsChanged || ev.Kind == session.SelectionChanged) {
		m.openPicker()
	}
}

// refresh re-reads session state.
func (m *Model) refresh() {
	m.cfg = m.sess.Config()
	m.styles = newStyles(m.cfg.Palette)
	m.listTitle = ""
	if id := m.sess.Selected(); id != "" {
		if l, err := m.sess.List(context.Background(), id); err == nil {
			m.listTitle = l.Title
		}
	}
	if badges, err := m.sess.Achievements(context.Background()); err == nil {
		m.badges = len(badges)
	}
	m.apply(m.sess.Round())
}

// apply adopts round and keeps the inputs aligned with it.
func (m *Model) apply(round *model.RoundState) {
	if round == nil {
		m.round = nil
		m.boxes = nil
		m.focus = 0
		return
	}
	rebuild := m.round == nil || m.round.RoundID != round.RoundID || len(m.boxes) != len(round.BoxOrder)
	m.round = round
	if rebuild {
		m.boxes = make([]box, len(round.BoxOrder))
		for i, id := range round.BoxOrder {
			m.boxes[i] = box{id: id, input: newBoxInput(round.BoxStates[id].Target)}
		}
		m.focus = 0
	}
	m.syncInputs()
}

func newBoxInput(target string) textinput.Model {
	input := textinput.New()
	input.Prompt = ""
	input.Width = inputWidth(target)
	input.CharLimit = len(target) + 3
	return input
}

func (m *Model) syncInputs() {
	if m.round == nil {
		return
	}
	for i := range m.boxes {
		state := m.round.BoxStates[m.boxes[i].id]
		if m.boxes[i].input.Value() != state.Entered {
			m.boxes[i].input.SetValue(state.Entered)
		}
		if state.Locked || m.round.Completed {
			m.boxes[i].input.Blur()
		}
	}
}

func (m *Model) focusedBox() *box {
	if m.round == nil || m.round.Completed || m.focus < 0 || m.focus >= len(m.boxes) {
		return nil
	}
	b := &m.boxes[m.focus]
	if m.round.BoxStates[b.id].Locked {
		return nil
	}
	return b
}

func (m *Model) focusFirstOpen() tea.Cmd {
	m.focus = -1
	return m.moveFocus(1)
}

// moveFocus steps to the next unlocked box in direction dir.
func (m *Model) moveFocus(dir int) tea.Cmd {
	if m.round == nil || len(m.boxes) == 0 {
		return nil
	}
	n := len(m.boxes)
	for step := 1; step <= n; step++ {
		i := ((m.focus+dir*step)%n + n) % n
		if !m.round.BoxStates[m.boxes[i].id].Locked {
			return m.setFocus(i)
		}
	}
	return nil
}

func (m *Model) setFocus(i int) tea.Cmd {
	for j := range m.boxes {
		m.boxes[j].input.Blur()
	}
	m.focus = i
	return m.boxes[i].input.Focus()
}

func (m *Model) ring() tea.Cmd {
	if !m.cfg.SoundsEnabled || m.bell == nil {
		return nil
	}
	bell := m.bell
	return func() tea.Msg {
		bell()
		return nil
	}
}

func ringTerminal() {
	if _, err := fmt.Fprint(os.Stderr, "\a"); err != nil {
		// Best-effort feedback.
		_ = err
	}
}

func (m *Model) setMessage(text string, kind messageKind) {
	m.message = text
	m.messageKind = kind
}

func (m *Model) setError(err error) {
	m.log.Warn("operation failed", "error", err)
	m.setMessage("Error: "+err.Error(), msgError)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.screen == screenPicker {
		return m.viewPicker()
	}
	parts := []string{m.styles.title.Render(m.headerText()), ""}
	if m.round == nil {
		parts = append(parts, m.styles.muted.Render("No active round. Press ctrl+n to start."))
	} else {
		parts = append(parts, joinRows(m.renderBoxes(), m.contentWidth()))
	}
	if msg := m.renderMessage(); msg != "" {
		parts = append(parts, "", msg)
	}
	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	return m.frame(content, m.renderFooter())
}

func (m *Model) frame(content, footer string) string {
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	w := int(float64(m.width) * 0.9)
	if w < 1 {
		w = 1
	}
	return w
}

func (m *Model) headerText() string {
	title := m.listTitle
	if title == "" {
		title = "no list selected"
	}
	return fmt.Sprintf("fillbox · %s · %s mode", title, m.cfg.Mode.Label())
}

func (m *Model) renderBoxes() []string {
	cells := make([]string, 0, len(m.boxes))
	for i, b := range m.boxes {
		state := m.round.BoxStates[b.id]
		decoration := state.Decoration
		if decoration == "" {
			decoration = " "
		}
		style := m.styles.box
		var field string
		switch {
		case state.Locked:
			style = m.styles.locked
			field = m.styles.entered.Render(state.Entered)
		case i == m.focus && !m.round.Completed:
			style = m.styles.focused
			field = b.input.View()
		default:
			field = b.input.View()
		}
		cells = append(cells, style.Width(inputWidth(state.Target)+2).Render(decoration+"\n"+field))
	}
	return cells
}

func (m *Model) renderMessage() string {
	if m.message == "" {
		return ""
	}
	switch m.messageKind {
	case msgSuccess:
		return m.styles.success.Render(m.message)
	case msgError:
		return m.styles.err.Render(m.message)
	case msgCelebrate:
		return m.styles.celebrate.Render(m.message)
	default:
		return m.styles.muted.Render(m.message)
	}
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.round != nil {
		correct, total := m.round.Progress()
		segments = append(segments, fmt.Sprintf("Progress %s %d/%d", report.ProgressBar(correct, total), correct, total))
	}
	segments = append(segments, fmt.Sprintf("Badges %d", m.badges))
	segments = append(segments, "enter check · tab next · ctrl+n new · ctrl+l lists · ctrl+t mode · esc quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}
