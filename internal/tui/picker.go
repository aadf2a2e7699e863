package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/fillbox/internal/model"
)

const pickerMaxHeight = 12

func (m *Model) openPicker() {
	all, err := m.sess.Lists(context.Background())
	if err != nil {
		m.setError(err)
		return
	}
	cols, rows, ids := pickerData(all, m.sess.Selected())
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(pickerHeight(len(rows), m.height)),
	)
	t.SetStyles(pickerStyles(m.cfg.Palette))
	for i, id := range ids {
		if id == m.sess.Selected() {
			t.SetCursor(i)
		}
	}
	m.picker = t
	m.pickerIDs = ids
	m.screen = screenPicker
}

func pickerData(all []model.ContentList, selected string) ([]table.Column, []table.Row, []string) {
	titleWidth := len("Title")
	for _, l := range all {
		if w := lipgloss.Width(l.Title); w > titleWidth {
			titleWidth = w
		}
	}
	cols := []table.Column{
		{Title: " ", Width: 1},
		{Title: "Title", Width: titleWidth},
		{Title: "Mode", Width: 6},
		{Title: "Items", Width: 5},
	}
	rows := make([]table.Row, 0, len(all))
	ids := make([]string, 0, len(all))
	for _, l := range all {
		mark := ""
		if l.ID == selected {
			mark = "*"
		}
		rows = append(rows, table.Row{mark, l.Title, l.Mode.Label(), fmt.Sprintf("%d", len(l.Items))})
		ids = append(ids, l.ID)
	}
	return cols, rows, ids
}

func pickerHeight(rows, screenHeight int) int {
	h := rows + 1
	if h > pickerMaxHeight {
		h = pickerMaxHeight
	}
	if screenHeight > 0 && h > screenHeight-6 {
		h = screenHeight - 6
	}
	if h < 2 {
		h = 2
	}
	return h
}

func (m *Model) resizePicker() {
	if m.screen == screenPicker {
		m.picker.SetHeight(pickerHeight(len(m.pickerIDs), m.height))
	}
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+l":
		m.screen = screenPlay
		return m, nil
	case "enter":
		i := m.picker.Cursor()
		if i < 0 || i >= len(m.pickerIDs) {
			return m, nil
		}
		id := m.pickerIDs[i]
		if err := m.sess.SelectList(context.Background(), id); err != nil {
			m.setError(err)
			return m, nil
		}
		m.screen = screenPlay
		m.refresh()
		if m.round == nil {
			return m, m.newRound()
		}
		return m, m.focusFirstOpen()
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) viewPicker() string {
	parts := []string{m.styles.title.Render("Choose a list"), "", m.picker.View()}
	if msg := m.renderMessage(); msg != "" {
		parts = append(parts, "", msg)
	}
	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	footer := footerStyle.Render("↑/↓ move · enter play · esc back")
	return m.frame(content, footer)
}
