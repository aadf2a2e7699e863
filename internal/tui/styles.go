package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/fillbox/internal/model"
)

var (
	mutedColor   = lipgloss.Color("#8C8C8C")
	errorColor   = lipgloss.Color("#FF4D4F")
	successColor = lipgloss.Color("#3BB273")
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// styles derives from the configured palette.
type styles struct {
	title     lipgloss.Style
	box       lipgloss.Style
	focused   lipgloss.Style
	locked    lipgloss.Style
	entered   lipgloss.Style
	success   lipgloss.Style
	err       lipgloss.Style
	muted     lipgloss.Style
	celebrate lipgloss.Style
}

func newStyles(p model.Palette) styles {
	def := model.DefaultConfig().Palette
	primary := lipgloss.Color(orDefault(p.Primary, def.Primary))
	accent := lipgloss.Color(orDefault(p.Accent, def.Accent))
	border := lipgloss.Color(orDefault(p.BoxBorder, def.BoxBorder))

	box := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder(), true).
		BorderForeground(border).
		Align(lipgloss.Center)
	return styles{
		title:     lipgloss.NewStyle().Foreground(primary).Bold(true),
		box:       box,
		focused:   box.BorderForeground(accent),
		locked:    box.BorderForeground(primary),
		entered:   lipgloss.NewStyle().Foreground(primary).Bold(true),
		success:   lipgloss.NewStyle().Foreground(successColor).Bold(true),
		err:       lipgloss.NewStyle().Foreground(errorColor),
		muted:     lipgloss.NewStyle().Foreground(mutedColor),
		celebrate: lipgloss.NewStyle().Foreground(accent).Bold(true),
	}
}

func pickerStyles(p model.Palette) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	s.Cell = s.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	s.Selected = s.Cell.
		Foreground(lipgloss.Color(orDefault(p.Accent, model.DefaultConfig().Palette.Accent))).
		Bold(true)
	return s
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
