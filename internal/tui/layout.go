package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

const (
	boxGap      = 1
	minBoxWidth = 3
)

// wrapCells groups cell widths into rows that fit maxWidth. A cell wider
// than maxWidth gets a row of its own.
func wrapCells(widths []int, maxWidth int) [][]int {
	var rows [][]int
	var row []int
	used := 0
	for i, w := range widths {
		need := w
		if len(row) > 0 {
			need += boxGap
		}
		if len(row) > 0 && maxWidth > 0 && used+need > maxWidth {
			rows = append(rows, row)
			row = nil
			used = 0
			need = w
		}
		row = append(row, i)
		used += need
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

// joinRows lays cells out in wrapped rows, centered.
func joinRows(cells []string, maxWidth int) string {
	if len(cells) == 0 {
		return ""
	}
	widths := make([]int, len(cells))
	for i, c := range cells {
		widths[i] = lipgloss.Width(c)
	}
	gap := strings.Repeat(" ", boxGap)
	lines := make([]string, 0, len(cells))
	for _, idx := range wrapCells(widths, maxWidth) {
		parts := make([]string, 0, len(idx)*2)
		for n, i := range idx {
			if n > 0 {
				parts = append(parts, gap)
			}
			parts = append(parts, cells[i])
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// inputWidth is the cell width an input needs for target plus the cursor.
func inputWidth(target string) int {
	w := runewidth.StringWidth(target)
	if w < minBoxWidth {
		w = minBoxWidth
	}
	return w + 1
}
