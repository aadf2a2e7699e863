package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/verte-zerg/fillbox/internal/achievement"
	"github.com/verte-zerg/fillbox/internal/model"
)

const dateLayout = "2006-01-02 15:04"

// RenderLists prints one row per content list, marking the selected one.
func RenderLists(w io.Writer, lists []model.ContentList, selected string, width int) error {
	if len(lists) == 0 {
		_, err := fmt.Fprintln(w, "No content lists found.")
		return err
	}
	headers := []string{"", "ID", "Title", "Mode", "Items", "Updated"}
	rows := make([][]string, 0, len(lists))
	for _, l := range lists {
		mark := ""
		if l.ID == selected {
			mark = "*"
		}
		rows = append(rows, []string{
			mark,
			l.ID,
			l.Title,
			l.Mode.Label(),
			fmt.Sprintf("%d", len(l.Items)),
			formatTime(l.UpdatedAt),
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{4: true}), width)
}

// RenderList prints the items of one list.
func RenderList(w io.Writer, list model.ContentList, width int) error {
	if _, err := fmt.Fprintf(w, "%s (%s, %d items)\n", list.Title, list.Mode.Label(), len(list.Items)); err != nil {
		return err
	}
	if len(list.Items) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(list.Items))
	for _, item := range list.Items {
		rows = append(rows, []string{item.Key, item.Decoration})
	}
	return writeLines(w, formatTable([]string{"Key", "Decoration"}, rows, nil), width)
}

// RenderAchievements prints earned badges.
func RenderAchievements(w io.Writer, badges []model.Achievement) error {
	if len(badges) == 0 {
		_, err := fmt.Fprintln(w, "No achievements yet.")
		return err
	}
	rows := make([][]string, 0, len(badges))
	for _, b := range badges {
		rows = append(rows, []string{achievement.Title(b.ID), b.ID, formatTime(b.EarnedAt)})
	}
	return writeLines(w, formatTable([]string{"Badge", "ID", "Earned"}, rows, nil), 0)
}

// RenderRound prints progress of the active round.
func RenderRound(w io.Writer, round *model.RoundState) error {
	if round == nil {
		_, err := fmt.Fprintln(w, "No active round.")
		return err
	}
	correct, total := round.Progress()
	status := "in progress"
	if round.Completed {
		status = "completed"
	}
	if _, err := fmt.Fprintf(w, "Round %s (%s)\nList: %s\nProgress: %s %d/%d\n",
		shortID(round.RoundID), status, round.ListID, ProgressBar(correct, total), correct, total); err != nil {
		return err
	}
	return nil
}

// ProgressBar renders a fixed-width bar of correct boxes.
func ProgressBar(correct, total int) string {
	if total <= 0 {
		return "[]"
	}
	return "[" + strings.Repeat("#", correct) + strings.Repeat("-", total-correct) + "]"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(dateLayout)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
