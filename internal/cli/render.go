package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"todo-sync/internal/api"
	"todo-sync/internal/domain"
)

const (
	overdueBackground   = "#ffdddd"
	completedBackground = "#ddffdd"
	rowForeground       = "#1a1a1a"

	boxChecked   = "[x]"
	boxUnchecked = "[ ]"
)

// Styles holds the Lip Gloss styles for CLI output. Without color every
// style renders plain text.
type Styles struct {
	Overdue   lipgloss.Style
	Completed lipgloss.Style
	Normal    lipgloss.Style
	Title     lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
}

// NewStyles creates styles for out. Color profile detection follows out, so
// a pipe or buffer gets plain text even when color is on.
func NewStyles(out io.Writer, color bool) *Styles {
	r := lipgloss.NewRenderer(out)
	if !color {
		plain := r.NewStyle()
		return &Styles{Overdue: plain, Completed: plain, Normal: plain, Title: plain, Muted: plain, Success: plain}
	}
	return &Styles{
		Overdue:   r.NewStyle().Background(lipgloss.Color(overdueBackground)).Foreground(lipgloss.Color(rowForeground)),
		Completed: r.NewStyle().Background(lipgloss.Color(completedBackground)).Foreground(lipgloss.Color(rowForeground)),
		Normal:    r.NewStyle(),
		Title:     r.NewStyle().Bold(true),
		Muted:     r.NewStyle().Faint(true),
		Success:   r.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

// ForBucket returns the row style of a presentation bucket.
func (s *Styles) ForBucket(b domain.Bucket) lipgloss.Style {
	switch b {
	case domain.BucketOverdue:
		return s.Overdue
	case domain.BucketCompleted:
		return s.Completed
	default:
		return s.Normal
	}
}

// formatRow renders one list row behind label and, when present, the
// description on the line below.
func formatRow(s *Styles, label string, p api.PresentedTask, dateFormat string) string {
	box := boxUnchecked
	if p.Task.Completed {
		box = boxChecked
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%4s %s %s", label, box, p.Task.Title)
	if p.Task.DueDate != nil {
		fmt.Fprintf(&b, "  due %s", p.Task.DueDate.Format(dateFormat))
	}
	if p.Overdue && !p.Task.Completed {
		b.WriteString("  (overdue)")
	}

	row := s.ForBucket(p.Bucket).Render(b.String()) + "  " + s.Muted.Render(p.Task.ID)
	if p.Task.Description != nil {
		row += "\n     " + s.Muted.Render(*p.Task.Description)
	}
	return row
}

// renderTasks writes tasks as a list. Numbered rows can be referred to by
// number in later commands; other lists are bulleted.
func renderTasks(w io.Writer, s *Styles, tasks []*domain.Task, now time.Time, dateFormat string, numbered bool) {
	for i, p := range api.PresentAll(tasks, now) {
		label := "-"
		if numbered {
			label = fmt.Sprintf("%d.", i+1)
		}
		fmt.Fprintln(w, formatRow(s, label, p, dateFormat))
	}
}
