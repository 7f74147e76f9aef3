// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"doit/internal/service"
)

const (
	// Separator is the separator line around detail and status blocks.
	Separator = "------------"
)

// FormatTask formats a task line for the list view.
// Format: "{N:>4}  [x] {TEXT}\n" (4-wide right-aligned number, two spaces, checkbox, text)
func FormatTask(w io.Writer, num int, task service.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, checkbox(task.Completed), normalizeTitle(task.Text))
}

// FormatPageFooter formats the pagination line printed under a list.
func FormatPageFooter(w io.Writer, page, total int) {
	fmt.Fprintf(w, "page %d/%d\n", page, total)
}

// FormatTaskDetail formats a single task.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintf(w, "#%d  %s\n", task.ID, normalizeTitle(task.Text))
	fmt.Fprintln(w, Separator)
	fmt.Fprintf(w, "status: %s\n", statusLabel(task.Completed))
	fmt.Fprintf(w, "owner:  %d\n", task.OwnerID)
}

// Status describes the sync state for the status command.
type Status struct {
	Online      bool
	Durable     bool
	LastSynced  time.Time // zero if never synced
	CachedTasks int
}

// FormatStatus formats the sync state.
func FormatStatus(w io.Writer, s Status) {
	conn := "offline"
	if s.Online {
		conn = "online"
	}
	cache := "disabled"
	if s.Durable {
		cache = "enabled"
	}
	synced := "never"
	if !s.LastSynced.IsZero() {
		synced = s.LastSynced.Local().Format(time.RFC3339)
	}
	fmt.Fprintf(w, "connectivity: %s\n", conn)
	fmt.Fprintf(w, "cache:        %s\n", cache)
	fmt.Fprintf(w, "last synced:  %s\n", synced)
	fmt.Fprintf(w, "tasks:        %d\n", s.CachedTasks)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func statusLabel(done bool) string {
	if done {
		return "completed"
	}
	return "pending"
}

// normalizeTitle normalizes a task text for display.
// - Empty or whitespace-only texts become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
