package querycache

import (
	"fmt"
	"strings"

	"doit/internal/service"
)

// PageSize is the number of tasks per page in list views.
const PageSize = 10

// Status filters tasks by completion.
type Status string

const (
	StatusAll       Status = "all"
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// ParseStatus parses a status filter name. Empty means all.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StatusAll, nil
	case StatusAll, StatusCompleted, StatusPending:
		return st, nil
	default:
		return "", fmt.Errorf("invalid status: %s (want all, completed or pending)", s)
	}
}

// Entry is a task with its 1-based position in the full collection.
type Entry struct {
	Num  int
	Task service.Task
}

// Filter selects tasks for display.
type Filter struct {
	// Search is a case-insensitive substring of the task text.
	Search string
	Status Status
}

// Match reports whether t passes the filter.
func (f Filter) Match(t service.Task) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Text), strings.ToLower(f.Search)) {
		return false
	}
	switch f.Status {
	case StatusCompleted:
		return t.Completed
	case StatusPending:
		return !t.Completed
	}
	return true
}

// Apply returns the matching tasks with their positions in tasks.
func (f Filter) Apply(tasks []service.Task) []Entry {
	var out []Entry
	for i, t := range tasks {
		if f.Match(t) {
			out = append(out, Entry{Num: i + 1, Task: t})
		}
	}
	return out
}

// Page returns the 1-based page of entries and the total page count.
// A page past the end is empty.
func Page(entries []Entry, page, size int) ([]Entry, int) {
	if size < 1 {
		size = PageSize
	}
	total := (len(entries) + size - 1) / size
	start := (page - 1) * size
	if page < 1 || start >= len(entries) {
		return nil, total
	}
	end := min(start+size, len(entries))
	return entries[start:end], total
}
