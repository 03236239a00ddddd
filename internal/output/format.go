// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"todo/internal/controller"
	"todo/internal/service"
)

const (
	// ListSeparator is the separator line around filter headers.
	ListSeparator = "------------"

	// CheckDone and CheckOpen mark the completion state of a task line.
	CheckDone = "[x]"
	CheckOpen = "[ ]"
)

// TaskNumber returns the 1-based display number of the i-th task (0-based) on a page.
func TaskNumber(page, i int) int {
	if page < 1 {
		page = 1
	}
	return (page-1)*service.PageSize + i + 1
}

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}\n", followed by "          {DESCRIPTION}\n" when set.
func FormatTask(w io.Writer, num int, task service.Task) {
	check := CheckOpen
	if task.IsCompleted {
		check = CheckDone
	}
	fmt.Fprintf(w, "%4d  %s %s\n", num, check, normalizeTitle(task.Title))
	if desc := normalizeLine(task.Description); desc != "" {
		fmt.Fprintf(w, "%10s%s\n", "", desc)
	}
}

// FormatFilterHeader formats the section header shown for a non-default filter.
func FormatFilterHeader(w io.Writer, f service.Filter) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, FilterLabel(f))
	fmt.Fprintln(w, ListSeparator)
}

// FilterLabel returns the display name of a filter.
func FilterLabel(f service.Filter) string {
	switch f {
	case service.FilterCompleted:
		return "Completed"
	case service.FilterPending:
		return "Pending"
	default:
		return "All"
	}
}

// FormatPage formats the task page of a controller state: an optional filter
// header, the numbered tasks, and a footer when there is more than one page.
// An empty page prints "no tasks found" unless quiet.
func FormatPage(w io.Writer, st controller.State, quiet bool) {
	if st.Filter != service.FilterAll && st.Filter != "" {
		FormatFilterHeader(w, st.Filter)
	}

	if len(st.Tasks) == 0 {
		if !quiet {
			fmt.Fprintln(w, "no tasks found")
		}
		return
	}

	for i, task := range st.Tasks {
		FormatTask(w, TaskNumber(st.Page, i), task)
	}

	if st.TotalPages > 1 {
		FormatPageFooter(w, st.Page, st.TotalPages, st.TotalCount)
	}
}

// FormatPageFooter formats the pagination line.
func FormatPageFooter(w io.Writer, page, pages, count int) {
	noun := "tasks"
	if count == 1 {
		noun = "task"
	}
	fmt.Fprintf(w, "page %d of %d (%d %s)\n", page, pages, count, noun)
}

// FormatStatus formats a status banner as "info: ..." or "error: ...".
func FormatStatus(w io.Writer, s controller.Status) {
	prefix := "info"
	if s.IsError() {
		prefix = "error"
	}
	fmt.Fprintf(w, "%s: %s\n", prefix, normalizeLine(s.Text))
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = normalizeLine(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

// normalizeLine replaces newlines with spaces and trims surrounding space.
func normalizeLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
