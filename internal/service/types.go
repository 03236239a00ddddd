package service

import (
	"fmt"
	"strings"
	"time"
)

// PageSize is the backend's fixed page size.
const PageSize = 10

// Task represents a single to-do item as returned by the backend.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	Owner       int64     `json:"owner"`
}

// TaskPage is one page of the task collection.
type TaskPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Task  `json:"results"`
}

// Tokens is the credential pair issued by the backend.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Registration holds the fields sent to the registration endpoint.
type Registration struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email,omitempty"`
}

// NewTask is the body of a create request.
type NewTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"is_completed"`
}

// TaskPatch is a partial update; nil fields are left out of the request.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

// ListQuery selects one page of the collection.
type ListQuery struct {
	Page   int
	Filter Filter
}

// Filter selects tasks by completion state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

// Filters lists the filters in display order.
var Filters = []Filter{FilterAll, FilterPending, FilterCompleted}

// ParseFilter parses a filter name (case-insensitive, trimmed).
// "done" is accepted as an alias of "completed"; empty means all.
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return FilterAll, nil
	case "completed", "done":
		return FilterCompleted, nil
	case "pending":
		return FilterPending, nil
	default:
		return "", fmt.Errorf("invalid filter: %s", s)
	}
}

// CompletedParam returns the is_completed query value for the filter,
// and false when the filter adds no parameter.
func (f Filter) CompletedParam() (string, bool) {
	switch f {
	case FilterCompleted:
		return "true", true
	case FilterPending:
		return "false", true
	default:
		return "", false
	}
}

// String returns the filter name.
func (f Filter) String() string {
	if f == "" {
		return string(FilterAll)
	}
	return string(f)
}

// TotalPages returns the number of pages needed for count tasks (at least 1).
func TotalPages(count int) int {
	if count <= 0 {
		return 1
	}
	return (count + PageSize - 1) / PageSize
}
