package controller

import (
	"todo/internal/service"
)

// View is the top-level screen the controller is in.
type View int

const (
	ViewUnauthenticated View = iota
	ViewAuthenticated
)

func (v View) String() string {
	if v == ViewAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Mode selects the form shown while unauthenticated.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

func (m Mode) String() string {
	if m == ModeRegister {
		return "register"
	}
	return "login"
}

// StatusKind distinguishes informational and error banners.
type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusError
)

// Status is the dismissable banner shown above the task list.
type Status struct {
	Kind StatusKind
	Text string
}

// IsError reports whether the banner reports a failure.
func (s Status) IsError() bool {
	return s.Kind == StatusError
}

// EditForm is an open edit of one task.
type EditForm struct {
	TaskID      int64
	Title       string
	Description string
}

// EditResult is the outcome of closing an edit form.
type EditResult struct {
	Saved bool
	Task  service.Task
}

// DeleteResult is the outcome of resolving a delete confirmation.
type DeleteResult struct {
	Deleted bool
	Task    service.Task

	// Reloaded is set when the delete emptied the page and another page was loaded.
	Reloaded bool
}

// State is a snapshot of everything the views render.
type State struct {
	View   View
	Mode   Mode
	Filter service.Filter

	Page       int
	PageSize   int
	TotalCount int
	TotalPages int
	Tasks      []service.Task

	FormLoading bool
	ListLoading bool
	Saving      bool
	FormError   string
	Status      *Status

	Editing       *EditForm
	PendingDelete *service.Task
}

// Authenticated reports whether the task list view is active.
func (s State) Authenticated() bool {
	return s.View == ViewAuthenticated
}

// HasPrev reports whether a previous page exists.
func (s State) HasPrev() bool {
	return s.Page > 1
}

// HasNext reports whether a following page exists.
func (s State) HasNext() bool {
	return s.Page < s.TotalPages
}
