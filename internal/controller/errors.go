package controller

import "errors"

var (
	// ErrNotAuthenticated is returned by task operations while no access credential is held.
	ErrNotAuthenticated = errors.New("not logged in")

	// ErrEmptyTitle is returned when a title is empty after trimming. No request is sent.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrBusy is returned while a conflicting request is still outstanding.
	ErrBusy = errors.New("request already in progress")

	// ErrSuperseded is returned by a list load whose response arrived after a newer load was issued.
	ErrSuperseded = errors.New("list load superseded by a newer request")

	// ErrTaskNotFound is returned when a task id is not on the current page.
	ErrTaskNotFound = errors.New("task not found on current page")

	// ErrNoPendingAction is returned when submitting an edit or delete that was never opened.
	ErrNoPendingAction = errors.New("no pending edit or delete")
)
