// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for backend operations.
// All REST calls go through this interface; the controller and the commands
// never build HTTP requests themselves. Authenticated calls take the access
// credential explicitly so that no session state lives in the backend.
type Service interface {
	// Login exchanges a username and password for a credential pair.
	// Any rejection by the token endpoint is reported as ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (Tokens, error)

	// Register creates an account and returns a usable credential pair.
	Register(ctx context.Context, reg Registration) (Tokens, error)

	// ListTasks returns one page of tasks matching the query.
	ListTasks(ctx context.Context, access string, q ListQuery) (TaskPage, error)

	// CreateTask creates a task and returns the server's copy.
	CreateTask(ctx context.Context, access string, in NewTask) (Task, error)

	// UpdateTask applies a partial update and returns the server's copy.
	UpdateTask(ctx context.Context, access string, id int64, patch TaskPatch) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, access string, id int64) error
}
