// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion, including a declined delete.
	Success = 0

	// UserError indicates bad input: unknown flags, an empty title, a task
	// number or page that does not exist, or a request the backend rejected
	// as invalid (400).
	UserError = 1

	// AuthError indicates no stored session, a session the backend refused,
	// invalid credentials, or a session file that cannot be read or written.
	AuthError = 2

	// BackendError indicates a network failure or any other non-2xx answer.
	BackendError = 3
)
