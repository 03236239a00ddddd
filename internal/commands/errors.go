package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"todo/internal/controller"
	"todo/internal/exitcode"
	"todo/internal/service"
)

const loginHint = "(run: todo login)"

// fail prints err to errOut and returns the matching exit code.
func fail(errOut io.Writer, err error) int {
	var httpErr *service.HTTPError

	switch {
	case errors.Is(err, controller.ErrNotAuthenticated):
		fmt.Fprintf(errOut, "error: not logged in %s\n", loginHint)
		return exitcode.AuthError
	case errors.Is(err, service.ErrInvalidCredentials):
		fmt.Fprintln(errOut, "error: invalid credentials")
		return exitcode.AuthError
	case service.IsUnauthorized(err):
		fmt.Fprintf(errOut, "error: session rejected by server %s\n", loginHint)
		return exitcode.AuthError
	case errors.Is(err, controller.ErrEmptyTitle),
		errors.Is(err, controller.ErrTaskNotFound),
		errors.Is(err, controller.ErrBusy):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusBadRequest:
		fmt.Fprintf(errOut, "error: rejected: %s\n", strings.TrimSpace(httpErr.Body))
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// isNotFound reports whether err is a 404 answer from the backend.
func isNotFound(err error) bool {
	var httpErr *service.HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound
}

// readLine reads one line from r without the trailing newline.
// A final line without newline is returned as is.
func readLine(r io.Reader) (string, error) {
	if r == nil {
		return "", io.EOF
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
