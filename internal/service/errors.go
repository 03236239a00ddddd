package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCredentials is returned when the token endpoint rejects a login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// HTTPError is a non-2xx backend response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("error %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// IsUnauthorized reports whether err is a 401 or 403 backend response.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return httpErr.StatusCode == 401 || httpErr.StatusCode == 403
}
