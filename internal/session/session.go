// Package session holds the credential pair and its persistent store.
package session

import (
	"golang.org/x/oauth2"

	"todo/internal/service"
)

// Fixed keys under which the credentials are persisted.
const (
	KeyAccess  = "access"
	KeyRefresh = "refresh"
)

// Session is the access/refresh credential pair of a logged-in user.
// The zero value is the logged-out session.
type Session struct {
	Access  string
	Refresh string
}

// FromTokens builds a session from a backend token response.
func FromTokens(t service.Tokens) Session {
	return Session{Access: t.Access, Refresh: t.Refresh}
}

// Present reports whether an access credential is held.
func (s Session) Present() bool {
	return s.Access != ""
}

// Token returns the session as a bearer oauth2 token. The refresh credential
// is carried along but never exercised.
func (s Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.Access,
		RefreshToken: s.Refresh,
		TokenType:    "Bearer",
	}
}

// Store persists a session between runs.
type Store interface {
	// Load returns the stored session, or the zero session if none is stored.
	Load() (Session, error)

	// Save replaces the stored session.
	Save(s Session) error

	// Clear removes the stored session. Clearing an empty store is not an error.
	Clear() error
}
