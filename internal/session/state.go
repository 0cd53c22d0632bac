// Package session holds the in-memory authenticated identity and the state
// machine that governs it. The transition function is pure; persistence of
// the credential happens in an effect step after each dispatch, and only two
// paths in the whole program may remove the stored token: an explicit logout
// here, and the 401 interceptor in the API client.
package session

import "github.com/abenov/coursehub/internal/domain"

// AuthPayload pairs the profile with the bearer token it was issued under.
type AuthPayload struct {
	User  *domain.User
	Token string
}

// State is the session snapshot the UI reads. Zero value = signed out.
type State struct {
	User    *AuthPayload
	Loading bool
	Err     string
}

// Authenticated reports whether both the profile and its token are present.
// A stored token alone is necessary but not sufficient.
func (s State) Authenticated() bool {
	return s.User != nil && s.User.User != nil && s.User.Token != ""
}

// Action is a session state transition request.
type Action interface {
	isAction()
}

// Auth installs an authenticated identity. The effect step persists the
// payload token when present.
type Auth struct {
	Payload AuthPayload
}

// AuthLoading toggles the in-flight flag for an async credential operation.
type AuthLoading struct {
	Loading bool
}

// AuthError records a user-facing failure. It never signs the user out.
type AuthError struct {
	Message string
}

// ClearError dismisses the current error banner.
type ClearError struct{}

// UpdateUser patches the profile of an already-authenticated session,
// keeping its token. Ignored when signed out.
type UpdateUser struct {
	User *domain.User
}

// Logout resets the session. The effect step clears the stored token; this
// is the only action that removes the credential or the in-memory user.
type Logout struct{}

func (Auth) isAction()        {}
func (AuthLoading) isAction() {}
func (AuthError) isAction()   {}
func (ClearError) isAction()  {}
func (UpdateUser) isAction()  {}
func (Logout) isAction()      {}
