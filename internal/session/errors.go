package session

import (
	"errors"

	"github.com/abenov/coursehub/internal/api"
	"github.com/abenov/coursehub/internal/domain"
)

// User-facing messages for client-side validation failures.
const (
	errEmailInvalid     = "Please enter a valid email address."
	errPasswordRequired = "Please enter your password."
	errNameTooShort     = "Full name must be at least 3 characters."
	errPasswordTooShort = "Password must be at least 6 characters."
	errConnectivity     = "Unable to reach the server. Check your connection and try again."
	errSessionExpired   = "Your session has expired. Please log in again."
	errGeneric          = "Something went wrong. Please try again."
)

// serverMessages maps the known server error strings to user-facing copy.
// Anything the table does not know passes through unchanged.
var serverMessages = map[string]string{
	"Invalid credentials":        "Incorrect email or password.",
	"User already exists":        "An account with this email already exists.",
	"User not found":             "No account found with this email.",
	"Email not verified":         "Please verify your email address before signing in.",
	"Invalid or expired OTP":     "That code is incorrect or has expired. Request a new one.",
	"OTP expired":                "That code has expired. Request a new one.",
	"Too many attempts":          "Too many attempts. Please wait a minute and try again.",
	"Incorrect current password": "Your current password is incorrect.",
}

// userMessage translates a dispatcher failure into the string stored in
// State.Err. Connectivity failures get their own copy; server-reported
// messages go through the lookup table.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrNoResponse):
		return errConnectivity
	case errors.Is(err, domain.ErrUnauthorized):
		return errSessionExpired
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if mapped, ok := serverMessages[apiErr.Message]; ok {
			return mapped
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}
	return errGeneric
}

// outcomeOf buckets a dispatcher failure for the operations counter.
func outcomeOf(err error) string {
	var apiErr *api.APIError
	switch {
	case errors.Is(err, domain.ErrNoResponse):
		return "connectivity"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.As(err, &apiErr):
		return "server_error"
	default:
		return "error"
	}
}
