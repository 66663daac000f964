package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404/NOT_FOUND.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether email or password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked signals temporary lockout after repeated failed attempts.
	// Carries no detail beyond the remaining-time estimate exposed by the caller.
	ErrAccountLocked = errors.New("account locked")
	// ErrSessionInactive is distinct from a generic auth failure so clients can
	// show "logged out due to inactivity" instead of "invalid credentials".
	ErrSessionInactive = errors.New("session expired due to inactivity")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInput    = errors.New("invalid input")
)
