package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the account aggregate as seen by the security subsystem.
// Lockout state lives on the user record rather than a separate aggregate,
// so a single read answers both identity and lock checks.
type User struct {
	UserID              uuid.UUID
	Email               string
	PasswordHash        string
	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time
	LastLoginIP         string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Session models one issued bearer credential tracked server-side.
// Only a one-way hash of the raw token is ever persisted; compromise of the
// sessions table must not yield usable credentials.
type Session struct {
	SessionID      uuid.UUID
	UserID         uuid.UUID
	TokenHash      string
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
	LastActivityAt time.Time
	ExpiresAt      time.Time
}

// Security event types written to the audit trail.
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailed              = "login_failed"
	EventAccountLocked            = "account_locked"
	EventSessionCreated           = "session_created"
	EventSessionInvalidated       = "session_invalidated"
	EventSessionInactivityTimeout = "session_inactivity_timeout"
	EventSessionsBulkInvalidated  = "sessions_bulk_invalidated"
	EventPasswordChanged          = "password_changed"
)

// SecurityEvent is one immutable audit record. Append-only; the subsystem
// writes these and never reads them back.
type SecurityEvent struct {
	ID        int64
	EventType string
	UserID    *uuid.UUID
	IPAddress string
	UserAgent string
	Details   map[string]any
	CreatedAt time.Time
}
