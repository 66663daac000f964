package application

import (
	"time"

	"github.com/google/uuid"
)

// Config is the process-wide security policy. Immutable after startup;
// changing it does not retroactively affect already-computed lock or expiry
// timestamps.
type Config struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	SessionTimeout    time.Duration
	SessionMaxAge     time.Duration
	TokenTTL          time.Duration
}

// LockStatus is the always-defined answer to a lock check. The zero value
// means "not locked", which doubles as the degraded-mode and storage-failure
// fallback.
type LockStatus struct {
	Locked           bool
	LockedUntil      *time.Time
	RemainingMinutes int
}

// FailedLoginResult reports the outcome of recording one failed attempt.
// Exactly one of the two shapes is populated: locked (with remaining time) or
// not locked (with the attempts budget left).
type FailedLoginResult struct {
	Locked            bool
	LockedUntil       *time.Time
	RemainingMinutes  int
	AttemptsRemaining int
}

// SessionState discriminates the validation result.
type SessionState int

const (
	// SessionUntracked covers "no server-side session": never created, absolute
	// expiry (enforced silently by deletion), degraded mode, or storage failure.
	// Callers proceed on bearer-token validity alone.
	SessionUntracked SessionState = iota
	SessionValid
	SessionExpiredInactivity
)

// SessionValidation is the total result of ValidateSession.
type SessionValidation struct {
	State          SessionState
	UserID         uuid.UUID
	LastActivityAt time.Time
	ExpiresAt      time.Time
}

// SessionInfo is a read-only projection for session-expiry-warning UI.
type SessionInfo struct {
	LastActivityAt             time.Time `json:"last_activity_at"`
	ExpiresAt                  time.Time `json:"expires_at"`
	TimeoutSeconds             int       `json:"timeout_seconds"`
	RemainingInactivitySeconds int       `json:"remaining_inactivity_seconds"`
	WillExpireFromInactivity   bool      `json:"will_expire_from_inactivity"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

type LoginResponse struct {
	Token          string    `json:"token"`
	ExpiresIn      int64     `json:"expires_in"`
	SessionID      uuid.UUID `json:"session_id,omitempty"`
	SessionTracked bool      `json:"session_tracked"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	IPAddress       string `json:"ip_address"`
	UserAgent       string `json:"user_agent"`
}
