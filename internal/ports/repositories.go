package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/campusforge/account-security-service/internal/domain"
)

// SchemaProbe answers whether the security schema is present in the backing
// store. The answer is computed once and memoized for the process lifetime so
// the subsystem can be deployed ahead of its own migration without breaking
// login: every operation consults the probe and degrades to a permissive
// no-op when the schema is absent.
type SchemaProbe interface {
	SecuritySchemaReady(ctx context.Context) bool
}

// UserRepository covers the account reads the auth route needs plus the
// credential update the password-change flow performs.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error
}

// AccountSecurityRepository mutates the lockout state attached to the user
// record. IncrementFailedAttempts must be a single atomic statement so two
// concurrent failures shrink the read-modify-write race to whatever the
// storage engine allows.
type AccountSecurityRepository interface {
	GetLockState(ctx context.Context, userID uuid.UUID) (failedAttempts int, lockedUntil *time.Time, err error)
	IncrementFailedAttempts(ctx context.Context, userID uuid.UUID) (int, error)
	SetLock(ctx context.Context, userID uuid.UUID, lockedUntil time.Time) error
	ClearLock(ctx context.Context, userID uuid.UUID) error
	RecordSuccess(ctx context.Context, userID uuid.UUID, loginAt time.Time, ip string) error
}

// SessionCreateParams captures everything persisted for a new session.
// The raw token never reaches the repository; callers pass its hash.
type SessionCreateParams struct {
	UserID         uuid.UUID
	TokenHash      string
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	LastActivityAt time.Time
}

// SessionRepository manages session rows keyed by token hash. Deletion is the
// only terminal transition; there is no persisted "expired" state.
type SessionRepository interface {
	Create(ctx context.Context, params SessionCreateParams) (domain.Session, error)
	GetByTokenHash(ctx context.Context, tokenHash string) (domain.Session, error)
	TouchActivity(ctx context.Context, sessionID uuid.UUID, touchedAt time.Time) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// SecurityEventRepository appends audit records. Insert failures are the
// caller's problem to swallow; the audit trail is deliberately best-effort.
type SecurityEventRepository interface {
	Insert(ctx context.Context, event domain.SecurityEvent) error
}
