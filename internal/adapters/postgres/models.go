package postgres

import (
	"time"

	"github.com/google/uuid"
)

type userModel struct {
	UserID              uuid.UUID  `gorm:"column:user_id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email               string     `gorm:"column:email"`
	PasswordHash        string     `gorm:"column:password_hash"`
	FailedLoginAttempts int        `gorm:"column:failed_login_attempts"`
	LockedUntil         *time.Time `gorm:"column:locked_until"`
	LastLoginAt         *time.Time `gorm:"column:last_login_at"`
	LastLoginIP         *string    `gorm:"column:last_login_ip"`
	CreatedAt           time.Time  `gorm:"column:created_at"`
	UpdatedAt           time.Time  `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

type sessionModel struct {
	SessionID      uuid.UUID `gorm:"column:session_id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID `gorm:"column:user_id"`
	TokenHash      string    `gorm:"column:token_hash"`
	IPAddress      *string   `gorm:"column:ip_address"`
	UserAgent      string    `gorm:"column:user_agent"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	LastActivityAt time.Time `gorm:"column:last_activity_at"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
}

func (sessionModel) TableName() string { return "user_sessions" }

type securityEventModel struct {
	ID        int64      `gorm:"column:id;primaryKey"`
	EventType string     `gorm:"column:event_type"`
	UserID    *uuid.UUID `gorm:"column:user_id"`
	IPAddress *string    `gorm:"column:ip_address"`
	UserAgent string     `gorm:"column:user_agent"`
	Details   *string    `gorm:"column:details;type:jsonb"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (securityEventModel) TableName() string { return "security_events" }
