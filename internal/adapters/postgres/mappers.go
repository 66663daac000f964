package postgres

import (
	"strings"

	"github.com/campusforge/account-security-service/internal/domain"
)

func toDomainUser(row userModel) domain.User {
	ip := ""
	if row.LastLoginIP != nil {
		ip = *row.LastLoginIP
	}
	return domain.User{
		UserID:              row.UserID,
		Email:               row.Email,
		PasswordHash:        row.PasswordHash,
		FailedLoginAttempts: row.FailedLoginAttempts,
		LockedUntil:         row.LockedUntil,
		LastLoginAt:         row.LastLoginAt,
		LastLoginIP:         ip,
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

func toDomainSession(row sessionModel) domain.Session {
	ip := ""
	if row.IPAddress != nil {
		ip = *row.IPAddress
	}
	return domain.Session{
		SessionID:      row.SessionID,
		UserID:         row.UserID,
		TokenHash:      row.TokenHash,
		IPAddress:      ip,
		UserAgent:      row.UserAgent,
		CreatedAt:      row.CreatedAt,
		LastActivityAt: row.LastActivityAt,
		ExpiresAt:      row.ExpiresAt,
	}
}

func nullableString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
