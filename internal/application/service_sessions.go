package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/campusforge/account-security-service/internal/domain"
	"github.com/campusforge/account-security-service/internal/ports"
)

// CreateSession persists a server-side session for a freshly issued bearer
// token. The second return is false when no session was created (schema
// absent or storage failure); the caller proceeds in token-only mode.
func (s *Service) CreateSession(ctx context.Context, userID uuid.UUID, rawToken, ip, userAgent string) (uuid.UUID, bool) {
	if !s.schemaReady(ctx) {
		return uuid.Nil, false
	}

	now := s.nowFn()
	session, err := s.sessions.Create(ctx, ports.SessionCreateParams{
		UserID:         userID,
		TokenHash:      hashToken(rawToken),
		IPAddress:      ip,
		UserAgent:      truncateUserAgent(userAgent),
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cfg.SessionMaxAge),
		LastActivityAt: now,
	})
	if err != nil {
		logStorageDegradation(ctx, "create_session", err)
		return uuid.Nil, false
	}

	s.logSecurityEvent(ctx, domain.EventSessionCreated, &userID, ip, userAgent, map[string]any{
		"session_id": session.SessionID,
		"expires_at": session.ExpiresAt,
	})
	return session.SessionID, true
}

// ValidateSession checks both expiry conditions for the session matching the
// raw token and bumps the activity clock on success. A session past its
// absolute ceiling is deleted and reported as untracked, indistinguishable
// from one that never existed; an inactivity timeout is deleted but reported
// distinctly so the caller can surface "logged out due to inactivity".
func (s *Service) ValidateSession(ctx context.Context, rawToken string) SessionValidation {
	if !s.schemaReady(ctx) {
		return SessionValidation{State: SessionUntracked}
	}

	tokenHash := hashToken(rawToken)
	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logStorageDegradation(ctx, "validate_session", err)
		}
		return SessionValidation{State: SessionUntracked}
	}

	now := s.nowFn()
	if !now.Before(session.ExpiresAt) {
		if err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
			logStorageDegradation(ctx, "delete_expired_session", err)
		}
		return SessionValidation{State: SessionUntracked}
	}

	if now.Sub(session.LastActivityAt) >= s.cfg.SessionTimeout {
		if err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
			logStorageDegradation(ctx, "delete_inactive_session", err)
		}
		s.logSecurityEvent(ctx, domain.EventSessionInactivityTimeout, &session.UserID, session.IPAddress, session.UserAgent, map[string]any{
			"session_id":    session.SessionID,
			"last_activity": session.LastActivityAt,
		})
		return SessionValidation{State: SessionExpiredInactivity}
	}

	// Last-write-wins is fine here: concurrent validators all advance the
	// same monotonically increasing clock.
	if err := s.sessions.TouchActivity(ctx, session.SessionID, now); err != nil {
		logStorageDegradation(ctx, "touch_session_activity", err)
	}

	return SessionValidation{
		State:          SessionValid,
		UserID:         session.UserID,
		LastActivityAt: now,
		ExpiresAt:      session.ExpiresAt,
	}
}

// InvalidateSession deletes the session matching the raw token. Idempotent;
// never reports failure to the caller.
func (s *Service) InvalidateSession(ctx context.Context, rawToken string) {
	if !s.schemaReady(ctx) {
		return
	}

	tokenHash := hashToken(rawToken)
	session, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return
	}
	if err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
		logStorageDegradation(ctx, "invalidate_session", err)
		return
	}
	s.logSecurityEvent(ctx, domain.EventSessionInvalidated, &session.UserID, session.IPAddress, session.UserAgent, map[string]any{
		"session_id": session.SessionID,
	})
}

// InvalidateAllUserSessions removes every session for the user, forcing
// re-authentication everywhere. Returns the number of sessions removed.
func (s *Service) InvalidateAllUserSessions(ctx context.Context, userID uuid.UUID) int64 {
	if !s.schemaReady(ctx) {
		return 0
	}

	count, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		logStorageDegradation(ctx, "invalidate_all_user_sessions", err)
		return 0
	}
	if count > 0 {
		s.logSecurityEvent(ctx, domain.EventSessionsBulkInvalidated, &userID, "", "", map[string]any{
			"count": count,
		})
	}
	return count
}

// CleanupExpiredSessions bulk-deletes sessions past their absolute expiry.
// Row growth, not correctness, is the driver; both expiry conditions are
// already enforced on read.
func (s *Service) CleanupExpiredSessions(ctx context.Context) int64 {
	if !s.schemaReady(ctx) {
		return 0
	}

	count, err := s.sessions.DeleteExpiredBefore(ctx, s.nowFn())
	if err != nil {
		logStorageDegradation(ctx, "cleanup_expired_sessions", err)
		return 0
	}
	if count > 0 {
		appLogger().InfoContext(ctx, "expired sessions removed",
			"operation", "cleanup_expired_sessions",
			"outcome", "success",
			"deleted_count", count,
		)
	}
	return count
}

// GetSessionInfo returns the remaining-inactivity projection for the session
// matching the raw token, or nil when no live session exists. Read-only; it
// does not bump activity or delete anything.
func (s *Service) GetSessionInfo(ctx context.Context, rawToken string) *SessionInfo {
	if !s.schemaReady(ctx) {
		return nil
	}

	session, err := s.sessions.GetByTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logStorageDegradation(ctx, "get_session_info", err)
		}
		return nil
	}

	now := s.nowFn()
	if !now.Before(session.ExpiresAt) {
		return nil
	}

	remaining := s.cfg.SessionTimeout - now.Sub(session.LastActivityAt)
	if remaining < 0 {
		remaining = 0
	}

	return &SessionInfo{
		LastActivityAt:             session.LastActivityAt,
		ExpiresAt:                  session.ExpiresAt,
		TimeoutSeconds:             int(s.cfg.SessionTimeout.Seconds()),
		RemainingInactivitySeconds: int(remaining.Seconds()),
		WillExpireFromInactivity:   remaining < sessionExpiryWarning,
	}
}
