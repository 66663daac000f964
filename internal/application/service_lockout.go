package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/campusforge/account-security-service/internal/domain"
)

// IsAccountLocked reports the current lock state for an account. A lock whose
// deadline has passed is cleared on this read, counter included; expiry for
// locks is computed lazily instead of swept by a background job.
func (s *Service) IsAccountLocked(ctx context.Context, userID uuid.UUID) LockStatus {
	if !s.schemaReady(ctx) {
		return LockStatus{}
	}

	_, lockedUntil, err := s.accounts.GetLockState(ctx, userID)
	if err != nil {
		logStorageDegradation(ctx, "is_account_locked", err)
		return LockStatus{}
	}
	if lockedUntil == nil {
		return LockStatus{}
	}

	now := s.nowFn()
	if lockedUntil.After(now) {
		return LockStatus{
			Locked:           true,
			LockedUntil:      lockedUntil,
			RemainingMinutes: remainingMinutes(now, *lockedUntil),
		}
	}

	// Lock has expired: clear it and reset the counter as a side effect of
	// this read.
	if err := s.accounts.ClearLock(ctx, userID); err != nil {
		logStorageDegradation(ctx, "clear_expired_lock", err)
	}
	return LockStatus{}
}

// RecordFailedLogin increments the failed-attempt counter and locks the
// account when the threshold is reached. The increment is a single atomic
// statement; two concurrent failures can still under-count by one, which only
// ever delays a lockout, never causes a false one.
func (s *Service) RecordFailedLogin(ctx context.Context, userID uuid.UUID, ip, userAgent string) FailedLoginResult {
	permissive := FailedLoginResult{AttemptsRemaining: s.cfg.MaxFailedAttempts}
	if !s.schemaReady(ctx) {
		return permissive
	}

	attempts, err := s.accounts.IncrementFailedAttempts(ctx, userID)
	if err != nil {
		logStorageDegradation(ctx, "record_failed_login", err)
		return permissive
	}

	s.logSecurityEvent(ctx, domain.EventLoginFailed, &userID, ip, userAgent, map[string]any{
		"attempt": attempts,
	})

	if attempts < s.cfg.MaxFailedAttempts {
		return FailedLoginResult{AttemptsRemaining: s.cfg.MaxFailedAttempts - attempts}
	}

	now := s.nowFn()
	lockedUntil := now.Add(s.cfg.LockoutDuration)
	if err := s.accounts.SetLock(ctx, userID, lockedUntil); err != nil {
		// No lock was persisted, so report the permissive shape rather than
		// a partial attempts count.
		logStorageDegradation(ctx, "set_account_lock", err)
		return permissive
	}

	s.logSecurityEvent(ctx, domain.EventAccountLocked, &userID, ip, userAgent, map[string]any{
		"attempts":     attempts,
		"locked_until": lockedUntil,
	})

	return FailedLoginResult{
		Locked:           true,
		LockedUntil:      &lockedUntil,
		RemainingMinutes: remainingMinutes(now, lockedUntil),
	}
}

// RecordSuccessfulLogin unconditionally resets the counter, clears any lock,
// and stamps the last-login metadata.
func (s *Service) RecordSuccessfulLogin(ctx context.Context, userID uuid.UUID, ip, userAgent string) {
	if !s.schemaReady(ctx) {
		return
	}

	if err := s.accounts.RecordSuccess(ctx, userID, s.nowFn(), ip); err != nil {
		logStorageDegradation(ctx, "record_successful_login", err)
	}

	s.logSecurityEvent(ctx, domain.EventLoginSuccess, &userID, ip, userAgent, nil)
}
