package application

import (
	"context"
	"fmt"

	"github.com/campusforge/account-security-service/internal/domain"
	"github.com/campusforge/account-security-service/internal/ports"
)

// Login is the authentication route: lock check, credential compare, failure
// or success recording, then token issuance and session creation. The lockout
// and session layers never fail this flow on infrastructure trouble; only bad
// credentials or an active lock reject a login.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logSecurityEvent(ctx, domain.EventLoginFailed, nil, req.IPAddress, req.UserAgent, map[string]any{
			"reason": "USER_NOT_FOUND",
		})
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	if lock := s.IsAccountLocked(ctx, user.UserID); lock.Locked {
		return LoginResponse{}, lockedError(lock.RemainingMinutes)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		res := s.RecordFailedLogin(ctx, user.UserID, req.IPAddress, req.UserAgent)
		if res.Locked {
			return LoginResponse{}, lockedError(res.RemainingMinutes)
		}
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	s.RecordSuccessfulLogin(ctx, user.UserID, req.IPAddress, req.UserAgent)

	now := s.nowFn()
	token, err := s.tokenSigner.Sign(ports.AuthClaims{
		UserID:    user.UserID,
		Email:     user.Email,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.TokenTTL),
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}

	sessionID, tracked := s.CreateSession(ctx, user.UserID, token, req.IPAddress, req.UserAgent)

	return LoginResponse{
		Token:          token,
		ExpiresIn:      int64(s.cfg.TokenTTL.Seconds()),
		SessionID:      sessionID,
		SessionTracked: tracked,
	}, nil
}

// ValidateBearer is the request-path check: the token-verification step runs
// first, then the server-side session is consulted. An untracked session
// allows the request on token validity alone, a backward-compatibility
// allowance for tokens issued before session tracking was provisioned.
func (s *Service) ValidateBearer(ctx context.Context, rawToken string) (ports.AuthClaims, error) {
	claims, err := s.tokenSigner.ParseAndValidate(rawToken)
	if err != nil {
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}

	switch v := s.ValidateSession(ctx, rawToken); v.State {
	case SessionExpiredInactivity:
		return ports.AuthClaims{}, domain.ErrSessionInactive
	case SessionValid:
		if v.UserID != claims.UserID {
			return ports.AuthClaims{}, domain.ErrUnauthorized
		}
	}

	return claims, nil
}

// Logout invalidates the current session. Token validity is still required so
// a stranger cannot probe session hashes.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if _, err := s.tokenSigner.ParseAndValidate(rawToken); err != nil {
		return domain.ErrUnauthorized
	}
	s.InvalidateSession(ctx, rawToken)
	return nil
}

// ChangePassword updates the credential and forces re-authentication
// everywhere by removing every session the user holds.
func (s *Service) ChangePassword(ctx context.Context, rawToken string, req ChangePasswordRequest) error {
	claims, err := s.tokenSigner.ParseAndValidate(rawToken)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return domain.ErrUnauthorized
	}
	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return domain.ErrInvalidCredentials
	}

	passwordHash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.UserID, passwordHash, s.nowFn()); err != nil {
		return err
	}

	invalidated := s.InvalidateAllUserSessions(ctx, user.UserID)
	s.logSecurityEvent(ctx, domain.EventPasswordChanged, &user.UserID, req.IPAddress, req.UserAgent, map[string]any{
		"sessions_invalidated": invalidated,
	})
	return nil
}

// CurrentSessionInfo exposes the expiry projection for the bearer of a valid
// token.
func (s *Service) CurrentSessionInfo(ctx context.Context, rawToken string) (*SessionInfo, error) {
	if _, err := s.tokenSigner.ParseAndValidate(rawToken); err != nil {
		return nil, domain.ErrUnauthorized
	}
	return s.GetSessionInfo(ctx, rawToken), nil
}

func lockedError(minutes int) error {
	return fmt.Errorf("%w: try again in %d minutes", domain.ErrAccountLocked, minutes)
}
