package unit

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusforge/account-security-service/internal/application"
	"github.com/campusforge/account-security-service/internal/domain"
	"github.com/campusforge/account-security-service/internal/ports"
)

func TestLoginIssuesTokenAndTrackedSession(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.addUser("user@example.com", "SecurePass123!")

	res, err := f.service.Login(ctx, application.LoginRequest{
		Email:     "user@example.com",
		Password:  "SecurePass123!",
		IPAddress: "127.0.0.1",
		UserAgent: "unit-test",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("login token should not be empty")
	}
	if !res.SessionTracked || res.SessionID == uuid.Nil {
		t.Fatalf("expected tracked session, got tracked=%v id=%s", res.SessionTracked, res.SessionID)
	}

	claims, err := f.service.ValidateBearer(ctx, res.Token)
	if err != nil {
		t.Fatalf("validate bearer failed: %v", err)
	}
	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected claims email: %s", claims.Email)
	}
}

func TestLoginRejectsWrongPasswordWithoutRevealingAccount(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.addUser("user@example.com", "SecurePass123!")

	_, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "WrongPass123!",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	_, err = f.service.Login(ctx, application.LoginRequest{
		Email:    "missing@example.com",
		Password: "WrongPass123!",
	})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected same error for unknown account, got %v", err)
	}
}

func TestAccountLocksAfterThresholdFailures(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	for i := 0; i < 4; i++ {
		res := f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test")
		if res.Locked {
			t.Fatalf("should not be locked after %d failures", i+1)
		}
		if res.AttemptsRemaining != 4-i {
			t.Fatalf("expected %d attempts remaining, got %d", 4-i, res.AttemptsRemaining)
		}
	}

	res := f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test")
	if !res.Locked || res.LockedUntil == nil {
		t.Fatalf("expected lock after fifth failure, got %+v", res)
	}
	if res.RemainingMinutes != 15 {
		t.Fatalf("expected 15 minutes remaining, got %d", res.RemainingMinutes)
	}

	lock := f.service.IsAccountLocked(ctx, userID)
	if !lock.Locked {
		t.Fatalf("account should report locked")
	}

	_, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePass123!",
	})
	if !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("correct password must be rejected while locked, got %v", err)
	}
}

func TestLockClearsLazilyAfterExpiry(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	for i := 0; i < 5; i++ {
		f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test")
	}
	if !f.service.IsAccountLocked(ctx, userID).Locked {
		t.Fatalf("expected locked account")
	}

	f.clock.advance(16 * time.Minute)

	lock := f.service.IsAccountLocked(ctx, userID)
	if lock.Locked {
		t.Fatalf("lock should clear after expiry, got %+v", lock)
	}

	// Clearing an expired lock also resets the counter, so the next
	// failure starts a fresh budget.
	res := f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test")
	if res.Locked || res.AttemptsRemaining != 4 {
		t.Fatalf("expected fresh attempts budget after unlock, got %+v", res)
	}

	if _, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePass123!",
	}); err != nil {
		t.Fatalf("login should succeed after lock expiry: %v", err)
	}
}

func TestSuccessfulLoginResetsFailureCounter(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	for i := 0; i < 4; i++ {
		f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test")
	}
	f.service.RecordSuccessfulLogin(ctx, userID, "127.0.0.1", "unit-test")

	res := f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test")
	if res.Locked || res.AttemptsRemaining != 4 {
		t.Fatalf("counter should reset on success, got %+v", res)
	}
}

func TestRemainingMinutesRoundsUp(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	for i := 0; i < 5; i++ {
		f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test")
	}

	f.clock.advance(14*time.Minute + 50*time.Second)
	lock := f.service.IsAccountLocked(ctx, userID)
	if !lock.Locked || lock.RemainingMinutes != 1 {
		t.Fatalf("ten seconds left should still read as one minute, got %+v", lock)
	}
}

func TestSessionStoresOnlyTokenHash(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	const rawToken = "raw-bearer-token"
	if _, ok := f.service.CreateSession(ctx, userID, rawToken, "127.0.0.1", "unit-test"); !ok {
		t.Fatalf("create session failed")
	}

	f.sessions.mu.Lock()
	defer f.sessions.mu.Unlock()
	for hash, s := range f.sessions.byHash {
		if hash == rawToken || s.TokenHash == rawToken {
			t.Fatalf("raw token must never be persisted")
		}
		if len(s.TokenHash) != 64 {
			t.Fatalf("expected hex sha-256 fingerprint, got %q", s.TokenHash)
		}
	}
}

func TestValidateSessionSlidesActivityWindow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	const rawToken = "sliding-token"
	if _, ok := f.service.CreateSession(ctx, userID, rawToken, "127.0.0.1", "unit-test"); !ok {
		t.Fatalf("create session failed")
	}

	// Re-validate every 10 minutes; each touch restarts the 30 minute
	// inactivity window so the session survives far past a single window.
	for i := 0; i < 12; i++ {
		f.clock.advance(10 * time.Minute)
		v := f.service.ValidateSession(ctx, rawToken)
		if v.State != application.SessionValid {
			t.Fatalf("session should stay valid at step %d, got state %d", i, v.State)
		}
		if v.UserID != userID {
			t.Fatalf("unexpected session owner: %s", v.UserID)
		}
	}
}

func TestInactivityTimeoutIsReportedDistinctly(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	const rawToken = "idle-token"
	f.service.CreateSession(ctx, userID, rawToken, "127.0.0.1", "unit-test")

	f.clock.advance(31 * time.Minute)
	v := f.service.ValidateSession(ctx, rawToken)
	if v.State != application.SessionExpiredInactivity {
		t.Fatalf("expected inactivity expiry, got state %d", v.State)
	}

	// The row is deleted on expiry, so a second validation finds nothing.
	if again := f.service.ValidateSession(ctx, rawToken); again.State != application.SessionUntracked {
		t.Fatalf("expected untracked after deletion, got state %d", again.State)
	}
}

func TestAbsoluteExpiryIsSilentAndNotSlidPast(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	const rawToken = "ceiling-token"
	f.service.CreateSession(ctx, userID, rawToken, "127.0.0.1", "unit-test")

	// Stay continuously active right up to the 24 hour ceiling. Activity
	// never extends the absolute deadline.
	for elapsed := time.Duration(0); elapsed < 24*time.Hour-10*time.Minute; elapsed += 10 * time.Minute {
		f.clock.advance(10 * time.Minute)
		if v := f.service.ValidateSession(ctx, rawToken); v.State != application.SessionValid {
			t.Fatalf("session should be valid at %s, got state %d", elapsed, v.State)
		}
	}

	f.clock.advance(11 * time.Minute)
	v := f.service.ValidateSession(ctx, rawToken)
	if v.State != application.SessionUntracked {
		t.Fatalf("absolute expiry must look like no session at all, got state %d", v.State)
	}
}

func TestValidateBearerMapsInactivityToDistinctError(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.addUser("user@example.com", "SecurePass123!")

	res, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePass123!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	f.clock.advance(31 * time.Minute)
	if _, err := f.service.ValidateBearer(ctx, res.Token); !errors.Is(err, domain.ErrSessionInactive) {
		t.Fatalf("expected session-inactive error, got %v", err)
	}
}

func TestValidateBearerAllowsUntrackedSession(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	// Token issued without any session row, as happens for tokens minted
	// before session tracking was provisioned.
	token, err := f.signer.Sign(ports.AuthClaims{UserID: userID, Email: "user@example.com"})
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	claims, err := f.service.ValidateBearer(ctx, token)
	if err != nil {
		t.Fatalf("untracked session must pass on token validity alone: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("unexpected claims user: %s", claims.UserID)
	}
}

func TestLogoutInvalidatesSessionIdempotently(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.addUser("user@example.com", "SecurePass123!")

	res, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePass123!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.service.Logout(ctx, res.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if v := f.service.ValidateSession(ctx, res.Token); v.State != application.SessionUntracked {
		t.Fatalf("expected untracked after logout, got state %d", v.State)
	}
	if err := f.service.Logout(ctx, res.Token); err != nil {
		t.Fatalf("repeated logout must stay clean: %v", err)
	}
}

func TestInvalidateAllUserSessionsTargetsOneUser(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	alice := f.addUser("alice@example.com", "SecurePass123!")
	bob := f.addUser("bob@example.com", "SecurePass123!")

	f.service.CreateSession(ctx, alice, "alice-1", "127.0.0.1", "unit-test")
	f.service.CreateSession(ctx, alice, "alice-2", "127.0.0.1", "unit-test")
	f.service.CreateSession(ctx, bob, "bob-1", "127.0.0.1", "unit-test")

	if count := f.service.InvalidateAllUserSessions(ctx, alice); count != 2 {
		t.Fatalf("expected 2 sessions invalidated, got %d", count)
	}

	if v := f.service.ValidateSession(ctx, "alice-1"); v.State != application.SessionUntracked {
		t.Fatalf("alice session should be gone")
	}
	if v := f.service.ValidateSession(ctx, "bob-1"); v.State != application.SessionValid {
		t.Fatalf("bob session must be untouched, got state %d", v.State)
	}
}

func TestChangePasswordForcesReauthentication(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.addUser("user@example.com", "SecurePass123!")

	res, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePass123!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.service.ChangePassword(ctx, res.Token, application.ChangePasswordRequest{
		CurrentPassword: "SecurePass123!",
		NewPassword:     "AnotherPass456$",
	}); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if v := f.service.ValidateSession(ctx, res.Token); v.State != application.SessionUntracked {
		t.Fatalf("all sessions must be removed after password change")
	}

	if _, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePass123!",
	}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "AnotherPass456$",
	}); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
}

func TestChangePasswordRejectsWrongCurrentAndWeakNew(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.addUser("user@example.com", "SecurePass123!")

	res, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePass123!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := f.service.ChangePassword(ctx, res.Token, application.ChangePasswordRequest{
		CurrentPassword: "WrongCurrent1!",
		NewPassword:     "AnotherPass456$",
	}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}

	if err := f.service.ChangePassword(ctx, res.Token, application.ChangePasswordRequest{
		CurrentPassword: "SecurePass123!",
		NewPassword:     "short",
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected validation error for weak password, got %v", err)
	}
}

func TestCleanupExpiredSessionsRemovesOnlyPastCeiling(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	f.service.CreateSession(ctx, userID, "old-token", "127.0.0.1", "unit-test")
	f.clock.advance(25 * time.Hour)
	f.service.CreateSession(ctx, userID, "fresh-token", "127.0.0.1", "unit-test")

	if count := f.service.CleanupExpiredSessions(ctx); count != 1 {
		t.Fatalf("expected one expired session removed, got %d", count)
	}
	if v := f.service.ValidateSession(ctx, "fresh-token"); v.State != application.SessionValid {
		t.Fatalf("fresh session must survive the sweep, got state %d", v.State)
	}
}

func TestGetSessionInfoWarnsNearInactivityExpiry(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	const rawToken = "info-token"
	f.service.CreateSession(ctx, userID, rawToken, "127.0.0.1", "unit-test")

	info := f.service.GetSessionInfo(ctx, rawToken)
	if info == nil {
		t.Fatalf("expected session info")
	}
	if info.WillExpireFromInactivity {
		t.Fatalf("fresh session should not warn")
	}
	if info.TimeoutSeconds != 1800 {
		t.Fatalf("expected 1800s timeout, got %d", info.TimeoutSeconds)
	}

	f.clock.advance(27 * time.Minute)
	info = f.service.GetSessionInfo(ctx, rawToken)
	if info == nil || !info.WillExpireFromInactivity {
		t.Fatalf("expected expiry warning with three minutes left, got %+v", info)
	}
	if info.RemainingInactivitySeconds != 180 {
		t.Fatalf("expected 180s remaining, got %d", info.RemainingInactivitySeconds)
	}

	// The read must not have slid the window.
	f.clock.advance(4 * time.Minute)
	if v := f.service.ValidateSession(ctx, rawToken); v.State != application.SessionExpiredInactivity {
		t.Fatalf("info read must not count as activity, got state %d", v.State)
	}
}

func TestGetSessionInfoNilPastAbsoluteExpiry(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	f.service.CreateSession(ctx, userID, "doomed-token", "127.0.0.1", "unit-test")
	f.clock.advance(25 * time.Hour)

	if info := f.service.GetSessionInfo(ctx, "doomed-token"); info != nil {
		t.Fatalf("expected nil info past absolute expiry, got %+v", info)
	}
}

func TestDegradedModeIsPermissiveEverywhere(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.probe.setReady(false)
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	if lock := f.service.IsAccountLocked(ctx, userID); lock.Locked {
		t.Fatalf("degraded lock check must report unlocked")
	}
	if res := f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test"); res.Locked || res.AttemptsRemaining != 5 {
		t.Fatalf("degraded failure recording must return full budget, got %+v", res)
	}
	if id, tracked := f.service.CreateSession(ctx, userID, "token", "127.0.0.1", "unit-test"); tracked || id != uuid.Nil {
		t.Fatalf("degraded session creation must report untracked")
	}
	if v := f.service.ValidateSession(ctx, "token"); v.State != application.SessionUntracked {
		t.Fatalf("degraded validation must report untracked")
	}
	if count := f.service.InvalidateAllUserSessions(ctx, userID); count != 0 {
		t.Fatalf("degraded bulk invalidation must report zero")
	}
	if count := f.service.CleanupExpiredSessions(ctx); count != 0 {
		t.Fatalf("degraded cleanup must report zero")
	}
	if info := f.service.GetSessionInfo(ctx, "token"); info != nil {
		t.Fatalf("degraded session info must be nil")
	}

	// Login itself still works end to end; it just runs token-only.
	res, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePass123!",
	})
	if err != nil {
		t.Fatalf("degraded login failed: %v", err)
	}
	if res.SessionTracked {
		t.Fatalf("degraded login must not claim a tracked session")
	}
	if _, err := f.service.ValidateBearer(ctx, res.Token); err != nil {
		t.Fatalf("degraded bearer validation failed: %v", err)
	}

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	if len(f.events.items) != 0 {
		t.Fatalf("no audit rows may be written in degraded mode, got %d", len(f.events.items))
	}
}

func TestStorageErrorsDegradeToPermissiveDefaults(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")
	f.accounts.failNext = errors.New("connection reset")

	if lock := f.service.IsAccountLocked(ctx, userID); lock.Locked {
		t.Fatalf("storage error on lock check must read as unlocked")
	}

	f.accounts.failNext = errors.New("connection reset")
	if res := f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test"); res.Locked || res.AttemptsRemaining != 5 {
		t.Fatalf("storage error on failure recording must return full budget, got %+v", res)
	}
}

func TestLockWriteFailureFallsBackToFullBudget(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	for i := 0; i < 4; i++ {
		f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test")
	}

	// The fifth failure reaches the threshold, but persisting the lock
	// fails. No lock exists, so the result must read as the permissive
	// full budget, never a partial count.
	f.accounts.failSetLock = errors.New("connection reset")
	res := f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test")
	if res.Locked {
		t.Fatalf("no lock was persisted, result must not claim one: %+v", res)
	}
	if res.AttemptsRemaining != 5 {
		t.Fatalf("expected full attempts budget on lock write failure, got %+v", res)
	}

	if f.service.IsAccountLocked(ctx, userID).Locked {
		t.Fatalf("account must stay unlocked when the lock write failed")
	}
}

func TestAuditTrailFailureDoesNotBreakLogin(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.addUser("user@example.com", "SecurePass123!")
	f.events.failAll = true

	if _, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "user@example.com",
		Password: "SecurePass123!",
	}); err != nil {
		t.Fatalf("audit insert failure must not fail login: %v", err)
	}
}

func TestLockoutEmitsAuditEvents(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	for i := 0; i < 5; i++ {
		f.service.RecordFailedLogin(ctx, userID, "127.0.0.1", "unit-test")
	}

	f.events.mu.Lock()
	defer f.events.mu.Unlock()
	var failed, locked int
	for _, e := range f.events.items {
		switch e.EventType {
		case domain.EventLoginFailed:
			failed++
		case domain.EventAccountLocked:
			locked++
		}
	}
	if failed != 5 || locked != 1 {
		t.Fatalf("expected 5 failure events and 1 lock event, got %d and %d", failed, locked)
	}
}

func TestLoginNormalizesEmail(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.addUser("user@example.com", "SecurePass123!")

	if _, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "  USER@Example.COM ",
		Password: "SecurePass123!",
	}); err != nil {
		t.Fatalf("mixed-case email should resolve the same account: %v", err)
	}

	if _, err := f.service.Login(ctx, application.LoginRequest{
		Email:    "not-an-email",
		Password: "SecurePass123!",
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestLongUserAgentIsTruncatedInSessionRow(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	userID := f.addUser("user@example.com", "SecurePass123!")

	ua := strings.Repeat("x", 600)
	f.service.CreateSession(ctx, userID, "ua-token", "127.0.0.1", ua)

	f.sessions.mu.Lock()
	defer f.sessions.mu.Unlock()
	for _, s := range f.sessions.byHash {
		if len(s.UserAgent) != 255 {
			t.Fatalf("expected user agent truncated to 255 chars, got %d", len(s.UserAgent))
		}
	}
}

func defaultTestConfig() application.Config {
	return application.Config{
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		SessionTimeout:    30 * time.Minute,
		SessionMaxAge:     24 * time.Hour,
		TokenTTL:          24 * time.Hour,
	}
}

func newFixture() *fixture {
	return newFixtureWithConfig(defaultTestConfig())
}

func newFixtureWithConfig(cfg application.Config) *fixture {
	clock := newTestClock()
	probe := &fakeProbe{ready: true}
	users := &fakeUsers{
		byEmail: map[string]domain.User{},
		byID:    map[uuid.UUID]domain.User{},
	}
	accounts := &fakeAccounts{state: map[uuid.UUID]lockRecord{}}
	sessions := &fakeSessions{
		byHash: map[string]domain.Session{},
		byID:   map[uuid.UUID]string{},
	}
	events := &fakeEvents{}
	signer := &fakeSigner{tokens: map[string]ports.AuthClaims{}}

	svc := application.NewService(application.Dependencies{
		Config:      cfg,
		Probe:       probe,
		Users:       users,
		Accounts:    accounts,
		Sessions:    sessions,
		Events:      events,
		Hasher:      &fakeHasher{},
		TokenSigner: signer,
		Now:         clock.now,
	})

	return &fixture{
		service:  svc,
		clock:    clock,
		probe:    probe,
		users:    users,
		accounts: accounts,
		sessions: sessions,
		events:   events,
		signer:   signer,
	}
}

type fixture struct {
	service  *application.Service
	clock    *testClock
	probe    *fakeProbe
	users    *fakeUsers
	accounts *fakeAccounts
	sessions *fakeSessions
	events   *fakeEvents
	signer   *fakeSigner
}

func (f *fixture) addUser(email, password string) uuid.UUID {
	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	u := domain.User{
		UserID:       uuid.New(),
		Email:        email,
		PasswordHash: "hash:" + password,
		CreatedAt:    f.clock.now(),
		UpdatedAt:    f.clock.now(),
	}
	f.users.byEmail[email] = u
	f.users.byID[u.UserID] = u
	return u.UserID
}

type testClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newTestClock() *testClock {
	return &testClock{cur: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

type fakeProbe struct {
	mu    sync.Mutex
	ready bool
}

func (f *fakeProbe) SecuritySchemaReady(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

func (f *fakeProbe) setReady(ready bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ready = ready
}

type fakeUsers struct {
	mu      sync.Mutex
	byEmail map[string]domain.User
	byID    map[uuid.UUID]domain.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID uuid.UUID) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, userID uuid.UUID, passwordHash string, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[userID]
	if !ok {
		return domain.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = updatedAt
	f.byID[userID] = u
	f.byEmail[u.Email] = u
	return nil
}

type lockRecord struct {
	attempts    int
	lockedUntil *time.Time
}

type fakeAccounts struct {
	mu          sync.Mutex
	state       map[uuid.UUID]lockRecord
	failNext    error
	failSetLock error
}

func (f *fakeAccounts) takeError() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeAccounts) GetLockState(_ context.Context, userID uuid.UUID) (int, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeError(); err != nil {
		return 0, nil, err
	}
	rec := f.state[userID]
	return rec.attempts, rec.lockedUntil, nil
}

func (f *fakeAccounts) IncrementFailedAttempts(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeError(); err != nil {
		return 0, err
	}
	rec := f.state[userID]
	rec.attempts++
	f.state[userID] = rec
	return rec.attempts, nil
}

func (f *fakeAccounts) SetLock(_ context.Context, userID uuid.UUID, lockedUntil time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeError(); err != nil {
		return err
	}
	if err := f.failSetLock; err != nil {
		f.failSetLock = nil
		return err
	}
	rec := f.state[userID]
	rec.lockedUntil = &lockedUntil
	f.state[userID] = rec
	return nil
}

func (f *fakeAccounts) ClearLock(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeError(); err != nil {
		return err
	}
	f.state[userID] = lockRecord{}
	return nil
}

func (f *fakeAccounts) RecordSuccess(_ context.Context, userID uuid.UUID, _ time.Time, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeError(); err != nil {
		return err
	}
	f.state[userID] = lockRecord{}
	return nil
}

type fakeSessions struct {
	mu     sync.Mutex
	byHash map[string]domain.Session
	byID   map[uuid.UUID]string
}

func (f *fakeSessions) Create(_ context.Context, params ports.SessionCreateParams) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := domain.Session{
		SessionID:      uuid.New(),
		UserID:         params.UserID,
		TokenHash:      params.TokenHash,
		IPAddress:      params.IPAddress,
		UserAgent:      params.UserAgent,
		CreatedAt:      params.CreatedAt,
		LastActivityAt: params.LastActivityAt,
		ExpiresAt:      params.ExpiresAt,
	}
	f.byHash[s.TokenHash] = s
	f.byID[s.SessionID] = s.TokenHash
	return s, nil
}

func (f *fakeSessions) GetByTokenHash(_ context.Context, tokenHash string) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.byHash[tokenHash]
	if !ok {
		return domain.Session{}, domain.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessions) TouchActivity(_ context.Context, sessionID uuid.UUID, touchedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	hash, ok := f.byID[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s := f.byHash[hash]
	s.LastActivityAt = touchedAt
	f.byHash[hash] = s
	return nil
}

func (f *fakeSessions) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.byHash[tokenHash]; ok {
		delete(f.byID, s.SessionID)
		delete(f.byHash, tokenHash)
	}
	return nil
}

func (f *fakeSessions) DeleteByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for hash, s := range f.byHash {
		if s.UserID == userID {
			delete(f.byID, s.SessionID)
			delete(f.byHash, hash)
			count++
		}
	}
	return count, nil
}

func (f *fakeSessions) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for hash, s := range f.byHash {
		if !s.ExpiresAt.After(cutoff) {
			delete(f.byID, s.SessionID)
			delete(f.byHash, hash)
			count++
		}
	}
	return count, nil
}

type fakeEvents struct {
	mu      sync.Mutex
	items   []domain.SecurityEvent
	failAll bool
}

func (f *fakeEvents) Insert(_ context.Context, event domain.SecurityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("audit storage down")
	}
	f.items = append(f.items, event)
	return nil
}

type fakeHasher struct{}

func (f *fakeHasher) Hash(password string) (string, error) { return "hash:" + password, nil }

func (f *fakeHasher) Compare(hash, password string) error {
	if hash != "hash:"+password {
		return errors.New("hash mismatch")
	}
	return nil
}

type fakeSigner struct {
	mu     sync.Mutex
	tokens map[string]ports.AuthClaims
}

func (f *fakeSigner) Sign(claims ports.AuthClaims) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := uuid.NewString()
	f.tokens[token] = claims
	return token, nil
}

func (f *fakeSigner) ParseAndValidate(token string) (ports.AuthClaims, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	claims, ok := f.tokens[token]
	if !ok {
		return ports.AuthClaims{}, domain.ErrUnauthorized
	}
	return claims, nil
}
