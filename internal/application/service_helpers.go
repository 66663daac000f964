package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusforge/account-security-service/internal/domain"
)

const maxUserAgentLen = 255

// sessionExpiryWarning is the remaining-inactivity threshold under which
// GetSessionInfo flags the session as about to expire.
const sessionExpiryWarning = 5 * time.Minute

func appLogger() *slog.Logger {
	return slog.Default().With(
		"service", "Account-Security-Service",
		"module", "application",
		"layer", "application",
	)
}

// schemaReady gates every operation on the one-shot availability probe.
func (s *Service) schemaReady(ctx context.Context) bool {
	return s.probe != nil && s.probe.SecuritySchemaReady(ctx)
}

// logStorageDegradation records a swallowed storage error. The contract for
// all lockout and session operations is total: infrastructure trouble is
// logged here and converted to the most permissive outcome at the call site.
func logStorageDegradation(ctx context.Context, operation string, err error) {
	appLogger().WarnContext(ctx, "storage unavailable, degrading to permissive default",
		"operation", operation,
		"outcome", "degraded",
		"error", err,
	)
}

// logSecurityEvent appends one audit record, best effort. A lost audit entry
// is acceptable; a failed lock or expiry decision is not, so this never
// reports failure to the caller.
func (s *Service) logSecurityEvent(ctx context.Context, eventType string, userID *uuid.UUID, ip, userAgent string, details map[string]any) {
	if !s.schemaReady(ctx) {
		return
	}
	err := s.events.Insert(ctx, domain.SecurityEvent{
		EventType: eventType,
		UserID:    userID,
		IPAddress: ip,
		UserAgent: truncateUserAgent(userAgent),
		Details:   details,
		CreatedAt: s.nowFn(),
	})
	if err != nil {
		appLogger().WarnContext(ctx, "failed to persist security event",
			"operation", "log_security_event",
			"outcome", "failure",
			"event_type", eventType,
			"error", err,
		)
	}
}

// hashToken stores one-way token fingerprints instead of raw secrets.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	return hex.EncodeToString(sum[:])
}

func truncateUserAgent(ua string) string {
	if len(ua) > maxUserAgentLen {
		return ua[:maxUserAgentLen]
	}
	return ua
}

// remainingMinutes rounds up so a lock with ten seconds left still reads as
// one minute rather than zero.
func remainingMinutes(now, until time.Time) int {
	d := until.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}

// normalizeEmail canonicalizes and validates email format before lookup.
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	return trimmed, nil
}
