package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campusforge/account-security-service/internal/domain"
)

type accountSecurityRepository struct {
	db *gorm.DB
}

func (r *accountSecurityRepository) GetLockState(ctx context.Context, userID uuid.UUID) (int, *time.Time, error) {
	var rec userModel
	err := r.db.WithContext(ctx).
		Select("failed_login_attempts", "locked_until").
		Where("user_id = ?", userID).
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil, domain.ErrNotFound
		}
		return 0, nil, err
	}
	return rec.FailedLoginAttempts, rec.LockedUntil, nil
}

// IncrementFailedAttempts bumps the counter in one statement and re-reads the
// stored value. The increment happens in the database so concurrent failures
// race only within the storage engine, not across application round trips.
func (r *accountSecurityRepository) IncrementFailedAttempts(ctx context.Context, userID uuid.UUID) (int, error) {
	res := r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Update("failed_login_attempts", gorm.Expr("failed_login_attempts + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, domain.ErrNotFound
	}

	var rec userModel
	err := r.db.WithContext(ctx).
		Select("failed_login_attempts").
		Where("user_id = ?", userID).
		Take(&rec).Error
	if err != nil {
		return 0, err
	}
	return rec.FailedLoginAttempts, nil
}

func (r *accountSecurityRepository) SetLock(ctx context.Context, userID uuid.UUID, lockedUntil time.Time) error {
	return r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Update("locked_until", lockedUntil).Error
}

// ClearLock removes the lock and resets the counter together; lock expiry and
// counter reset are one combined transition.
func (r *accountSecurityRepository) ClearLock(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"locked_until":          nil,
			"failed_login_attempts": 0,
		}).Error
}

func (r *accountSecurityRepository) RecordSuccess(ctx context.Context, userID uuid.UUID, loginAt time.Time, ip string) error {
	return r.db.WithContext(ctx).
		Model(&userModel{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"failed_login_attempts": 0,
			"locked_until":          nil,
			"last_login_at":         loginAt,
			"last_login_ip":         nullableString(ip),
		}).Error
}
