package postgres

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"github.com/campusforge/account-security-service/internal/domain"
)

type securityEventRepository struct {
	db *gorm.DB
}

func (r *securityEventRepository) Insert(ctx context.Context, event domain.SecurityEvent) error {
	var details *string
	if len(event.Details) > 0 {
		raw, err := json.Marshal(event.Details)
		if err == nil {
			s := string(raw)
			details = &s
		}
	}
	rec := securityEventModel{
		EventType: event.EventType,
		UserID:    event.UserID,
		IPAddress: nullableString(event.IPAddress),
		UserAgent: event.UserAgent,
		Details:   details,
		CreatedAt: event.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}
