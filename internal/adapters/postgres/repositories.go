package postgres

import (
	"gorm.io/gorm"

	"github.com/campusforge/account-security-service/internal/ports"
)

type Repositories struct {
	Users    ports.UserRepository
	Accounts ports.AccountSecurityRepository
	Sessions ports.SessionRepository
	Events   ports.SecurityEventRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:    &userRepository{db: db},
		Accounts: &accountSecurityRepository{db: db},
		Sessions: &sessionRepository{db: db},
		Events:   &securityEventRepository{db: db},
	}
}
