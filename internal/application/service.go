package application

import (
	"time"

	"github.com/campusforge/account-security-service/internal/ports"
)

type Service struct {
	cfg         Config
	probe       ports.SchemaProbe
	users       ports.UserRepository
	accounts    ports.AccountSecurityRepository
	sessions    ports.SessionRepository
	events      ports.SecurityEventRepository
	hasher      ports.PasswordHasher
	tokenSigner ports.TokenSigner
	nowFn       func() time.Time
}

type Dependencies struct {
	Config      Config
	Probe       ports.SchemaProbe
	Users       ports.UserRepository
	Accounts    ports.AccountSecurityRepository
	Sessions    ports.SessionRepository
	Events      ports.SecurityEventRepository
	Hasher      ports.PasswordHasher
	TokenSigner ports.TokenSigner

	// Now overrides the service clock. Leave nil outside tests.
	Now func() time.Time
}

func NewService(deps Dependencies) *Service {
	nowFn := deps.Now
	if nowFn == nil {
		nowFn = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		cfg:         deps.Config,
		probe:       deps.Probe,
		users:       deps.Users,
		accounts:    deps.Accounts,
		sessions:    deps.Sessions,
		events:      deps.Events,
		hasher:      deps.Hasher,
		tokenSigner: deps.TokenSigner,
		nowFn:       nowFn,
	}
}
