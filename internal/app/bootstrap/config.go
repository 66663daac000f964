package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the service.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	JWTPrivateKeyPEM  string
	JWTPublicKeyPEM   string
	JWTKeyID          string
	AllowEphemeralJWT bool

	BcryptCost int

	TokenTTL          time.Duration
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	SessionTimeout    time.Duration
	SessionMaxAge     time.Duration

	CleanupInterval time.Duration
	MigrateOnStart  bool
	MaxDBConns      int32
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Policy struct {
		MaxFailedAttempts     int `yaml:"max_failed_attempts"`
		LockoutMinutes        int `yaml:"lockout_minutes"`
		SessionTimeoutMinutes int `yaml:"session_timeout_minutes"`
		SessionMaxAgeHours    int `yaml:"session_max_age_hours"`
	} `yaml:"policy"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:         "Account-Security-Service",
		HTTPPort:          8080,
		GRPCPort:          9090,
		JWTKeyID:          "account-security-key-1",
		AllowEphemeralJWT: true,
		BcryptCost:        12,
		TokenTTL:          24 * time.Hour,
		MaxFailedAttempts: 5,
		LockoutDuration:   15 * time.Minute,
		SessionTimeout:    30 * time.Minute,
		SessionMaxAge:     24 * time.Hour,
		CleanupInterval:   15 * time.Minute,
		MigrateOnStart:    true,
		MaxDBConns:        20,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Policy.MaxFailedAttempts > 0 {
			cfg.MaxFailedAttempts = f.Policy.MaxFailedAttempts
		}
		if f.Policy.LockoutMinutes > 0 {
			cfg.LockoutDuration = time.Duration(f.Policy.LockoutMinutes) * time.Minute
		}
		if f.Policy.SessionTimeoutMinutes > 0 {
			cfg.SessionTimeout = time.Duration(f.Policy.SessionTimeoutMinutes) * time.Minute
		}
		if f.Policy.SessionMaxAgeHours > 0 {
			cfg.SessionMaxAge = time.Duration(f.Policy.SessionMaxAgeHours) * time.Hour
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.JWTPrivateKeyPEM = envOrDefault("JWT_PRIVATE_KEY_PEM", cfg.JWTPrivateKeyPEM)
	cfg.JWTPublicKeyPEM = envOrDefault("JWT_PUBLIC_KEY_PEM", cfg.JWTPublicKeyPEM)
	cfg.JWTKeyID = envOrDefault("JWT_KEY_ID", cfg.JWTKeyID)
	cfg.AllowEphemeralJWT = envBool("JWT_ALLOW_EPHEMERAL", cfg.AllowEphemeralJWT)
	cfg.MigrateOnStart = envBool("MIGRATE_ON_START", cfg.MigrateOnStart)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.MaxFailedAttempts = envInt("MAX_FAILED_ATTEMPTS", cfg.MaxFailedAttempts)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.TokenTTL = time.Duration(envInt("TOKEN_EXPIRY_HOURS", int(cfg.TokenTTL.Hours()))) * time.Hour
	cfg.LockoutDuration = time.Duration(envInt("ACCOUNT_LOCKOUT_MINUTES", int(cfg.LockoutDuration.Minutes()))) * time.Minute
	cfg.SessionTimeout = time.Duration(envInt("SESSION_TIMEOUT_MINUTES", int(cfg.SessionTimeout.Minutes()))) * time.Minute
	cfg.SessionMaxAge = time.Duration(envInt("SESSION_MAX_AGE_HOURS", int(cfg.SessionMaxAge.Hours()))) * time.Hour
	cfg.CleanupInterval = time.Duration(envInt("CLEANUP_INTERVAL_SECONDS", int(cfg.CleanupInterval.Seconds()))) * time.Second

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if (cfg.JWTPrivateKeyPEM == "" || cfg.JWTPublicKeyPEM == "") && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_PRIVATE_KEY_PEM or JWT_PUBLIC_KEY_PEM")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
