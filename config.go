package authcore

import (
	"bytes"
	"errors"
	"net/http"
	"time"
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Token    TokenConfig
	Session  SessionConfig
	Password PasswordConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Security SecurityConfig
	Redis    RedisConfig
	Mail     MailConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by authcore APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	ActivationSecret []byte
	AccessSecret     []byte
	RefreshSecret    []byte
	ActivationTTL    time.Duration
	AccessTTL        time.Duration
	RefreshTTL       time.Duration
	Issuer           string
	Leeway           time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by authcore APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig defines a public type used by authcore APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	Memory         uint32 // in KB
	Time           uint32
	Parallelism    uint8
	SaltLength     uint32
	KeyLength      uint32
	UpgradeOnLogin bool
}

// AccountConfig defines a public type used by authcore APIs.
//
// AccountConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountConfig struct {
	DefaultRole Role
}

// AuditConfig defines a public type used by authcore APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authcore APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig defines a public type used by authcore APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	ProductionMode          bool
	EnableIPThrottle        bool
	EnableRefreshThrottle   bool
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
	RequireSecureCookies    bool
	SameSitePolicy          http.SameSite
	CookiePath              string
	CookieDomain            string
}

/*
====================================
REDIS CONFIG
====================================
*/

// RedisConfig defines a public type used by authcore APIs.
//
// RedisConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MailConfig defines a public type used by authcore APIs.
//
// MailConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MailConfig struct {
	ResendAPIKey string
	FromEmail    string
	AppName      string
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the development-oriented default configuration.
// Secrets are intentionally absent; [Config.Validate] rejects the result
// until the caller supplies them.
//
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			ActivationTTL: 5 * time.Minute,
			AccessTTL:     5 * time.Minute,
			RefreshTTL:    3 * 24 * time.Hour,
			Leeway:        0,
		},
		Session: SessionConfig{
			RedisPrefix: "sess",
			TTL:         7 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:         65536,
			Time:           3,
			Parallelism:    2,
			SaltLength:     16,
			KeyLength:      32,
			UpgradeOnLogin: true,
		},
		Account: AccountConfig{
			DefaultRole: RoleUser,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Security: SecurityConfig{
			ProductionMode:          false,
			EnableIPThrottle:        true,
			EnableRefreshThrottle:   true,
			MaxLoginAttempts:        5,
			LoginCooldownDuration:   15 * time.Minute,
			MaxRefreshAttempts:      20,
			RefreshCooldownDuration: 1 * time.Minute,
			RequireSecureCookies:    true,
			SameSitePolicy:          http.SameSiteLaxMode,
			CookiePath:              "/",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Mail: MailConfig{
			AppName: "authcore",
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.ActivationSecret = cloneBytes(cfg.Token.ActivationSecret)
	out.Token.AccessSecret = cloneBytes(cfg.Token.AccessSecret)
	out.Token.RefreshSecret = cloneBytes(cfg.Token.RefreshSecret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Token
	if len(c.Token.ActivationSecret) == 0 {
		return errors.New("Token ActivationSecret is required")
	}
	if len(c.Token.AccessSecret) == 0 {
		return errors.New("Token AccessSecret is required")
	}
	if len(c.Token.RefreshSecret) == 0 {
		return errors.New("Token RefreshSecret is required")
	}
	if bytes.Equal(c.Token.ActivationSecret, c.Token.AccessSecret) ||
		bytes.Equal(c.Token.ActivationSecret, c.Token.RefreshSecret) ||
		bytes.Equal(c.Token.AccessSecret, c.Token.RefreshSecret) {
		return errors.New("token classes must not share secrets")
	}
	if c.Token.ActivationTTL <= 0 {
		return errors.New("Token ActivationTTL must be > 0")
	}
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be > 0")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("Token RefreshTTL must be > 0")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
		return errors.New("Token Leeway must be between 0 and 2m")
	}

	// Session
	if c.Session.RedisPrefix == "" {
		return errors.New("Session RedisPrefix is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("Session TTL must be > 0")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}

	// Account
	if !c.Account.DefaultRole.Valid() {
		return errors.New("Account DefaultRole must be a known role")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	// Security
	if c.Security.MaxLoginAttempts <= 0 {
		return errors.New("MaxLoginAttempts must be > 0")
	}
	if c.Security.LoginCooldownDuration <= 0 {
		return errors.New("LoginCooldownDuration must be > 0")
	}
	if c.Security.EnableRefreshThrottle {
		if c.Security.MaxRefreshAttempts <= 0 {
			return errors.New("MaxRefreshAttempts must be > 0 when refresh throttle is enabled")
		}
		if c.Security.RefreshCooldownDuration <= 0 {
			return errors.New("RefreshCooldownDuration must be > 0 when refresh throttle is enabled")
		}
	}

	if c.Security.ProductionMode {
		if len(c.Token.ActivationSecret) < 32 ||
			len(c.Token.AccessSecret) < 32 ||
			len(c.Token.RefreshSecret) < 32 {
			return errors.New("ProductionMode requires token secret length >= 256 bits")
		}
		if !c.Security.RequireSecureCookies {
			return errors.New("ProductionMode requires RequireSecureCookies")
		}
		if c.Token.AccessTTL > 15*time.Minute {
			return errors.New("ProductionMode requires Token AccessTTL <= 15m")
		}
		if c.Token.RefreshTTL > 30*24*time.Hour {
			return errors.New("ProductionMode requires Token RefreshTTL <= 30d")
		}
		if c.Password.Memory < 64*1024 {
			return errors.New("ProductionMode requires Password Memory >= 65536 KB")
		}
		if c.Password.Time < 2 {
			return errors.New("ProductionMode requires Password Time >= 2")
		}
		if c.Password.KeyLength < 32 {
			return errors.New("ProductionMode requires Password KeyLength >= 32")
		}
	}

	return nil
}
