package authcore

import (
	"errors"

	internalaudit "github.com/skillhive/authcore/internal/audit"
	"github.com/skillhive/authcore/internal/rate"
	"github.com/skillhive/authcore/mail"
	"github.com/skillhive/authcore/password"
	"github.com/skillhive/authcore/session"
	"github.com/skillhive/authcore/token"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by authcore APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	userProvider UserProvider
	mailer       mail.Dispatcher
	auditSink    AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithUserProvider describes the withuserprovider operation and its observable behavior.
//
// WithUserProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithMailer describes the withmailer operation and its observable behavior.
//
// WithMailer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMailer(m mail.Dispatcher) *Builder {
	b.mailer = m
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}
	if b.mailer == nil {
		return nil, errors.New("mail dispatcher required")
	}

	engine := &Engine{
		config:       cloneConfig(cfg),
		sessionStore: session.NewStore(b.redis, cfg.Session.RedisPrefix),
		userProvider: b.userProvider,
		mailer:       b.mailer,
	}

	engine.rateLimiter = rate.New(b.redis, rate.Config{
		EnableIPThrottle:        cfg.Security.EnableIPThrottle,
		EnableRefreshThrottle:   cfg.Security.EnableRefreshThrottle,
		MaxLoginAttempts:        cfg.Security.MaxLoginAttempts,
		LoginCooldownDuration:   cfg.Security.LoginCooldownDuration,
		MaxRefreshAttempts:      cfg.Security.MaxRefreshAttempts,
		RefreshCooldownDuration: cfg.Security.RefreshCooldownDuration,
	})
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	ph, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	engine.passwordHash = ph

	activation, err := token.NewCodec(token.Config{
		Class:  token.ClassActivation,
		Secret: cloneBytes(cfg.Token.ActivationSecret),
		TTL:    cfg.Token.ActivationTTL,
		Issuer: cfg.Token.Issuer,
		Leeway: cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}
	engine.activation = activation

	access, err := token.NewCodec(token.Config{
		Class:  token.ClassAccess,
		Secret: cloneBytes(cfg.Token.AccessSecret),
		TTL:    cfg.Token.AccessTTL,
		Issuer: cfg.Token.Issuer,
		Leeway: cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}
	engine.access = access

	refresh, err := token.NewCodec(token.Config{
		Class:  token.ClassRefresh,
		Secret: cloneBytes(cfg.Token.RefreshSecret),
		TTL:    cfg.Token.RefreshTTL,
		Issuer: cfg.Token.Issuer,
		Leeway: cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}
	engine.refresh = refresh

	b.built = true

	return engine, nil
}
