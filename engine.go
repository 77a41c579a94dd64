package authcore

import (
	"context"
	"time"

	internalaudit "github.com/skillhive/authcore/internal/audit"
	"github.com/skillhive/authcore/internal/rate"
	"github.com/skillhive/authcore/mail"
	"github.com/skillhive/authcore/password"
	"github.com/skillhive/authcore/session"
	"github.com/skillhive/authcore/token"
)

// Engine defines a public type used by authcore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config       Config
	sessionStore *session.Store
	rateLimiter  *rate.Limiter
	audit        *internalaudit.Dispatcher
	metrics      *Metrics
	passwordHash *password.Argon2
	activation   *token.Codec
	access       *token.Codec
	refresh      *token.Codec
	userProvider UserProvider
	mailer       mail.Dispatcher
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) sessionLifetime() time.Duration {
	return e.config.Session.TTL
}

func principalFromUser(u User) *session.Principal {
	return &session.Principal{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// savePrincipal rewrites the session entry (value + TTL) for a user.
// Every account mutation that must be visible to the next Authenticate
// funnels through here.
func (e *Engine) savePrincipal(ctx context.Context, u User) error {
	return e.sessionStore.Save(ctx, principalFromUser(u), e.sessionLifetime())
}

// issuePair signs a fresh access+refresh token pair for the subject.
func (e *Engine) issuePair(userID string) (TokenPair, error) {
	access, err := e.access.SignSession(userID)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := e.refresh.SignSession(userID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
