package authcore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/skillhive/authcore/internal/rate"
)

// Refresh exchanges a valid refresh token for a fresh token pair. The
// session entry is the validity authority: a cryptographically valid token
// whose session was deleted or expired fails with [ErrSessionNotFound].
// A successful refresh resets the session TTL, so active users stay logged
// in past the entry's original expiry.
//
// Refresh tokens are not single-use. An unexpired predecessor token still
// refreshes as long as the session entry exists; revocation happens through
// [Engine.Logout], not through rotation bookkeeping.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if e == nil {
		return TokenPair{}, ErrEngineNotReady
	}

	userID, err := e.refresh.VerifySession(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		mapped := mapTokenError(err)
		e.emitAudit(ctx, auditEventRefresh, false, "", "", mapped, nil)
		return TokenPair{}, mapped
	}

	if err := e.rateLimiter.CheckRefresh(ctx, userID); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(MetricRefreshRateLimited)
			e.emitAudit(ctx, auditEventRefresh, false, userID, "", ErrRefreshRateLimited, nil)
			return TokenPair{}, ErrRefreshRateLimited
		}
		return TokenPair{}, err
	}

	principal, err := e.sessionStore.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefresh, false, userID, "", ErrSessionNotFound, nil)
			return TokenPair{}, ErrSessionNotFound
		}
		return TokenPair{}, err
	}

	// Sliding expiration: re-persist the snapshot with a full TTL.
	if err := e.sessionStore.Save(ctx, principal, e.sessionLifetime()); err != nil {
		return TokenPair{}, err
	}

	pair, err := e.issuePair(userID)
	if err != nil {
		return TokenPair{}, err
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefresh, true, userID, principal.Email, nil, nil)

	return pair, nil
}
