package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Authenticate resolves an access token to the cached [Principal]. Both a
// failed token verification and a missing session entry fail with
// [ErrUnauthenticated]; the session lookup is never skipped, so logout takes
// effect before the access token expires.
//
//	Performance: one token parse plus one Redis GET.
//
// Authenticate may return an error when input validation, dependency calls, or security checks fail.
// Authenticate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}

	userID, err := e.access.VerifySession(accessToken)
	if err != nil {
		e.metricInc(MetricAuthenticateFailure)
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	principal, err := e.sessionStore.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			e.metricInc(MetricAuthenticateFailure)
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, ErrSessionNotFound)
		}
		return nil, err
	}

	e.metricInc(MetricAuthenticateSuccess)
	return principal, nil
}

// Authorize checks a principal against a role allowlist. An empty allowlist
// admits any authenticated principal.
//
// Authorize may return an error when input validation, dependency calls, or security checks fail.
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Authorize(principal *Principal, roles ...Role) error {
	if principal == nil {
		return ErrUnauthenticated
	}
	if len(roles) == 0 {
		return nil
	}

	for _, role := range roles {
		if principal.Role == string(role) {
			return nil
		}
	}

	e.metricInc(MetricForbidden)
	return ErrForbidden
}
