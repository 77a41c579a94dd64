package authcore

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidInput is an exported constant or variable used by the authentication engine.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailExists is an exported constant or variable used by the authentication engine.
	ErrEmailExists = errors.New("email already exists")
	// ErrCodeMismatch is an exported constant or variable used by the authentication engine.
	ErrCodeMismatch = errors.New("activation code mismatch")
	// ErrTokenInvalid is an exported constant or variable used by the authentication engine.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is an exported constant or variable used by the authentication engine.
	ErrTokenExpired = errors.New("token expired")
	// ErrSessionNotFound is an exported constant or variable used by the authentication engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnauthenticated is an exported constant or variable used by the authentication engine.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is an exported constant or variable used by the authentication engine.
	ErrForbidden = errors.New("forbidden")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleInvalid is an exported constant or variable used by the authentication engine.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrLoginRateLimited is an exported constant or variable used by the authentication engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrRefreshRateLimited is an exported constant or variable used by the authentication engine.
	ErrRefreshRateLimited = errors.New("refresh rate limited")
	// ErrPasswordPolicy is an exported constant or variable used by the authentication engine.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is an exported constant or variable used by the authentication engine.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrMailDelivery is an exported constant or variable used by the authentication engine.
	ErrMailDelivery = errors.New("activation mail delivery failed")
	// ErrEngineNotReady is an exported constant or variable used by the authentication engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// StatusForError maps engine errors to the HTTP status codes of the API
// boundary contract. Unknown errors map to 500.
func StatusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrLoginRateLimited), errors.Is(err, ErrRefreshRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrCodeMismatch),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrUnauthenticated),
		errors.Is(err, ErrRoleInvalid),
		errors.Is(err, ErrPasswordPolicy),
		errors.Is(err, ErrPasswordReuse):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
