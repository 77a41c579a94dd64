package authcore

import (
	"context"
	"errors"
	"time"

	internalaudit "github.com/skillhive/authcore/internal/audit"
)

// Audit event types emitted by the engine.
const (
	auditEventActivationBegin   = "activation_begin"
	auditEventActivationConfirm = "activation_confirm"
	auditEventLogin             = "login"
	auditEventSocialLogin       = "social_login"
	auditEventLogout            = "logout"
	auditEventRefresh           = "refresh"
	auditEventProfileUpdate     = "profile_update"
	auditEventPasswordChange    = "password_change"
	auditEventRoleUpdate        = "role_update"
	auditEventAccountDelete     = "account_delete"
)

// AuditErrorCode maps an engine error to a short stable code for audit
// records. Unknown errors map to "internal".
//
// AuditErrorCode does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func AuditErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrEmailExists):
		return "email_exists"
	case errors.Is(err, ErrCodeMismatch):
		return "code_mismatch"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, ErrSessionNotFound):
		return "session_not_found"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrRoleInvalid):
		return "role_invalid"
	case errors.Is(err, ErrLoginRateLimited):
		return "login_rate_limited"
	case errors.Is(err, ErrRefreshRateLimited):
		return "refresh_rate_limited"
	case errors.Is(err, ErrPasswordPolicy):
		return "password_policy"
	case errors.Is(err, ErrPasswordReuse):
		return "password_reuse"
	case errors.Is(err, ErrMailDelivery):
		return "mail_delivery"
	default:
		return "internal"
	}
}

// emitAudit builds and dispatches one audit event. The metadata builder is
// only invoked when auditing is enabled, so callers can defer map allocation.
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID, email string, err error, metadata func() map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Error:     AuditErrorCode(err),
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
