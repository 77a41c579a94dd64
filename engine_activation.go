package authcore

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skillhive/authcore/internal"
	"github.com/skillhive/authcore/token"
)

// BeginActivation starts account registration. It verifies that the email is
// free, hashes the password, generates a 4-digit code, emails the code to the
// user and returns a signed activation ticket that binds name, email, hash
// and code together. No account record is created at this stage.
//
// The plaintext password is hashed here and never enters the ticket.
//
// BeginActivation may return an error when input validation, dependency calls, or security checks fail.
// BeginActivation does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) BeginActivation(ctx context.Context, name, email, pass string) (ActivationTicket, error) {
	if e == nil {
		return ActivationTicket{}, ErrEngineNotReady
	}

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" {
		return ActivationTicket{}, fmt.Errorf("%w: name and email required", ErrInvalidInput)
	}

	if _, err := e.userProvider.GetUserByEmail(ctx, email); err == nil {
		e.metricInc(MetricActivationDuplicate)
		e.emitAudit(ctx, auditEventActivationBegin, false, "", email, ErrEmailExists, nil)
		return ActivationTicket{}, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return ActivationTicket{}, err
	}

	hash, err := e.passwordHash.Hash(pass)
	if err != nil {
		e.metricInc(MetricActivationFailure)
		return ActivationTicket{}, fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
	}

	code, err := internal.NewActivationCode()
	if err != nil {
		e.metricInc(MetricActivationFailure)
		return ActivationTicket{}, err
	}

	ticket, err := e.activation.SignActivation(token.ActivationClaims{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Code:         code,
	})
	if err != nil {
		e.metricInc(MetricActivationFailure)
		return ActivationTicket{}, err
	}

	if err := e.mailer.SendActivationCode(ctx, email, name, code); err != nil {
		e.metricInc(MetricActivationFailure)
		e.emitAudit(ctx, auditEventActivationBegin, false, "", email, ErrMailDelivery, nil)
		return ActivationTicket{}, fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	e.metricInc(MetricActivationRequested)
	e.emitAudit(ctx, auditEventActivationBegin, true, "", email, nil, nil)

	return ActivationTicket{
		Token:     ticket,
		ExpiresAt: time.Now().Add(e.activation.TTL()),
	}, nil
}

// ConfirmActivation completes registration. The activation ticket is
// verified, the submitted code is compared against the embedded one in
// constant time and the account is created. No session is opened; the user
// logs in with the password they registered with.
//
// ConfirmActivation may return an error when input validation, dependency calls, or security checks fail.
// ConfirmActivation does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ConfirmActivation(ctx context.Context, activationToken, code string) (User, error) {
	if e == nil {
		return User{}, ErrEngineNotReady
	}

	claims, err := e.activation.VerifyActivation(activationToken)
	if err != nil {
		e.metricInc(MetricActivationFailure)
		mapped := mapTokenError(err)
		e.emitAudit(ctx, auditEventActivationConfirm, false, "", "", mapped, nil)
		return User{}, mapped
	}

	if subtle.ConstantTimeCompare([]byte(claims.Code), []byte(code)) != 1 {
		e.metricInc(MetricActivationFailure)
		e.emitAudit(ctx, auditEventActivationConfirm, false, "", claims.Email, ErrCodeMismatch, nil)
		return User{}, ErrCodeMismatch
	}

	user, err := e.userProvider.CreateUser(ctx, CreateUserInput{
		ID:           internal.NewUserID(),
		Name:         claims.Name,
		Email:        claims.Email,
		PasswordHash: claims.PasswordHash,
		Role:         e.config.Account.DefaultRole,
	})
	if err != nil {
		if errors.Is(err, ErrEmailExists) {
			e.metricInc(MetricActivationDuplicate)
		} else {
			e.metricInc(MetricActivationFailure)
		}
		e.emitAudit(ctx, auditEventActivationConfirm, false, "", claims.Email, err, nil)
		return User{}, err
	}

	e.metricInc(MetricActivationConfirmed)
	e.emitAudit(ctx, auditEventActivationConfirm, true, user.ID, user.Email, nil, nil)

	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// mapTokenError converts codec errors into the public error taxonomy.
func mapTokenError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, token.ErrExpired):
		return fmt.Errorf("%w: %v", ErrTokenExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}
