package authcore

import (
	"context"
	"fmt"
)

// GetUser fetches the full account record for a user.
//
// GetUser may return an error when input validation, dependency calls, or security checks fail.
// GetUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) GetUser(ctx context.Context, userID string) (User, error) {
	if e == nil {
		return User{}, ErrEngineNotReady
	}
	return e.userProvider.GetUserByID(ctx, userID)
}

// UpdateProfile changes a user's name and email and rewrites the session
// snapshot so the change is visible on the next authenticated request.
// Email uniqueness is enforced by the provider.
//
// UpdateProfile may return an error when input validation, dependency calls, or security checks fail.
// UpdateProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) UpdateProfile(ctx context.Context, userID, name, email string) (User, error) {
	if e == nil {
		return User{}, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	if name == "" || email == "" {
		return User{}, fmt.Errorf("%w: name and email required", ErrInvalidInput)
	}

	user, err := e.userProvider.UpdateProfile(ctx, userID, name, email)
	if err != nil {
		e.emitAudit(ctx, auditEventProfileUpdate, false, userID, email, err, nil)
		return User{}, err
	}

	if err := e.savePrincipal(ctx, user); err != nil {
		return User{}, err
	}

	e.metricInc(MetricProfileUpdated)
	e.emitAudit(ctx, auditEventProfileUpdate, true, user.ID, user.Email, nil, nil)

	return user, nil
}

// ChangePassword verifies the current password before storing a hash of the
// new one. The new password must differ from the current one. The session
// entry stays valid and gets a fresh TTL.
//
// ChangePassword may return an error when input validation, dependency calls, or security checks fail.
// ChangePassword does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ChangePassword(ctx context.Context, userID, oldPass, newPass string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	user, err := e.userProvider.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := e.passwordHash.Verify(oldPass, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditEventPasswordChange, false, userID, user.Email, ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	same, err := e.passwordHash.Verify(newPass, user.PasswordHash)
	if err == nil && same {
		return ErrPasswordReuse
	}

	newHash, err := e.passwordHash.Hash(newPass)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPasswordPolicy, err)
	}

	if err := e.userProvider.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		return err
	}

	if err := e.savePrincipal(ctx, user); err != nil {
		return err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChange, true, userID, user.Email, nil, nil)

	return nil
}

// UpdateRole sets a user's role and rewrites the session snapshot, so the
// new role takes effect on the next authenticated request without forcing a
// re-login.
//
// UpdateRole may return an error when input validation, dependency calls, or security checks fail.
// UpdateRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) UpdateRole(ctx context.Context, userID string, role Role) (User, error) {
	if e == nil {
		return User{}, ErrEngineNotReady
	}
	if !role.Valid() {
		return User{}, ErrRoleInvalid
	}

	user, err := e.userProvider.UpdateRole(ctx, userID, role)
	if err != nil {
		e.emitAudit(ctx, auditEventRoleUpdate, false, userID, "", err, nil)
		return User{}, err
	}

	if err := e.savePrincipal(ctx, user); err != nil {
		return User{}, err
	}

	e.metricInc(MetricRoleUpdated)
	e.emitAudit(ctx, auditEventRoleUpdate, true, user.ID, user.Email, nil, func() map[string]string {
		return map[string]string{"role": role.String()}
	})

	return user, nil
}

// DeleteUser removes the account record and its session entry. Outstanding
// tokens stop validating as soon as the session entry is gone.
//
// DeleteUser may return an error when input validation, dependency calls, or security checks fail.
// DeleteUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) DeleteUser(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}

	if err := e.userProvider.DeleteUser(ctx, userID); err != nil {
		e.emitAudit(ctx, auditEventAccountDelete, false, userID, "", err, nil)
		return err
	}

	if err := e.sessionStore.Delete(ctx, userID); err != nil {
		return err
	}

	e.metricInc(MetricAccountDeleted)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventAccountDelete, true, userID, "", nil, nil)

	return nil
}
