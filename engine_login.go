package authcore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/skillhive/authcore/internal"
	"github.com/skillhive/authcore/internal/rate"
)

// Login authenticates an email/password pair, opens a session and issues a
// token pair. Missing accounts and wrong passwords are indistinguishable to
// the caller.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, email, pass string) (User, TokenPair, error) {
	if e == nil {
		return User{}, TokenPair{}, ErrEngineNotReady
	}

	email = normalizeEmail(email)
	ip := clientIPFromContext(ctx)

	if err := e.rateLimiter.CheckLogin(ctx, email, ip); err != nil {
		if errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(MetricLoginRateLimited)
			e.emitAudit(ctx, auditEventLogin, false, "", email, ErrLoginRateLimited, nil)
			return User{}, TokenPair{}, ErrLoginRateLimited
		}
		return User{}, TokenPair{}, err
	}

	user, err := e.userProvider.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, TokenPair{}, e.failLogin(ctx, email, ip)
		}
		return User{}, TokenPair{}, err
	}

	ok, err := e.passwordHash.Verify(pass, user.PasswordHash)
	if err != nil {
		return User{}, TokenPair{}, err
	}
	if !ok {
		return User{}, TokenPair{}, e.failLogin(ctx, email, ip)
	}

	if e.config.Password.UpgradeOnLogin {
		e.maybeUpgradeHash(ctx, &user, pass)
	}

	if err := e.savePrincipal(ctx, user); err != nil {
		return User{}, TokenPair{}, err
	}

	pair, err := e.issuePair(user.ID)
	if err != nil {
		return User{}, TokenPair{}, err
	}

	if err := e.rateLimiter.ResetLogin(ctx, email, ip); err != nil {
		log.Print("authcore: login limiter reset failed: ", err)
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventLogin, true, user.ID, user.Email, nil, nil)

	return user, pair, nil
}

// failLogin records one failed attempt and returns the uniform credential
// error. Limiter failures here are best-effort only.
func (e *Engine) failLogin(ctx context.Context, email, ip string) error {
	if err := e.rateLimiter.IncrementLogin(ctx, email, ip); err != nil && !errors.Is(err, rate.ErrRateLimited) {
		log.Print("authcore: login limiter increment failed: ", err)
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLogin, false, "", email, ErrInvalidCredentials, nil)
	return ErrInvalidCredentials
}

// maybeUpgradeHash rehashes the password with the current cost parameters
// when the stored hash was produced with weaker ones. Failure never blocks
// the login.
func (e *Engine) maybeUpgradeHash(ctx context.Context, user *User, pass string) {
	needs, err := e.passwordHash.NeedsUpgrade(user.PasswordHash)
	if err != nil || !needs {
		return
	}

	newHash, err := e.passwordHash.Hash(pass)
	if err != nil {
		log.Print("authcore: password rehash failed: ", err)
		return
	}
	if err := e.userProvider.UpdatePasswordHash(ctx, user.ID, newHash); err != nil {
		log.Print("authcore: password rehash persist failed: ", err)
		return
	}
	user.PasswordHash = newHash
}

// SocialLogin finds or creates an account for an externally verified
// identity and opens a session. The caller's OAuth layer has already
// proven ownership of the email; no credential is checked here.
//
// SocialLogin may return an error when input validation, dependency calls, or security checks fail.
// SocialLogin does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SocialLogin(ctx context.Context, profile SocialProfile) (User, TokenPair, error) {
	if e == nil {
		return User{}, TokenPair{}, ErrEngineNotReady
	}

	email := normalizeEmail(profile.Email)
	if email == "" {
		return User{}, TokenPair{}, fmt.Errorf("%w: social profile email required", ErrInvalidInput)
	}

	user, err := e.userProvider.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		user, err = e.createSocialUser(ctx, profile, email)
	}
	if err != nil {
		e.emitAudit(ctx, auditEventSocialLogin, false, "", email, err, nil)
		return User{}, TokenPair{}, err
	}

	if err := e.savePrincipal(ctx, user); err != nil {
		return User{}, TokenPair{}, err
	}

	pair, err := e.issuePair(user.ID)
	if err != nil {
		return User{}, TokenPair{}, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSocialLogin, true, user.ID, user.Email, nil, nil)

	return user, pair, nil
}

func (e *Engine) createSocialUser(ctx context.Context, profile SocialProfile, email string) (User, error) {
	// Social accounts get an unguessable placeholder credential so the
	// password login path can never match them.
	placeholder, err := e.passwordHash.Hash(internal.NewUserID())
	if err != nil {
		return User{}, err
	}

	return e.userProvider.CreateUser(ctx, CreateUserInput{
		ID:           internal.NewUserID(),
		Name:         profile.Name,
		Email:        email,
		PasswordHash: placeholder,
		Role:         e.config.Account.DefaultRole,
		AvatarURL:    profile.AvatarURL,
	})
}

// Logout deletes the session entry for the user. All outstanding tokens for
// the user stop validating at that moment. Logging out an already
// logged-out user is not an error.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context, userID string) error {
	if e == nil {
		return ErrEngineNotReady
	}
	if userID == "" {
		return fmt.Errorf("%w: user id required", ErrInvalidInput)
	}

	if err := e.sessionStore.Delete(ctx, userID); err != nil {
		return err
	}

	e.metricInc(MetricLogout)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventLogout, true, userID, "", nil, nil)

	return nil
}
