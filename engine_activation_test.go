package authcore

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestActivationFullFlow(t *testing.T) {
	env, done := newEngineTest(t, nil)
	defer done()
	ctx := context.Background()

	ticket, err := env.engine.BeginActivation(ctx, "Alice", "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("begin activation: %v", err)
	}
	if ticket.Token == "" {
		t.Fatal("expected a ticket token")
	}
	if !ticket.ExpiresAt.After(time.Now()) {
		t.Fatalf("ticket already expired: %v", ticket.ExpiresAt)
	}

	code := env.mailer.lastCode(t)
	if len(code) != 4 {
		t.Fatalf("expected 4-digit code, got %q", code)
	}

	user, err := env.engine.ConfirmActivation(ctx, ticket.Token, code)
	if err != nil {
		t.Fatalf("confirm activation: %v", err)
	}
	if user.Email != "alice@example.com" || user.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Role != RoleUser {
		t.Fatalf("expected default role %q, got %q", RoleUser, user.Role)
	}

	// Confirmation creates the account but opens no session.
	if env.mr.Exists("sess:" + user.ID) {
		t.Fatal("confirm must not open a session")
	}

	// The account logs in with the original password.
	env.login(t, "alice@example.com", "correct-horse")
}

func TestBeginActivationRejectsExistingEmail(t *testing.T) {
	env, done := newEngineTest(t, nil)
	defer done()

	env.seedUser(t, "taken@example.com", "correct-horse", RoleUser)

	_, err := env.engine.BeginActivation(context.Background(), "Bob", "taken@example.com", "password1")
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestBeginActivationMailFailureAborts(t *testing.T) {
	env, done := newEngineTest(t, nil)
	defer done()

	env.mailer.sendErr = errors.New("smtp down")

	_, err := env.engine.BeginActivation(context.Background(), "Alice", "alice@example.com", "correct-horse")
	if !errors.Is(err, ErrMailDelivery) {
		t.Fatalf("expected ErrMailDelivery, got %v", err)
	}
}

func TestBeginActivationTicketNeverCarriesPlaintext(t *testing.T) {
	env, done := newEngineTest(t, nil)
	defer done()

	const pass = "correct-horse-battery"
	ticket, err := env.engine.BeginActivation(context.Background(), "Alice", "alice@example.com", pass)
	if err != nil {
		t.Fatalf("begin activation: %v", err)
	}

	parts := strings.Split(ticket.Token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a JWT, got %q", ticket.Token)
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if strings.Contains(string(payload), pass) {
		t.Fatal("ticket payload contains the plaintext password")
	}
	if !strings.Contains(string(payload), "argon2id") {
		t.Fatal("ticket payload should carry the password hash")
	}
}

func TestConfirmActivationWrongCode(t *testing.T) {
	env, done := newEngineTest(t, nil)
	defer done()
	ctx := context.Background()

	ticket, err := env.engine.BeginActivation(ctx, "Alice", "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("begin activation: %v", err)
	}

	code := env.mailer.lastCode(t)
	wrong := "0000"
	if wrong == code {
		wrong = "0001"
	}

	_, err = env.engine.ConfirmActivation(ctx, ticket.Token, wrong)
	if !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}
	if env.provider.createCalls != 0 {
		t.Fatal("no account should be created on code mismatch")
	}
}

func TestConfirmActivationTamperedToken(t *testing.T) {
	env, done := newEngineTest(t, nil)
	defer done()
	ctx := context.Background()

	ticket, err := env.engine.BeginActivation(ctx, "Alice", "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("begin activation: %v", err)
	}

	tampered := ticket.Token[:len(ticket.Token)-2] + "xx"
	_, err = env.engine.ConfirmActivation(ctx, tampered, env.mailer.lastCode(t))
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestConfirmActivationExpiredTicket(t *testing.T) {
	env, done := newEngineTest(t, func(cfg *Config) {
		cfg.Token.ActivationTTL = time.Nanosecond
	})
	defer done()
	ctx := context.Background()

	ticket, err := env.engine.BeginActivation(ctx, "Alice", "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("begin activation: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, err = env.engine.ConfirmActivation(ctx, ticket.Token, env.mailer.lastCode(t))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestConfirmActivationDoubleConfirm(t *testing.T) {
	env, done := newEngineTest(t, nil)
	defer done()
	ctx := context.Background()

	ticket, err := env.engine.BeginActivation(ctx, "Alice", "alice@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("begin activation: %v", err)
	}
	code := env.mailer.lastCode(t)

	if _, err := env.engine.ConfirmActivation(ctx, ticket.Token, code); err != nil {
		t.Fatalf("first confirm: %v", err)
	}

	_, err = env.engine.ConfirmActivation(ctx, ticket.Token, code)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists on replay, got %v", err)
	}
}

func TestBeginActivationNormalizesEmail(t *testing.T) {
	env, done := newEngineTest(t, nil)
	defer done()
	ctx := context.Background()

	ticket, err := env.engine.BeginActivation(ctx, "Alice", "  ALICE@Example.COM ", "correct-horse")
	if err != nil {
		t.Fatalf("begin activation: %v", err)
	}

	user, err := env.engine.ConfirmActivation(ctx, ticket.Token, env.mailer.lastCode(t))
	if err != nil {
		t.Fatalf("confirm activation: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
}

func TestBeginActivationRejectsShortPassword(t *testing.T) {
	env, done := newEngineTest(t, nil)
	defer done()

	_, err := env.engine.BeginActivation(context.Background(), "Alice", "alice@example.com", "abc")
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("expected ErrPasswordPolicy, got %v", err)
	}
}
