package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	authcore "github.com/skillhive/authcore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type stubProvider struct {
	user authcore.User
}

func (s *stubProvider) GetUserByEmail(_ context.Context, email string) (authcore.User, error) {
	if email != s.user.Email {
		return authcore.User{}, authcore.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubProvider) GetUserByID(_ context.Context, userID string) (authcore.User, error) {
	if userID != s.user.ID {
		return authcore.User{}, authcore.ErrUserNotFound
	}
	return s.user, nil
}

func (s *stubProvider) CreateUser(_ context.Context, input authcore.CreateUserInput) (authcore.User, error) {
	return authcore.User{}, authcore.ErrEmailExists
}

func (s *stubProvider) UpdateProfile(_ context.Context, _, _, _ string) (authcore.User, error) {
	return s.user, nil
}

func (s *stubProvider) UpdatePasswordHash(_ context.Context, _, _ string) error { return nil }

func (s *stubProvider) UpdateRole(_ context.Context, _ string, _ authcore.Role) (authcore.User, error) {
	return s.user, nil
}

func (s *stubProvider) DeleteUser(_ context.Context, _ string) error { return nil }

type stubMailer struct{}

func (stubMailer) SendActivationCode(_ context.Context, _, _, _ string) error { return nil }

// newGuardTest builds an engine with one logged-in admin and returns the
// engine, a valid access token and a cleanup func.
func newGuardTest(t *testing.T) (*authcore.Engine, string, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := authcore.DefaultConfig()
	cfg.Token.ActivationSecret = []byte("guard-activation-secret")
	cfg.Token.AccessSecret = []byte("guard-access-secret")
	cfg.Token.RefreshSecret = []byte("guard-refresh-secret")
	cfg.Password.Memory = 8 * 1024
	cfg.Password.Time = 1

	provider := &stubProvider{user: authcore.User{
		ID:    "u-1",
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  authcore.RoleAdmin,
	}}

	engine, err := authcore.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(provider).
		WithMailer(stubMailer{}).
		Build()
	if err != nil {
		rdb.Close()
		mr.Close()
		t.Fatalf("engine build: %v", err)
	}

	// Open a session through the social path so no password hash is needed.
	_, pair, err := engine.SocialLogin(context.Background(), authcore.SocialProfile{
		Name:  "Alice",
		Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	return engine, pair.AccessToken, func() {
		engine.Close()
		rdb.Close()
		mr.Close()
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := PrincipalFromContext(r.Context())
		if !ok {
			http.Error(w, "no principal", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(principal.Email))
	})
}

func TestGuardAcceptsCookie(t *testing.T) {
	engine, token, done := newGuardTest(t)
	defer done()

	handler := Guard(engine)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: authcore.AccessCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "alice@example.com" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestGuardAcceptsBearerFallback(t *testing.T) {
	engine, token, done := newGuardTest(t)
	defer done()

	handler := Guard(engine)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGuardRejectsMissingAndBadTokens(t *testing.T) {
	engine, _, done := newGuardTest(t)
	defer done()

	handler := Guard(engine)(okHandler())

	cases := map[string]func(*http.Request){
		"no token":  func(*http.Request) {},
		"garbage":   func(r *http.Request) { r.Header.Set("Authorization", "Bearer junk") },
		"bad value": func(r *http.Request) { r.AddCookie(&http.Cookie{Name: authcore.AccessCookieName, Value: "junk"}) },
	}
	for name, decorate := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		decorate(req)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"success":false`) {
			t.Fatalf("%s: expected JSON error body, got %q", name, rec.Body.String())
		}
	}
}

func TestRequireRoles(t *testing.T) {
	engine, token, done := newGuardTest(t)
	defer done()

	adminOnly := Guard(engine)(RequireRoles(engine, authcore.RoleAdmin)(okHandler()))
	userOnly := Guard(engine)(RequireRoles(engine, authcore.RoleUser)(okHandler()))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: authcore.AccessCookieName, Value: token})
	rec := httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin route: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/user", nil)
	req.AddCookie(&http.Cookie{Name: authcore.AccessCookieName, Value: token})
	rec = httptest.NewRecorder()
	userOnly.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user-only route: expected 403 for admin principal, got %d", rec.Code)
	}
}

func TestRequireRolesWithoutGuard(t *testing.T) {
	engine, _, done := newGuardTest(t)
	defer done()

	handler := RequireRoles(engine, authcore.RoleAdmin)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a guard, got %d", rec.Code)
	}
}
