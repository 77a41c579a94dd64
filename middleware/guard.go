package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	authcore "github.com/skillhive/authcore"
)

type principalContextKey struct{}

// PrincipalFromContext retrieves the principal that [Guard] injected into
// the request context.
func PrincipalFromContext(ctx context.Context) (*authcore.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*authcore.Principal)
	return p, ok
}

// Guard authenticates every request through the engine and injects the
// resolved principal into the request context. Requests without a valid
// token and live session are rejected before reaching the handler.
func Guard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, authcore.ErrEngineNotReady)
				return
			}

			token, ok := accessToken(r)
			if !ok {
				writeError(w, authcore.ErrUnauthenticated)
				return
			}

			principal, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				writeError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles restricts an already guarded route to the given roles. It
// must run after [Guard]; a missing principal rejects as unauthenticated.
func RequireRoles(engine *authcore.Engine, roles ...authcore.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				writeError(w, authcore.ErrUnauthenticated)
				return
			}

			if err := engine.Authorize(principal, roles...); err != nil {
				writeError(w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func accessToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(authcore.AccessCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}

type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(authcore.StatusForError(err))
	_ = json.NewEncoder(w).Encode(errorBody{Success: false, Message: err.Error()})
}
