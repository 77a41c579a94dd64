package authcore

import (
	"net/http"
	"time"
)

const (
	// AccessCookieName is an exported constant or variable used by the authentication engine.
	AccessCookieName = "accessToken"
	// RefreshCookieName is an exported constant or variable used by the authentication engine.
	RefreshCookieName = "refreshToken"
)

// SessionCookies renders a token pair as HTTP cookies following the
// configured cookie policy. Max-age matches the token TTLs, so an expired
// cookie and an expired token coincide.
//
// SessionCookies does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) SessionCookies(pair TokenPair) (access, refresh *http.Cookie) {
	access = e.sessionCookie(AccessCookieName, pair.AccessToken, e.config.Token.AccessTTL)
	refresh = e.sessionCookie(RefreshCookieName, pair.RefreshToken, e.config.Token.RefreshTTL)
	return access, refresh
}

// ExpiredSessionCookies renders deletion cookies for both token cookies.
// Handlers set these on logout so browsers drop the stale values.
//
// ExpiredSessionCookies does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ExpiredSessionCookies() (access, refresh *http.Cookie) {
	access = e.sessionCookie(AccessCookieName, "", -time.Second)
	refresh = e.sessionCookie(RefreshCookieName, "", -time.Second)
	return access, refresh
}

func (e *Engine) sessionCookie(name, value string, ttl time.Duration) *http.Cookie {
	maxAge := int(ttl / time.Second)
	if ttl < 0 {
		maxAge = -1
	}

	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     e.config.Security.CookiePath,
		Domain:   e.config.Security.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   e.config.Security.RequireSecureCookies,
		SameSite: e.config.Security.SameSitePolicy,
	}
}
