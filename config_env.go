package authcore

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// FromEnv builds a [Config] from environment variables, loading a .env file
// from the working directory when one exists. The three token secrets are
// required; everything else falls back to [defaultConfig] values.
//
// Recognized variables:
//
//	AUTH_ACTIVATION_SECRET, AUTH_ACCESS_SECRET, AUTH_REFRESH_SECRET (required)
//	AUTH_TOKEN_ISSUER, AUTH_ACTIVATION_TTL, AUTH_ACCESS_TTL, AUTH_REFRESH_TTL
//	AUTH_PRODUCTION, COOKIE_SECURE, COOKIE_DOMAIN
//	SESSION_PREFIX, SESSION_TTL
//	REDIS_ADDR, REDIS_PASSWORD, REDIS_DB
//	RESEND_API_KEY, MAIL_FROM, APP_NAME
func FromEnv() (Config, error) {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg := defaultConfig()

	activation := os.Getenv("AUTH_ACTIVATION_SECRET")
	access := os.Getenv("AUTH_ACCESS_SECRET")
	refresh := os.Getenv("AUTH_REFRESH_SECRET")
	if activation == "" || access == "" || refresh == "" {
		return Config{}, fmt.Errorf("AUTH_ACTIVATION_SECRET, AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must be set")
	}
	cfg.Token.ActivationSecret = []byte(activation)
	cfg.Token.AccessSecret = []byte(access)
	cfg.Token.RefreshSecret = []byte(refresh)

	cfg.Token.Issuer = getEnv("AUTH_TOKEN_ISSUER", cfg.Token.Issuer)

	var err error
	if cfg.Token.ActivationTTL, err = getEnvDuration("AUTH_ACTIVATION_TTL", cfg.Token.ActivationTTL); err != nil {
		return Config{}, err
	}
	if cfg.Token.AccessTTL, err = getEnvDuration("AUTH_ACCESS_TTL", cfg.Token.AccessTTL); err != nil {
		return Config{}, err
	}
	if cfg.Token.RefreshTTL, err = getEnvDuration("AUTH_REFRESH_TTL", cfg.Token.RefreshTTL); err != nil {
		return Config{}, err
	}

	cfg.Session.RedisPrefix = getEnv("SESSION_PREFIX", cfg.Session.RedisPrefix)
	if cfg.Session.TTL, err = getEnvDuration("SESSION_TTL", cfg.Session.TTL); err != nil {
		return Config{}, err
	}

	cfg.Security.ProductionMode = getEnvBool("AUTH_PRODUCTION", cfg.Security.ProductionMode)
	cfg.Security.RequireSecureCookies = getEnvBool("COOKIE_SECURE", cfg.Security.RequireSecureCookies)
	cfg.Security.CookieDomain = getEnv("COOKIE_DOMAIN", cfg.Security.CookieDomain)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	if db := os.Getenv("REDIS_DB"); db != "" {
		n, convErr := strconv.Atoi(db)
		if convErr != nil {
			return Config{}, fmt.Errorf("REDIS_DB must be an integer: %v", convErr)
		}
		cfg.Redis.DB = n
	}

	cfg.Mail.ResendAPIKey = getEnv("RESEND_API_KEY", cfg.Mail.ResendAPIKey)
	cfg.Mail.FromEmail = getEnv("MAIL_FROM", cfg.Mail.FromEmail)
	cfg.Mail.AppName = getEnv("APP_NAME", cfg.Mail.AppName)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 5m, 72h): %v", key, err)
	}
	return d, nil
}
