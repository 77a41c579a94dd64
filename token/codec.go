package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Class defines a public type used by authcore APIs.
//
// Class instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Class string

const (
	// ClassActivation is an exported constant or variable used by the authentication engine.
	ClassActivation Class = "activation"
	// ClassAccess is an exported constant or variable used by the authentication engine.
	ClassAccess Class = "access"
	// ClassRefresh is an exported constant or variable used by the authentication engine.
	ClassRefresh Class = "refresh"
)

var (
	// ErrExpired is an exported constant or variable used by the authentication engine.
	ErrExpired = errors.New("token expired")
	// ErrInvalid is an exported constant or variable used by the authentication engine.
	ErrInvalid = errors.New("token invalid")
)

// Config defines a public type used by authcore APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Class  Class
	Secret []byte
	TTL    time.Duration
	Issuer string
	Leeway time.Duration
}

// Codec defines a public type used by authcore APIs.
//
// Codec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Codec struct {
	config Config
}

// ActivationClaims defines a public type used by authcore APIs.
//
// ActivationClaims instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ActivationClaims struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"pwh"`
	Code         string `json:"code"`
	Class        Class  `json:"cls"`
	jwt.RegisteredClaims
}

type sessionClaims struct {
	Class Class `json:"cls"`
	jwt.RegisteredClaims
}

// NewCodec describes the newcodec operation and its observable behavior.
//
// NewCodec may return an error when input validation, dependency calls, or security checks fail.
// NewCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCodec(cfg Config) (*Codec, error) {
	switch cfg.Class {
	case ClassActivation, ClassAccess, ClassRefresh:
	default:
		return nil, errors.New("unsupported token class")
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("hs256 requires a secret")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Codec{config: cfg}, nil
}

// Class describes the class operation and its observable behavior.
//
// Class does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) Class() Class {
	return c.config.Class
}

// TTL describes the ttl operation and its observable behavior.
//
// TTL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) TTL() time.Duration {
	return c.config.TTL
}

// SignSession describes the signsession operation and its observable behavior.
//
// SignSession may return an error when input validation, dependency calls, or security checks fail.
// SignSession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) SignSession(subjectID string) (string, error) {
	if c.config.Class == ClassActivation {
		return "", errors.New("activation codec cannot sign session tokens")
	}
	if subjectID == "" {
		return "", errors.New("empty subject")
	}

	now := time.Now()
	claims := sessionClaims{
		Class: c.config.Class,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    c.config.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// VerifySession describes the verifysession operation and its observable behavior.
//
// VerifySession may return an error when input validation, dependency calls, or security checks fail.
// VerifySession does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) VerifySession(tokenStr string) (string, error) {
	claims := &sessionClaims{}
	if err := c.parse(tokenStr, claims); err != nil {
		return "", err
	}
	if claims.Class != c.config.Class {
		return "", fmt.Errorf("%w: class mismatch", ErrInvalid)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalid)
	}
	return claims.Subject, nil
}

// SignActivation describes the signactivation operation and its observable behavior.
//
// SignActivation may return an error when input validation, dependency calls, or security checks fail.
// SignActivation does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) SignActivation(claims ActivationClaims) (string, error) {
	if c.config.Class != ClassActivation {
		return "", errors.New("codec cannot sign activation tokens")
	}

	now := time.Now()
	claims.Class = ClassActivation
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(c.config.TTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    c.config.Issuer,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.config.Secret)
}

// VerifyActivation describes the verifyactivation operation and its observable behavior.
//
// VerifyActivation may return an error when input validation, dependency calls, or security checks fail.
// VerifyActivation does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Codec) VerifyActivation(tokenStr string) (*ActivationClaims, error) {
	if c.config.Class != ClassActivation {
		return nil, errors.New("codec cannot verify activation tokens")
	}

	claims := &ActivationClaims{}
	if err := c.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Class != ClassActivation {
		return nil, fmt.Errorf("%w: class mismatch", ErrInvalid)
	}
	if claims.Email == "" || claims.Code == "" {
		return nil, fmt.Errorf("%w: incomplete activation payload", ErrInvalid)
	}
	return claims, nil
}

func (c *Codec) parse(tokenStr string, claims jwt.Claims) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.config.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %v", ErrExpired, err)
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !token.Valid {
		return ErrInvalid
	}
	return nil
}
