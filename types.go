package authcore

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/skillhive/authcore/internal/audit"
	"github.com/skillhive/authcore/session"
)

// Role defines a public type used by authcore APIs.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role string

const (
	// RoleUser is an exported constant or variable used by the authentication engine.
	RoleUser Role = "user"
	// RoleAdmin is an exported constant or variable used by the authentication engine.
	RoleAdmin Role = "admin"
)

// ParseRole converts a stored role string into a [Role]. Unknown values
// fail with [ErrRoleInvalid].
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", ErrRoleInvalid
	}
}

// Valid reports whether the role is a member of the closed role set.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r Role) String() string {
	return string(r)
}

// User is the full account record returned by [UserProvider]. It carries
// the credential hash and never crosses into a session entry as-is.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	AvatarURL    string
	CreatedAt    time.Time
}

// CreateUserInput is the input for [UserProvider.CreateUser]. The ID is
// minted by the engine before the call.
type CreateUserInput struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	AvatarURL    string
}

// SocialProfile is the externally verified identity passed to
// [Engine.SocialLogin]. The caller's OAuth layer has already proven
// ownership of the email.
type SocialProfile struct {
	Name      string
	Email     string
	AvatarURL string
}

// TokenPair is returned by the issuance paths ([Engine.Login],
// [Engine.SocialLogin], [Engine.Refresh]).
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserProvider is the primary interface that callers must implement to
// integrate authcore with their user database. Implementations return
// [ErrUserNotFound] for missing records and [ErrEmailExists] for unique
// email violations.
type UserProvider interface {
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID string) (User, error)
	CreateUser(ctx context.Context, input CreateUserInput) (User, error)
	UpdateProfile(ctx context.Context, userID, name, email string) (User, error)
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error
	UpdateRole(ctx context.Context, userID string, role Role) (User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// Principal is the cached session view of an account. It is what
// [Engine.Authenticate] returns and what request handlers see.
type Principal = session.Principal

// ActivationTicket is returned by [Engine.BeginActivation]: the signed
// activation token the client must echo back together with the emailed code.
type ActivationTicket struct {
	Token     string
	ExpiresAt time.Time
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
