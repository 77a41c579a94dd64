package session

import "time"

// Principal defines a public type used by authcore APIs.
//
// Principal instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Principal struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
