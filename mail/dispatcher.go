package mail

import "context"

// Dispatcher defines a public type used by authcore APIs.
//
// Dispatcher instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Dispatcher interface {
	// SendActivationCode delivers the 4-digit activation code to the
	// address being registered. A returned error aborts the activation
	// request; no token reaches the caller.
	SendActivationCode(ctx context.Context, toEmail, name, code string) error
}
