package ports

import "context"

// Server is a long running service front end
type Server interface {
	// Start serves until Stop is called or the listener fails
	Start() error

	// Stop gracefully shuts the server down
	Stop(ctx context.Context) error
}
