package driving

import "context"

// Scheduler runs scheduled repository syncs in the background.
type Scheduler interface {
	// Start begins running scheduled syncs.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops the scheduler and waits for running syncs.
	Stop() error
}
