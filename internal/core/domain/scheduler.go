package domain

import "time"

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// TickInterval defines how often due repositories are checked.
	TickInterval time.Duration

	// LockTTL bounds how long a sync lease is honoured if a run dies
	// without releasing it.
	LockTTL time.Duration
}

// DefaultSchedulerConfig returns sensible defaults for the scheduler.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:      true,
		TickInterval: time.Minute,
		LockTTL:      30 * time.Minute,
	}
}
