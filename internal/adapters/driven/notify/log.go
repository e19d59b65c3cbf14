package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/custodia-labs/docsync/internal/core/ports/driven"
	"github.com/custodia-labs/docsync/internal/logger"
)

// Verify interface compliance.
var _ driven.Notifier = (*Log)(nil)

// Log writes events to the process log. It is the channel used when no
// webhook is configured.
type Log struct {
	log zerolog.Logger
}

// NewLog creates a log channel.
func NewLog() *Log {
	return &Log{log: logger.With("channel", "log")}
}

// NewLogWith creates a log channel writing to l.
func NewLogWith(l zerolog.Logger) *Log {
	return &Log{log: l}
}

// NotifyReleasePublished logs the release.
func (n *Log) NotifyReleasePublished(_ context.Context, event driven.ReleaseEvent) (driven.NotifyResult, error) {
	n.log.Info().
		Str("event", EventReleasePublished).
		Str("repository", event.Repository.Slug).
		Str("version", event.Release.Version).
		Strs("teams", event.Release.Teams).
		Str("title", event.Title).
		Msg("release published")
	return driven.NotifyResult{Sent: 1}, nil
}

// NotifyContentUpdate logs a summary of the changes.
func (n *Log) NotifyContentUpdate(_ context.Context, event driven.ContentUpdateEvent) (driven.NotifyResult, error) {
	counts := map[string]int{}
	for _, c := range event.Changes {
		counts[string(c.ChangeType)]++
	}
	n.log.Info().
		Str("event", EventContentUpdated).
		Str("repository", event.Repository.Slug).
		Str("sync_log", event.SyncLogID).
		Int("added", counts["added"]).
		Int("modified", counts["modified"]).
		Int("deleted", counts["deleted"]).
		Msg("content updated")
	return driven.NotifyResult{Sent: 1}, nil
}
