package notify

import (
	"context"
	"errors"

	"github.com/custodia-labs/docsync/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.Notifier = (Multi)(nil)

// Multi delivers every event to all channels. A failing channel does not
// stop the others; errors are joined.
type Multi []driven.Notifier

// NotifyReleasePublished fans the release out.
func (m Multi) NotifyReleasePublished(ctx context.Context, event driven.ReleaseEvent) (driven.NotifyResult, error) {
	return m.each(func(n driven.Notifier) (driven.NotifyResult, error) {
		return n.NotifyReleasePublished(ctx, event)
	})
}

// NotifyContentUpdate fans the content update out.
func (m Multi) NotifyContentUpdate(ctx context.Context, event driven.ContentUpdateEvent) (driven.NotifyResult, error) {
	return m.each(func(n driven.Notifier) (driven.NotifyResult, error) {
		return n.NotifyContentUpdate(ctx, event)
	})
}

func (m Multi) each(fn func(driven.Notifier) (driven.NotifyResult, error)) (driven.NotifyResult, error) {
	var total driven.NotifyResult
	var errs []error
	for _, n := range m {
		res, err := fn(n)
		total.Sent += res.Sent
		total.Failed += res.Failed
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}
