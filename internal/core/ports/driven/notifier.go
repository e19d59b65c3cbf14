package driven

import (
	"context"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// ReleaseEvent describes a newly published release.
type ReleaseEvent struct {
	Repository domain.Repository
	Release    domain.Release
	Title      string
}

// ContentUpdateEvent summarises the content changes of one sync run.
type ContentUpdateEvent struct {
	Repository domain.Repository
	SyncLogID  string
	Changes    []domain.DocumentChange
}

// NotifyResult counts deliveries across channels.
type NotifyResult struct {
	Sent   int
	Failed int
}

// Notifier delivers notifications to downstream channels.
// Delivery retries are internal; callers only receive the counts.
type Notifier interface {
	NotifyReleasePublished(ctx context.Context, event ReleaseEvent) (NotifyResult, error)
	NotifyContentUpdate(ctx context.Context, event ContentUpdateEvent) (NotifyResult, error)
}

// CredentialCipher encrypts and decrypts repository tokens at rest.
type CredentialCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}
