package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown repository kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrSyncInProgress indicates a sync is already running for the repository.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrRepositoryDisabled indicates the repository is disabled and cannot be synced.
	ErrRepositoryDisabled = errors.New("repository disabled")

	// ErrSearchUnavailable indicates the search engine is not configured.
	ErrSearchUnavailable = errors.New("search engine unavailable")

	// Authentication Errors.

	// ErrAuthRequired indicates the repository has no stored token.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credentials were rejected upstream.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrDecryptionFailed indicates a stored token could not be decrypted.
	ErrDecryptionFailed = errors.New("token decryption failed")

	// Connector Errors.

	// ErrFetchFailed indicates the repository tree could not be listed.
	// It aborts the whole sync run.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
