// Package domain defines the upload scope guard contract.
//
// The guard is the sole tenant-isolation boundary on read paths: it must run
// before any fact query executes against the requested uploads.
package domain

import (
	"context"
	"errors"
)

// Guard verifies that every requested upload belongs to the client before a
// query is allowed to touch it. Each raw value may itself be a
// comma-separated list of upload ids.
type Guard interface {
	Authorize(ctx context.Context, clientID string, requested ...string) ([]string, error)
}

// Repository answers which of the requested upload ids are owned by the
// client. One read per Authorize call; callers needing retries wrap the guard.
type Repository interface {
	ListOwned(ctx context.Context, clientID string, uploadIDs []string) ([]string, error)
}

var (
	ErrMissingClientIdentity = errors.New("missing_client_identity")

	// ErrUploadNotOwned rejects the entire request when any requested id is
	// foreign. Partial grants would leak that the foreign id exists.
	ErrUploadNotOwned = errors.New("upload_not_owned")
)
