package domain

import (
	"context"
	"errors"
)

// ResolvedDimensions carries the identifiers produced by the dimension
// resolver for one raw row. Nil means the dimension could not be resolved;
// the fact is still written with a null reference.
type ResolvedDimensions struct {
	CloudAccountID       *string
	ServiceID            *string
	RegionID             *string
	SKUID                *string
	ResourceID           *string
	SubAccountID         *string
	CommitmentDiscountID *string
}

// BulkStore accepts whole batches of facts with duplicate-tolerant semantics.
// Row-level validation is skipped here; rows were validated during
// normalization.
type BulkStore interface {
	BulkInsert(ctx context.Context, facts []*BillingUsageFact) error
}

// UploadStore registers ingestion batches. Registration is idempotent for the
// owning client; re-registering another client's upload id is a conflict.
type UploadStore interface {
	Register(ctx context.Context, upload *Upload) error
}

var (
	ErrMissingUpload  = errors.New("missing_upload_id")
	ErrFlushFailed    = errors.New("fact_flush_failed")
	ErrUploadConflict = errors.New("upload_id_already_registered")
)
