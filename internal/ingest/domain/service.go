// Package domain defines the caller-facing ingestion contract.
package domain

import "context"

// Service is the ingestion pipeline for one logical ETL run: rows are
// resolved, normalized and appended sequentially, and the only blocking
// operation is the bulk write behind Flush.
type Service interface {
	IngestRow(ctx context.Context, uploadID string, raw map[string]any) error
	Flush(ctx context.Context) error
}
