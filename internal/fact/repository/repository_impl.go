package repository

import (
	"context"

	factdomain "github.com/costlens/costlens/internal/fact/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type bulkStore struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) factdomain.BulkStore {
	return &bulkStore{db: db}
}

// BulkInsert writes the whole batch in one statement with insert-or-ignore
// semantics on the fact's natural identity. A retried batch or an overlapping
// re-ingestion lands on the conflict target instead of creating duplicates,
// which keeps the write path free of per-row existence checks.
func (r *bulkStore) BulkInsert(ctx context.Context, facts []*factdomain.BillingUsageFact) error {
	if len(facts) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "row_hash"}},
			DoNothing: true,
		}).
		Create(facts).Error
}
