package repository

import (
	"context"

	scopedomain "github.com/costlens/costlens/internal/uploadscope/domain"
	"gorm.io/gorm"
)

type ownershipRepo struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) scopedomain.Repository {
	return &ownershipRepo{db: db}
}

func (r *ownershipRepo) ListOwned(ctx context.Context, clientID string, uploadIDs []string) ([]string, error) {
	if len(uploadIDs) == 0 {
		return nil, nil
	}

	var owned []string
	err := r.db.WithContext(ctx).Raw(
		`SELECT id FROM uploads WHERE client_id = ? AND id IN ?`,
		clientID,
		uploadIDs,
	).Scan(&owned).Error
	if err != nil {
		return nil, err
	}
	return owned, nil
}
