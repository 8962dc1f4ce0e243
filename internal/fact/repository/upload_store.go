package repository

import (
	"context"

	factdomain "github.com/costlens/costlens/internal/fact/domain"
	pkgdb "github.com/costlens/costlens/pkg/db"
	"gorm.io/gorm"
)

type uploadStore struct {
	db *gorm.DB
}

func ProvideUploads(db *gorm.DB) factdomain.UploadStore {
	return &uploadStore{db: db}
}

// Register creates the upload row a client's facts will hang off. A duplicate
// id from the same client is a retried registration and succeeds; the same id
// from another client is a conflict.
func (r *uploadStore) Register(ctx context.Context, upload *factdomain.Upload) error {
	err := r.db.WithContext(ctx).Create(upload).Error
	if err == nil {
		return nil
	}
	if !pkgdb.IsDuplicateKeyErr(err) {
		return err
	}

	var existing factdomain.Upload
	if lookupErr := r.db.WithContext(ctx).First(&existing, "id = ?", upload.ID).Error; lookupErr != nil {
		return lookupErr
	}
	if existing.ClientID != upload.ClientID {
		return factdomain.ErrUploadConflict
	}
	return nil
}
