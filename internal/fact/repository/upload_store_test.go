package repository

import (
	"context"
	"testing"
	"time"

	factdomain "github.com/costlens/costlens/internal/fact/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_RetryBySameClientIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	store := ProvideUploads(db)
	ctx := context.Background()

	upload := &factdomain.Upload{ID: "up_1", ClientID: "client_1", CreatedAt: time.Now().UTC()}
	require.NoError(t, store.Register(ctx, upload))
	require.NoError(t, store.Register(ctx, upload))

	var count int64
	require.NoError(t, db.Model(&factdomain.Upload{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegister_SameIDByAnotherClientConflicts(t *testing.T) {
	db := openTestDB(t)
	store := ProvideUploads(db)
	ctx := context.Background()

	require.NoError(t, store.Register(ctx, &factdomain.Upload{ID: "up_1", ClientID: "client_1", CreatedAt: time.Now().UTC()}))

	err := store.Register(ctx, &factdomain.Upload{ID: "up_1", ClientID: "client_2", CreatedAt: time.Now().UTC()})
	assert.ErrorIs(t, err, factdomain.ErrUploadConflict)
}
