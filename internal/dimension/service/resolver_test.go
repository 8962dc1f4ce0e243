package service

import (
	"context"
	"testing"

	dimensiondomain "github.com/costlens/costlens/internal/dimension/domain"
	"github.com/costlens/costlens/internal/dimension/repository"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func seedDimensions(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&dimensiondomain.CloudAccount{},
		&dimensiondomain.Service{},
		&dimensiondomain.Region{},
		&dimensiondomain.SKU{},
		&dimensiondomain.Resource{},
		&dimensiondomain.SubAccount{},
		&dimensiondomain.CommitmentDiscount{},
	))

	require.NoError(t, db.Create(&dimensiondomain.CloudAccount{
		ID: "ca_1", Provider: "aws", BillingAccountID: "123456789012",
	}).Error)
	require.NoError(t, db.Create(&dimensiondomain.Service{
		ID: "svc_1", Provider: "aws", ServiceName: "AmazonEC2",
	}).Error)
	require.NoError(t, db.Create(&dimensiondomain.Region{
		ID: "reg_1", Provider: "gcp", RegionCode: "us-central1",
	}).Error)
	require.NoError(t, db.Create(&dimensiondomain.SKU{ID: "sku_1", Provider: "azure"}).Error)
	require.NoError(t, db.Create(&dimensiondomain.Resource{ID: "res_1"}).Error)
	require.NoError(t, db.Create(&dimensiondomain.SubAccount{ID: "sub_1"}).Error)
	require.NoError(t, db.Create(&dimensiondomain.CommitmentDiscount{ID: "cd_1"}).Error)

	return db
}

func TestResolver_BuildAndResolve(t *testing.T) {
	db := seedDimensions(t)
	resolver := NewResolver(ResolverParam{
		Log:  zap.NewNop(),
		Repo: repository.Provide(db),
	})

	assert.False(t, resolver.Ready())
	require.NoError(t, resolver.Build(context.Background()))
	assert.True(t, resolver.Ready())

	tests := []struct {
		name   string
		kind   dimensiondomain.Kind
		parts  []string
		wantID string
		wantOK bool
	}{
		{"cloud account hit", dimensiondomain.KindCloudAccount, []string{"aws", "123456789012"}, "ca_1", true},
		{"cloud account wrong provider", dimensiondomain.KindCloudAccount, []string{"gcp", "123456789012"}, "", false},
		{"service hit", dimensiondomain.KindService, []string{"aws", "AmazonEC2"}, "svc_1", true},
		{"region hit", dimensiondomain.KindRegion, []string{"gcp", "us-central1"}, "reg_1", true},
		{"sku identity", dimensiondomain.KindSKU, []string{"sku_1"}, "sku_1", true},
		{"resource identity", dimensiondomain.KindResource, []string{"res_1"}, "res_1", true},
		{"sub account identity", dimensiondomain.KindSubAccount, []string{"sub_1"}, "sub_1", true},
		{"commitment discount identity", dimensiondomain.KindCommitmentDiscount, []string{"cd_1"}, "cd_1", true},
		{"miss", dimensiondomain.KindService, []string{"aws", "UnknownService"}, "", false},
		{"empty part collapses key", dimensiondomain.KindCloudAccount, []string{"aws", ""}, "", false},
		{"whitespace trimmed", dimensiondomain.KindService, []string{" aws ", " AmazonEC2 "}, "svc_1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := resolver.Resolve(tt.kind, tt.parts...)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestResolver_ResolveBeforeBuildIsUnresolved(t *testing.T) {
	db := seedDimensions(t)
	resolver := NewResolver(ResolverParam{
		Log:  zap.NewNop(),
		Repo: repository.Provide(db),
	})

	id, ok := resolver.Resolve(dimensiondomain.KindCloudAccount, "aws", "123456789012")
	assert.False(t, ok)
	assert.Empty(t, id)
}
