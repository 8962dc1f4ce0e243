package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/costlens/costlens/internal/clock"
	dimensiondomain "github.com/costlens/costlens/internal/dimension/domain"
	dimensionrepo "github.com/costlens/costlens/internal/dimension/repository"
	dimensionservice "github.com/costlens/costlens/internal/dimension/service"
	factdomain "github.com/costlens/costlens/internal/fact/domain"
	factrepo "github.com/costlens/costlens/internal/fact/repository"
	"github.com/costlens/costlens/internal/fact/writer"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupPipeline(t *testing.T, threshold int) (*Service, *gorm.DB) {
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
		&factdomain.BillingUsageFact{},
	))

	require.NoError(t, db.Create(&dimensiondomain.CloudAccount{
		ID: "ca_1", Provider: "aws", BillingAccountID: "123456789012",
	}).Error)
	require.NoError(t, db.Create(&dimensiondomain.Service{
		ID: "svc_1", Provider: "aws", ServiceName: "AmazonEC2",
	}).Error)
	require.NoError(t, db.Create(&dimensiondomain.Region{
		ID: "reg_1", Provider: "aws", RegionCode: "us-east-1",
	}).Error)

	logger := zap.NewNop()
	node, _ := snowflake.NewNode(1)

	svc := NewService(ServiceParam{
		Log:      logger,
		Resolver: dimensionservice.NewResolver(dimensionservice.ResolverParam{Log: logger, Repo: dimensionrepo.Provide(db)}),
		Writer:   writer.NewWithThreshold(logger, factrepo.Provide(db), threshold),
		GenID:    node,
		Clock:    clock.NewFakeClock(time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)),
	})

	return svc.(*Service), db
}

func TestIngestRow_EndToEnd(t *testing.T) {
	svc, db := setupPipeline(t, 100)
	ctx := context.Background()

	raw := map[string]any{
		"ProviderName":      "aws",
		"BillingAccountId":  "123456789012",
		"ServiceName":       "AmazonEC2",
		"RegionId":          "us-east-1",
		"SkuId":             "unknown-sku",
		"ChargeCategory":    "Usage",
		"ChargeDescription": "EC2 instance hours",
		"ConsumedQuantity":  "730",
		"BilledCost":        141.77,
		"ChargePeriodStart": "2024-03-01T00:00:00Z",
		"ChargePeriodEnd":   "2024-04-01T00:00:00Z",
		"Tags":              `{"env":"prod","team":"platform"}`,
	}

	require.NoError(t, svc.IngestRow(ctx, "up_1", raw))
	require.NoError(t, svc.Flush(ctx))

	var fact factdomain.BillingUsageFact
	require.NoError(t, db.First(&fact).Error)

	assert.Equal(t, "up_1", fact.UploadID)
	require.NotNil(t, fact.CloudAccountID)
	assert.Equal(t, "ca_1", *fact.CloudAccountID)
	require.NotNil(t, fact.ServiceID)
	assert.Equal(t, "svc_1", *fact.ServiceID)
	require.NotNil(t, fact.RegionID)
	assert.Equal(t, "reg_1", *fact.RegionID)

	// Unknown SKU resolves to a null reference, the row is still written.
	assert.Nil(t, fact.SKUID)
	assert.Nil(t, fact.SubAccountID)

	assert.Equal(t, 730.0, fact.ConsumedQuantity)
	assert.Equal(t, 141.77, fact.BilledCost)
	assert.Equal(t, "prod", fact.Tags["env"])
	assert.Equal(t, time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC), fact.CreatedAt.UTC())
}

func TestIngestRow_MissingUploadIDRejected(t *testing.T) {
	svc, _ := setupPipeline(t, 100)

	err := svc.IngestRow(context.Background(), "  ", map[string]any{})
	assert.ErrorIs(t, err, factdomain.ErrMissingUpload)
}

func TestIngestRow_ReIngestionCreatesNoDuplicates(t *testing.T) {
	svc, db := setupPipeline(t, 100)
	ctx := context.Background()

	raw := map[string]any{
		"ProviderName":      "aws",
		"BillingAccountId":  "123456789012",
		"ChargeDescription": "S3 storage",
		"ChargePeriodStart": "2024-03-01T00:00:00Z",
		"BilledCost":        10.5,
	}

	require.NoError(t, svc.IngestRow(ctx, "up_1", raw))
	require.NoError(t, svc.Flush(ctx))
	require.NoError(t, svc.IngestRow(ctx, "up_1", raw))
	require.NoError(t, svc.Flush(ctx))

	var count int64
	require.NoError(t, db.Model(&factdomain.BillingUsageFact{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestIngestRow_AutomaticFlushAtThreshold(t *testing.T) {
	svc, db := setupPipeline(t, 5)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		raw := map[string]any{
			"ChargeDescription": "row",
			"ChargePeriodStart": time.Date(2024, 3, 1+i, 0, 0, 0, 0, time.UTC),
		}
		require.NoError(t, svc.IngestRow(ctx, "up_1", raw))
	}

	// The fifth append crossed the threshold, so rows are durable without an
	// explicit flush.
	var count int64
	require.NoError(t, db.Model(&factdomain.BillingUsageFact{}).Count(&count).Error)
	assert.Equal(t, int64(5), count)
}
