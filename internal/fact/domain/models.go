// Package domain contains persistence models for normalized billing facts.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// BillingUsageFact is one normalized usage/cost line. Facts are owned by the
// ETL run that wrote them and are immutable once stored; corrections happen
// by re-ingesting, never by updating in place.
type BillingUsageFact struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	UploadID string       `gorm:"column:upload_id;type:text;not null;index"`

	CloudAccountID       *string `gorm:"type:text"`
	ServiceID            *string `gorm:"type:text"`
	RegionID             *string `gorm:"type:text"`
	SKUID                *string `gorm:"column:sku_id;type:text"`
	ResourceID           *string `gorm:"type:text"`
	SubAccountID         *string `gorm:"type:text"`
	CommitmentDiscountID *string `gorm:"type:text"`

	ChargeCategory    *string `gorm:"type:text"`
	ChargeClass       *string `gorm:"type:text"`
	ChargeDescription *string `gorm:"type:text"`
	ChargeFrequency   *string `gorm:"type:text"`

	ConsumedQuantity    float64 `gorm:"not null"`
	PricingQuantity     float64 `gorm:"not null"`
	ListUnitPrice       float64 `gorm:"not null"`
	ContractedUnitPrice float64 `gorm:"not null"`
	ListCost            float64 `gorm:"not null"`
	ContractedCost      float64 `gorm:"not null"`
	EffectiveCost       float64 `gorm:"not null"`
	BilledCost          float64 `gorm:"not null"`

	BillingPeriodStart *time.Time
	BillingPeriodEnd   *time.Time
	ChargePeriodStart  *time.Time
	ChargePeriodEnd    *time.Time

	Tags datatypes.JSONMap `gorm:"type:jsonb"`

	// RowHash is the natural identity used for duplicate-tolerant bulk
	// inserts: re-ingesting the same source row must not create a second
	// fact.
	RowHash string `gorm:"type:text;uniqueIndex;not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BillingUsageFact) TableName() string { return "billing_usage_facts" }

// Upload is a tenant-owned ingestion batch. Every fact's UploadID belongs to
// exactly one upload, and every upload to exactly one client.
type Upload struct {
	ID        string    `gorm:"primaryKey;type:text"`
	ClientID  string    `gorm:"type:text;not null;index"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Upload) TableName() string { return "uploads" }

// RowHash derives the fact's natural identity: upload id, all seven dimension
// ids, charge period start, and charge description. Two rows hashing equal are
// the same billing line, so a retried or overlapping ingestion is safe.
func RowHash(f *BillingUsageFact) string {
	parts := []string{
		f.UploadID,
		deref(f.CloudAccountID),
		deref(f.ServiceID),
		deref(f.RegionID),
		deref(f.SKUID),
		deref(f.ResourceID),
		deref(f.SubAccountID),
		deref(f.CommitmentDiscountID),
		formatTime(f.ChargePeriodStart),
		deref(f.ChargeDescription),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func formatTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339Nano)
}
