// Package domain contains persistence models for billing dimensions.
package domain

import "time"

// CloudAccount is a provider billing account, keyed provider:billingAccountId.
type CloudAccount struct {
	ID               string    `gorm:"primaryKey;type:text"`
	Provider         string    `gorm:"type:text;not null"`
	BillingAccountID string    `gorm:"type:text;not null"`
	CreatedAt        time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CloudAccount) TableName() string { return "cloud_accounts" }

// Service is a provider service offering, keyed provider:serviceName.
type Service struct {
	ID          string    `gorm:"primaryKey;type:text"`
	Provider    string    `gorm:"type:text;not null"`
	ServiceName string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Service) TableName() string { return "services" }

// Region is a provider region, keyed provider:regionCode.
type Region struct {
	ID         string    `gorm:"primaryKey;type:text"`
	Provider   string    `gorm:"type:text;not null"`
	RegionCode string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Region) TableName() string { return "regions" }

// SKU is identity-mapped: the raw identifier is both key and value.
type SKU struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Provider  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SKU) TableName() string { return "skus" }

// Resource is identity-mapped.
type Resource struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Provider  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Resource) TableName() string { return "resources" }

// SubAccount is identity-mapped.
type SubAccount struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Provider  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SubAccount) TableName() string { return "sub_accounts" }

// CommitmentDiscount is identity-mapped.
type CommitmentDiscount struct {
	ID        string    `gorm:"primaryKey;type:text"`
	Provider  string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CommitmentDiscount) TableName() string { return "commitment_discounts" }
