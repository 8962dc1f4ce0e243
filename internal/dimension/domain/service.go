package domain

import (
	"context"
	"strings"
)

// Kind identifies one of the seven dimension lookup tables.
type Kind string

const (
	KindCloudAccount       Kind = "cloud_account"
	KindService            Kind = "service"
	KindRegion             Kind = "region"
	KindSKU                Kind = "sku"
	KindResource           Kind = "resource"
	KindSubAccount         Kind = "sub_account"
	KindCommitmentDiscount Kind = "commitment_discount"
)

// Kinds lists every dimension kind in resolution order.
var Kinds = []Kind{
	KindCloudAccount,
	KindService,
	KindRegion,
	KindSKU,
	KindResource,
	KindSubAccount,
	KindCommitmentDiscount,
}

// Key joins natural key parts into the composite lookup key.
// Empty parts collapse the key to "" so callers treat the row as unresolved.
func Key(parts ...string) string {
	trimmed := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return ""
		}
		trimmed = append(trimmed, part)
	}
	return strings.Join(trimmed, ":")
}

// Resolver maps natural dimension keys to stored identifiers.
// Build must complete before Resolve is called; the maps are immutable
// afterwards and safe for concurrent reads.
type Resolver interface {
	Build(ctx context.Context) error
	Ready() bool
	Resolve(kind Kind, parts ...string) (string, bool)
}

// Repository lists each dimension table in full. Dimension cardinality is
// small relative to fact volume, so no pagination is needed.
type Repository interface {
	ListCloudAccounts(ctx context.Context) ([]CloudAccount, error)
	ListServices(ctx context.Context) ([]Service, error)
	ListRegions(ctx context.Context) ([]Region, error)
	ListSKUs(ctx context.Context) ([]SKU, error)
	ListResources(ctx context.Context) ([]Resource, error)
	ListSubAccounts(ctx context.Context) ([]SubAccount, error)
	ListCommitmentDiscounts(ctx context.Context) ([]CommitmentDiscount, error)
}
