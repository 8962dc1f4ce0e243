package service

import (
	"context"
	"sync"

	dimensiondomain "github.com/costlens/costlens/internal/dimension/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ResolverParam struct {
	fx.In

	Log  *zap.Logger
	Repo dimensiondomain.Repository
}

// Resolver memoizes all seven dimension tables in lookup maps built once per
// ETL run. A stale map only risks leaving a row unresolved, never pointing it
// at another tenant's data, so there is no partial invalidation.
type Resolver struct {
	log  *zap.Logger
	repo dimensiondomain.Repository

	mu    sync.RWMutex
	maps  map[dimensiondomain.Kind]map[string]string
	ready bool
}

func NewResolver(p ResolverParam) dimensiondomain.Resolver {
	return &Resolver{
		log:  p.Log.Named("dimension.resolver"),
		repo: p.Repo,
	}
}

// Build loads every dimension table fully into memory. It must complete
// before any fact append begins; resolving against a partially loaded map is
// not allowed, so the finished maps are installed in one step at the end.
func (r *Resolver) Build(ctx context.Context) error {
	maps := make(map[dimensiondomain.Kind]map[string]string, len(dimensiondomain.Kinds))
	for _, kind := range dimensiondomain.Kinds {
		maps[kind] = make(map[string]string)
	}

	accounts, err := r.repo.ListCloudAccounts(ctx)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		key := dimensiondomain.Key(account.Provider, account.BillingAccountID)
		if key == "" {
			continue
		}
		maps[dimensiondomain.KindCloudAccount][key] = account.ID
	}

	services, err := r.repo.ListServices(ctx)
	if err != nil {
		return err
	}
	for _, svc := range services {
		key := dimensiondomain.Key(svc.Provider, svc.ServiceName)
		if key == "" {
			continue
		}
		maps[dimensiondomain.KindService][key] = svc.ID
	}

	regions, err := r.repo.ListRegions(ctx)
	if err != nil {
		return err
	}
	for _, region := range regions {
		key := dimensiondomain.Key(region.Provider, region.RegionCode)
		if key == "" {
			continue
		}
		maps[dimensiondomain.KindRegion][key] = region.ID
	}

	skus, err := r.repo.ListSKUs(ctx)
	if err != nil {
		return err
	}
	for _, sku := range skus {
		if key := dimensiondomain.Key(sku.ID); key != "" {
			maps[dimensiondomain.KindSKU][key] = sku.ID
		}
	}

	resources, err := r.repo.ListResources(ctx)
	if err != nil {
		return err
	}
	for _, resource := range resources {
		if key := dimensiondomain.Key(resource.ID); key != "" {
			maps[dimensiondomain.KindResource][key] = resource.ID
		}
	}

	subAccounts, err := r.repo.ListSubAccounts(ctx)
	if err != nil {
		return err
	}
	for _, sub := range subAccounts {
		if key := dimensiondomain.Key(sub.ID); key != "" {
			maps[dimensiondomain.KindSubAccount][key] = sub.ID
		}
	}

	discounts, err := r.repo.ListCommitmentDiscounts(ctx)
	if err != nil {
		return err
	}
	for _, discount := range discounts {
		if key := dimensiondomain.Key(discount.ID); key != "" {
			maps[dimensiondomain.KindCommitmentDiscount][key] = discount.ID
		}
	}

	r.mu.Lock()
	r.maps = maps
	r.ready = true
	r.mu.Unlock()

	r.log.Info("dimension maps built",
		zap.Int("cloud_accounts", len(maps[dimensiondomain.KindCloudAccount])),
		zap.Int("services", len(maps[dimensiondomain.KindService])),
		zap.Int("regions", len(maps[dimensiondomain.KindRegion])),
		zap.Int("skus", len(maps[dimensiondomain.KindSKU])),
		zap.Int("resources", len(maps[dimensiondomain.KindResource])),
		zap.Int("sub_accounts", len(maps[dimensiondomain.KindSubAccount])),
		zap.Int("commitment_discounts", len(maps[dimensiondomain.KindCommitmentDiscount])),
	)

	return nil
}

// Ready reports whether Build has completed.
func (r *Resolver) Ready() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ready
}

// Resolve is a pure map read. A miss yields ok=false; the caller writes the
// fact with a null dimension reference rather than failing the row.
func (r *Resolver) Resolve(kind dimensiondomain.Kind, parts ...string) (string, bool) {
	key := dimensiondomain.Key(parts...)
	if key == "" {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.ready {
		return "", false
	}
	table, ok := r.maps[kind]
	if !ok {
		return "", false
	}
	id, ok := table[key]
	return id, ok
}
