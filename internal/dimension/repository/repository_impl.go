package repository

import (
	"context"

	dimensiondomain "github.com/costlens/costlens/internal/dimension/domain"
	"github.com/costlens/costlens/pkg/repository"
	"gorm.io/gorm"
)

type dimensionRepo struct {
	cloudAccounts       repository.Repository[dimensiondomain.CloudAccount]
	services            repository.Repository[dimensiondomain.Service]
	regions             repository.Repository[dimensiondomain.Region]
	skus                repository.Repository[dimensiondomain.SKU]
	resources           repository.Repository[dimensiondomain.Resource]
	subAccounts         repository.Repository[dimensiondomain.SubAccount]
	commitmentDiscounts repository.Repository[dimensiondomain.CommitmentDiscount]
}

func Provide(db *gorm.DB) dimensiondomain.Repository {
	return &dimensionRepo{
		cloudAccounts:       repository.ProvideStore[dimensiondomain.CloudAccount](db),
		services:            repository.ProvideStore[dimensiondomain.Service](db),
		regions:             repository.ProvideStore[dimensiondomain.Region](db),
		skus:                repository.ProvideStore[dimensiondomain.SKU](db),
		resources:           repository.ProvideStore[dimensiondomain.Resource](db),
		subAccounts:         repository.ProvideStore[dimensiondomain.SubAccount](db),
		commitmentDiscounts: repository.ProvideStore[dimensiondomain.CommitmentDiscount](db),
	}
}

func (r *dimensionRepo) ListCloudAccounts(ctx context.Context) ([]dimensiondomain.CloudAccount, error) {
	return collect(r.cloudAccounts.Find(ctx, &dimensiondomain.CloudAccount{}))
}

func (r *dimensionRepo) ListServices(ctx context.Context) ([]dimensiondomain.Service, error) {
	return collect(r.services.Find(ctx, &dimensiondomain.Service{}))
}

func (r *dimensionRepo) ListRegions(ctx context.Context) ([]dimensiondomain.Region, error) {
	return collect(r.regions.Find(ctx, &dimensiondomain.Region{}))
}

func (r *dimensionRepo) ListSKUs(ctx context.Context) ([]dimensiondomain.SKU, error) {
	return collect(r.skus.Find(ctx, &dimensiondomain.SKU{}))
}

func (r *dimensionRepo) ListResources(ctx context.Context) ([]dimensiondomain.Resource, error) {
	return collect(r.resources.Find(ctx, &dimensiondomain.Resource{}))
}

func (r *dimensionRepo) ListSubAccounts(ctx context.Context) ([]dimensiondomain.SubAccount, error) {
	return collect(r.subAccounts.Find(ctx, &dimensiondomain.SubAccount{}))
}

func (r *dimensionRepo) ListCommitmentDiscounts(ctx context.Context) ([]dimensiondomain.CommitmentDiscount, error) {
	return collect(r.commitmentDiscounts.Find(ctx, &dimensiondomain.CommitmentDiscount{}))
}

func collect[T any](rows []*T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}
