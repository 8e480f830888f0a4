package services

import (
	"context"
	"time"

	"stockbook/internal/cache"
	"stockbook/internal/domain"
	"stockbook/internal/repos"
	"stockbook/internal/stats"
)

type DashboardService struct {
	Cache   cache.Store
	Catalog *repos.CatalogRepo
	Sales   *repos.SaleRepo
	Sellers *repos.SellerRepo
	Loc     *time.Location
	Now     func() time.Time
}

func NewDashboardService(c cache.Store, catalog *repos.CatalogRepo, sales *repos.SaleRepo, sellers *repos.SellerRepo, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{Cache: c, Catalog: catalog, Sales: sales, Sellers: sellers, Loc: loc, Now: time.Now}
}

// Stats folds the latest snapshot; nothing is persisted.
func (s *DashboardService) Stats(ctx context.Context) (stats.Dashboard, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.Fold(snap.Products, snap.Accessories, snap.Sales, snap.Sellers, s.Now().In(s.Loc)), nil
}

// Snapshot reads through the cache.
func (s *DashboardService) Snapshot(ctx context.Context) (cache.Snapshot, error) {
	return s.Cache.Get(ctx, s.load)
}

func (s *DashboardService) load(ctx context.Context) (cache.Snapshot, error) {
	var snap cache.Snapshot
	var err error
	if snap.Products, err = s.Catalog.ListAll(ctx, domain.KindProduct); err != nil {
		return cache.Snapshot{}, err
	}
	if snap.Accessories, err = s.Catalog.ListAll(ctx, domain.KindAccessory); err != nil {
		return cache.Snapshot{}, err
	}
	if snap.Sales, err = s.Sales.ListAll(ctx); err != nil {
		return cache.Snapshot{}, err
	}
	if snap.Sellers, err = s.Sellers.Count(ctx); err != nil {
		return cache.Snapshot{}, err
	}
	return snap, nil
}
