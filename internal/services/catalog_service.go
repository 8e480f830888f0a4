package services

import (
	"context"

	"go.uber.org/zap"

	"stockbook/internal/domain"
	applog "stockbook/internal/log"
	"stockbook/internal/repos"
)

// CatalogService fronts the catalog store and keeps the snapshot cache honest.
type CatalogService struct {
	Items *repos.CatalogRepo
	Cache Invalidator
}

func NewCatalogService(items *repos.CatalogRepo, cache Invalidator) *CatalogService {
	return &CatalogService{Items: items, Cache: cache}
}

func (s *CatalogService) Add(ctx context.Context, kind domain.Kind, in domain.NewItem) (domain.CatalogItem, error) {
	id, err := s.Items.AddItem(ctx, kind, in)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	s.invalidate(ctx)
	return s.Items.GetByID(ctx, kind, id)
}

func (s *CatalogService) Update(ctx context.Context, it domain.CatalogItem) (domain.CatalogItem, error) {
	if err := s.Items.UpdateItem(ctx, it); err != nil {
		return domain.CatalogItem{}, err
	}
	s.invalidate(ctx)
	return s.Items.GetByID(ctx, it.Kind, it.ID)
}

func (s *CatalogService) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	if err := s.Items.Delete(ctx, kind, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) Get(ctx context.Context, kind domain.Kind, id int64) (domain.CatalogItem, error) {
	return s.Items.GetByID(ctx, kind, id)
}

func (s *CatalogService) List(ctx context.Context, kind domain.Kind) ([]domain.CatalogItem, error) {
	return s.Items.ListAll(ctx, kind)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		applog.L().Warn("cache.invalidate.fail", zap.Error(err))
	}
}
