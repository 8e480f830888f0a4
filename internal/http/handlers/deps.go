package handlers

import (
	"time"

	"github.com/jmoiron/sqlx"

	"stockbook/internal/auth"
	"stockbook/internal/cache"
	"stockbook/internal/config"
	"stockbook/internal/repos"
	"stockbook/internal/services"
)

type Deps struct {
	AuthService      *services.AuthService
	AuthHandler      *AuthHandler
	CatalogHandler   *CatalogHandler
	SaleHandler      *SaleHandler
	DashboardHandler *DashboardHandler
	ExportHandler    *ExportHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, store cache.Store) *Deps {
	catalogRepo := repos.NewCatalogRepo(db)
	saleRepo := repos.NewSaleRepo(db)
	sellerRepo := repos.NewSellerRepo(db)

	authSvc := &services.AuthService{Sellers: sellerRepo, Tokens: auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)}
	catalogSvc := services.NewCatalogService(catalogRepo, store)
	saleSvc := services.NewSaleService(db, catalogRepo, saleRepo, store)
	dashSvc := services.NewDashboardService(store, catalogRepo, saleRepo, sellerRepo, cfg.Location())

	return &Deps{
		AuthService:      authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc, TTL: cfg.JWTTTL},
		CatalogHandler:   &CatalogHandler{Catalog: catalogSvc},
		SaleHandler:      &SaleHandler{Sales: saleSvc, Catalog: catalogSvc},
		DashboardHandler: &DashboardHandler{Dashboard: dashSvc},
		ExportHandler:    &ExportHandler{Dashboard: dashSvc, Loc: cfg.Location(), Now: time.Now},
	}
}
