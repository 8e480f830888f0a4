package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockbook/internal/domain"
	applog "stockbook/internal/log"
	"stockbook/internal/repos"
	"stockbook/internal/validate"
)

// Invalidator drops cached projections after a successful write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Line is one item of a sale request.
type Line struct {
	Item      domain.ItemRef  `json:"item"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	domain.Extras
}

// SaleService records sales. A sale row exists if and only if its stock decrement happened:
// both run in the same transaction.
type SaleService struct {
	DB      *sqlx.DB
	Catalog *repos.CatalogRepo
	Sales   *repos.SaleRepo
	Cache   Invalidator
	Now     func() time.Time
}

func NewSaleService(db *sqlx.DB, catalog *repos.CatalogRepo, sales *repos.SaleRepo, cache Invalidator) *SaleService {
	return &SaleService{DB: db, Catalog: catalog, Sales: sales, Cache: cache, Now: time.Now}
}

// CommitSale validates stock, appends the sale and decrements the item, all or nothing.
// unitPrice is the price agreed at the counter and may differ from the catalog price.
func (s *SaleService) CommitSale(ctx context.Context, sellerID int64, ref domain.ItemRef, quantity int,
	unitPrice decimal.Decimal, extras domain.Extras) (domain.Sale, error) {
	var out domain.Sale
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		sale, err := s.commitLine(ctx, tx, sellerID, Line{Item: ref, Quantity: quantity, UnitPrice: unitPrice, Extras: extras})
		out = sale
		return err
	})
	if err != nil {
		return domain.Sale{}, err
	}
	s.invalidate(ctx)
	return out, nil
}

// CommitBasket commits every line in one transaction: if any line fails nothing is recorded.
// Lines for the same item see the stock left by the earlier lines.
func (s *SaleService) CommitBasket(ctx context.Context, sellerID int64, lines []Line) ([]domain.Sale, error) {
	if len(lines) == 0 {
		return nil, &domain.ValidationError{Field: "lines", Reason: "basket is empty"}
	}
	out := make([]domain.Sale, 0, len(lines))
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		for i, l := range lines {
			sale, err := s.commitLine(ctx, tx, sellerID, l)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			out = append(out, sale)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return out, nil
}

func (s *SaleService) commitLine(ctx context.Context, tx *sqlx.Tx, sellerID int64, l Line) (domain.Sale, error) {
	catalog := s.Catalog.WithTx(tx)
	ledger := s.Sales.WithTx(tx)

	item, err := catalog.GetByID(ctx, l.Item.Kind, l.Item.ID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return domain.Sale{}, &domain.ItemNotFoundError{Ref: l.Item}
		}
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return domain.Sale{}, &domain.ItemNotFoundError{Ref: l.Item}
		}
		return domain.Sale{}, err
	}
	if l.Quantity < 1 {
		return domain.Sale{}, &domain.InvalidQuantityError{Quantity: l.Quantity}
	}
	if l.UnitPrice.IsNegative() {
		return domain.Sale{}, &domain.ValidationError{Field: "unitPrice", Reason: "must not be negative"}
	}
	extras, err := validate.Extras(l.Extras)
	if err != nil {
		return domain.Sale{}, err
	}
	if item.Quantity < l.Quantity {
		return domain.Sale{}, &domain.InsufficientStockError{Ref: l.Item, Requested: l.Quantity, Available: item.Quantity}
	}

	id, err := ledger.Append(ctx, domain.Sale{
		SellerID:  sellerID,
		Item:      l.Item,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		Extras:    extras,
		CreatedAt: s.Now(),
	})
	if err != nil {
		return domain.Sale{}, err
	}
	// the guarded UPDATE is the real stock check; the read above only gives a friendly early answer
	if _, err := catalog.DecrementQuantity(ctx, l.Item.Kind, l.Item.ID, l.Quantity); err != nil {
		return domain.Sale{}, err
	}
	return ledger.GetByID(ctx, id)
}

func (s *SaleService) invalidate(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		applog.L().Warn("cache.invalidate.fail", zap.Error(err))
	}
}

// List returns the ledger newest first.
func (s *SaleService) List(ctx context.Context) ([]domain.Sale, error) {
	return s.Sales.ListAll(ctx)
}
