package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stockbook/internal/domain"
	applog "stockbook/internal/log"
)

// SeedDemo fills an empty catalog with a handful of items and a demo seller.
// It does nothing once any product exists, so it is safe to run on every start.
func SeedDemo(ctx context.Context, db *sqlx.DB) error {
	var n int
	if err := db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	applog.L().Info("seed.demo", zap.String("what", "catalog and seller"))
	return WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := NewSellerRepo(tx).Create(ctx, domain.NewSeller{Name: "demo", Passcode: "0000"}); err != nil {
			return err
		}
		catalog := NewCatalogRepo(tx)
		items := []struct {
			kind domain.Kind
			in   domain.NewItem
		}{
			{domain.KindProduct, domain.NewItem{Name: "Galaxy A15", Brand: "Samsung", Category: "smartphone", BasePrice: decimal.NewFromInt(650000), Quantity: 8}},
			{domain.KindProduct, domain.NewItem{Name: "Redmi Note 13", Brand: "Xiaomi", Category: "smartphone", BasePrice: decimal.NewFromInt(720000), Quantity: 3}},
			{domain.KindProduct, domain.NewItem{Name: "IdeaPad 3", Brand: "Lenovo", Category: "laptop", BasePrice: decimal.NewFromInt(2400000), Quantity: 0}},
			{domain.KindAccessory, domain.NewItem{Name: "Câble USB-C", Category: "cable", BasePrice: decimal.NewFromInt(8000), Quantity: 25}},
			{domain.KindAccessory, domain.NewItem{Name: "Chargeur 20W", Category: "chargeur", BasePrice: decimal.NewFromInt(35000), Quantity: 4}},
			{domain.KindAccessory, domain.NewItem{Name: "Housse A15", Category: "housse", BasePrice: decimal.NewFromInt(15000), Quantity: 10}},
		}
		for _, it := range items {
			if _, err := catalog.AddItem(ctx, it.kind, it.in); err != nil {
				return err
			}
		}
		return nil
	})
}
