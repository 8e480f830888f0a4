package services_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"stockbook/internal/domain"
	applog "stockbook/internal/log"
	"stockbook/internal/repos"
	"stockbook/internal/services"
)

type countingCache struct{ n atomic.Int32 }

func (c *countingCache) Invalidate(context.Context) error {
	c.n.Add(1)
	return nil
}

type failingCache struct{}

func (failingCache) Invalidate(context.Context) error { return errors.New("cache down") }

type fixture struct {
	db      *sqlx.DB
	catalog *repos.CatalogRepo
	sales   *repos.SaleRepo
	sellers *repos.SellerRepo
	cache   *countingCache
	svc     *services.SaleService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Cleanup(applog.SetOutput(io.Discard))

	db, err := repos.OpenDB(filepath.Join(t.TempDir(), "stockbook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		db:      db,
		catalog: repos.NewCatalogRepo(db),
		sales:   repos.NewSaleRepo(db),
		sellers: repos.NewSellerRepo(db).WithCost(bcrypt.MinCost),
		cache:   &countingCache{},
	}
	f.svc = services.NewSaleService(db, f.catalog, f.sales, f.cache)
	return f
}

func (f *fixture) seller(t *testing.T, name string) int64 {
	t.Helper()
	s, err := f.sellers.Create(context.Background(), domain.NewSeller{Name: name, Passcode: "1234"})
	require.NoError(t, err)
	return s.ID
}

func (f *fixture) product(t *testing.T, qty int) domain.ItemRef {
	t.Helper()
	id, err := f.catalog.AddItem(context.Background(), domain.KindProduct, domain.NewItem{
		Name: "Galaxy A15", Brand: "Samsung", Category: "smartphone",
		BasePrice: decimal.RequireFromString("650000"), Quantity: qty,
	})
	require.NoError(t, err)
	return domain.ItemRef{Kind: domain.KindProduct, ID: id}
}

func (f *fixture) accessory(t *testing.T, qty int) domain.ItemRef {
	t.Helper()
	id, err := f.catalog.AddItem(context.Background(), domain.KindAccessory, domain.NewItem{
		Name: "USB-C", Category: "cable", BasePrice: decimal.RequireFromString("5000"), Quantity: qty,
	})
	require.NoError(t, err)
	return domain.ItemRef{Kind: domain.KindAccessory, ID: id}
}

func (f *fixture) quantity(t *testing.T, ref domain.ItemRef) int {
	t.Helper()
	it, err := f.catalog.GetByID(context.Background(), ref.Kind, ref.ID)
	require.NoError(t, err)
	return it.Quantity
}

func (f *fixture) saleCount(t *testing.T) int {
	t.Helper()
	n, err := f.sales.Count(context.Background())
	require.NoError(t, err)
	return n
}
