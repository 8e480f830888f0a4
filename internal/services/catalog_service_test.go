package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/domain"
	applog "stockbook/internal/log"
	"stockbook/internal/services"
)

func TestCatalogService_ListNewestStockFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := t1
	svc := services.NewCatalogService(f.catalog.WithClock(func() time.Time { return clock }), f.cache)

	first, err := svc.Add(ctx, domain.KindProduct, domain.NewItem{
		Name: "iPad", Brand: "Apple", Category: "tablet", BasePrice: decimal.NewFromInt(1500000), Quantity: 2,
	})
	require.NoError(t, err)
	clock = t1.Add(time.Minute)
	second, err := svc.Add(ctx, domain.KindProduct, domain.NewItem{
		Name: "ThinkPad", Brand: "Lenovo", Category: "laptop", BasePrice: decimal.NewFromInt(2500000), Quantity: 1,
	})
	require.NoError(t, err)

	items, err := svc.List(ctx, domain.KindProduct)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)
	assert.True(t, items[0].StockUpdatedAt.Equal(t1.Add(time.Minute)))

	// a restock moves the older item back to the top
	clock = t1.Add(2 * time.Minute)
	first.Quantity = 10
	_, err = svc.Update(ctx, first)
	require.NoError(t, err)
	items, err = svc.List(ctx, domain.KindProduct)
	require.NoError(t, err)
	assert.Equal(t, first.ID, items[0].ID)

	assert.EqualValues(t, 3, f.cache.n.Load())
}

func TestCatalogService_CacheFailureIsLoggedNotReturned(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	t.Cleanup(applog.SetOutput(&buf))
	svc := services.NewCatalogService(f.catalog, failingCache{})

	it, err := svc.Add(context.Background(), domain.KindAccessory, domain.NewItem{
		Name: "Chargeur 20W", Category: "chargeur", BasePrice: decimal.NewFromInt(25000), Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Chargeur 20W", it.Name)
	assert.Contains(t, buf.String(), `"cache.invalidate.fail"`)
	assert.Contains(t, buf.String(), "cache down")
}

func TestCatalogService_RejectsInvalidItem(t *testing.T) {
	f := newFixture(t)
	svc := services.NewCatalogService(f.catalog, f.cache)

	_, err := svc.Add(context.Background(), domain.KindAccessory, domain.NewItem{
		Name: "Coque", Category: "smartphone", BasePrice: decimal.NewFromInt(1000), Quantity: 1,
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "category", ve.Field)
	assert.EqualValues(t, 0, f.cache.n.Load())
}

func TestCatalogService_DeleteRefusedWhenSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := services.NewCatalogService(f.catalog, f.cache)
	seller := f.seller(t, "Rija")
	sold := f.product(t, 2)
	unsold := f.product(t, 2)

	_, err := f.svc.CommitSale(ctx, seller, sold, 1, price, domain.Extras{})
	require.NoError(t, err)

	var ce *domain.ConflictError
	require.ErrorAs(t, svc.Delete(ctx, sold.Kind, sold.ID), &ce)
	require.NoError(t, svc.Delete(ctx, unsold.Kind, unsold.ID))

	_, err = svc.Get(ctx, unsold.Kind, unsold.ID)
	var nf *domain.NotFoundError
	assert.ErrorAs(t, err, &nf)
}
