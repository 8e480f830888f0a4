package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockbook/internal/domain"
)

func item(kind domain.Kind, id int64, brand, category, price string, qty int) domain.CatalogItem {
	return domain.CatalogItem{Kind: kind, ID: id, Name: "item", Brand: brand, Category: category,
		BasePrice: decimal.RequireFromString(price), Quantity: qty}
}

func sale(price string, qty int, at time.Time) domain.Sale {
	return domain.Sale{Item: domain.ItemRef{Kind: domain.KindProduct, ID: 1},
		UnitPrice: decimal.RequireFromString(price), Quantity: qty, CreatedAt: at}
}

func TestCatalogTotalsAndThresholds(t *testing.T) {
	items := []domain.CatalogItem{
		item(domain.KindProduct, 1, "Samsung", "smartphone", "1000.10", 6),
		item(domain.KindProduct, 2, "Apple", "laptop", "2500", 5),
		item(domain.KindProduct, 3, "Samsung", "tablet", "300.05", 0),
	}
	ks := Catalog(items)

	assert.Equal(t, 3, ks.Count)
	assert.Equal(t, 11, ks.TotalStock)
	// 1000.10*6 + 2500*5 + 0
	assert.Equal(t, "18500.6", ks.TotalValue.String())

	require.Len(t, ks.LowStock, 2, "5 is inside the threshold")
	assert.EqualValues(t, 2, ks.LowStock[0].ID)
	assert.EqualValues(t, 3, ks.LowStock[1].ID)
	require.Len(t, ks.OutOfStock, 1)
	assert.EqualValues(t, 3, ks.OutOfStock[0].ID)
}

func TestTopTieBreakFollowsInputOrder(t *testing.T) {
	a := item(domain.KindAccessory, 1, "", "cable", "1", 1)
	b := item(domain.KindAccessory, 2, "", "housse", "1", 1)

	assert.Equal(t, &Top{Name: "cable", Count: 1}, Catalog([]domain.CatalogItem{a, b}).TopCategory)
	assert.Equal(t, &Top{Name: "housse", Count: 1}, Catalog([]domain.CatalogItem{b, a}).TopCategory)

	c := item(domain.KindAccessory, 3, "", "housse", "1", 1)
	assert.Equal(t, &Top{Name: "housse", Count: 2}, Catalog([]domain.CatalogItem{a, b, c}).TopCategory)
}

func TestEmptyInputs(t *testing.T) {
	d := Fold(nil, nil, nil, 0, time.Now())
	assert.Nil(t, d.TopBrand)
	assert.Nil(t, d.Products.TopCategory)
	assert.True(t, d.TotalGain.IsZero())
	assert.NotNil(t, d.Products.LowStock)
	assert.True(t, d.Sales.TodayRevenue.IsZero())
}

func TestTodayIsCalendarDateNotRollingWindow(t *testing.T) {
	loc := time.FixedZone("EAT", 3*60*60)
	now := time.Date(2026, 10, 15, 0, 30, 0, 0, loc)

	sales := []domain.Sale{
		sale("100", 2, time.Date(2026, 10, 15, 0, 5, 0, 0, loc)),
		// 2026-10-14 22:00 UTC is 01:00 on the 15th in EAT
		sale("50", 1, time.Date(2026, 10, 14, 22, 0, 0, 0, time.UTC)),
		// one hour ago is yesterday in local time
		sale("999", 1, time.Date(2026, 10, 14, 23, 30, 0, 0, loc)),
	}
	ss := Sales(sales, now)

	assert.Equal(t, 3, ss.Count)
	assert.Equal(t, 2, ss.TodaySales)
	assert.Equal(t, "250", ss.TodayRevenue.String())
	assert.Equal(t, "1249", ss.TotalRevenue.String())
}

func TestFoldTotalGainAndTopBrand(t *testing.T) {
	products := []domain.CatalogItem{
		item(domain.KindProduct, 1, "Apple", "smartphone", "10", 1),
		item(domain.KindProduct, 2, "Samsung", "smartphone", "20", 2),
		item(domain.KindProduct, 3, "Samsung", "tablet", "5", 1),
	}
	accessories := []domain.CatalogItem{item(domain.KindAccessory, 1, "", "cable", "0.5", 4)}

	d := Fold(products, accessories, nil, 3, time.Now())
	assert.Equal(t, "55", d.Products.TotalValue.String())
	assert.Equal(t, "2", d.Accessories.TotalValue.String())
	assert.Equal(t, "57", d.TotalGain.String())
	assert.Equal(t, &Top{Name: "Samsung", Count: 2}, d.TopBrand)
	assert.Equal(t, 3, d.TotalSellers)

	again := Fold(products, accessories, nil, 3, time.Now())
	assert.Equal(t, d.TotalGain.String(), again.TotalGain.String())
}
