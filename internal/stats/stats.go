// Package stats folds catalog and ledger snapshots into dashboard figures.
// Everything here is pure: the same inputs always give the same output.
package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
)

// LowStockThreshold is inclusive: an item with exactly 5 left is low.
const LowStockThreshold = 5

// Top is the winner of a frequency count.
type Top struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type KindStats struct {
	Count       int                  `json:"count"`
	TotalStock  int                  `json:"totalStock"`
	TotalValue  decimal.Decimal      `json:"totalValue"`
	LowStock    []domain.CatalogItem `json:"lowStock"`
	OutOfStock  []domain.CatalogItem `json:"outOfStock"`
	TopCategory *Top                 `json:"topCategory"`
}

type SalesStats struct {
	Count        int             `json:"count"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TodaySales   int             `json:"todaySales"`
	TodayRevenue decimal.Decimal `json:"todayRevenue"`
}

type Dashboard struct {
	Products     KindStats       `json:"products"`
	TopBrand     *Top            `json:"topBrand"`
	Accessories  KindStats       `json:"accessories"`
	Sales        SalesStats      `json:"sales"`
	TotalSellers int             `json:"totalSellers"`
	TotalGain    decimal.Decimal `json:"totalGain"`
}

// Fold computes the dashboard. "Today" is the calendar date of now in now's location.
func Fold(products, accessories []domain.CatalogItem, sales []domain.Sale, sellers int, now time.Time) Dashboard {
	d := Dashboard{
		Products:     Catalog(products),
		Accessories:  Catalog(accessories),
		Sales:        Sales(sales, now),
		TotalSellers: sellers,
	}
	d.TopBrand = topOf(products, func(it domain.CatalogItem) string { return it.Brand })
	d.TotalGain = d.Products.TotalValue.Add(d.Accessories.TotalValue)
	return d
}

// Catalog folds the items of a single kind.
func Catalog(items []domain.CatalogItem) KindStats {
	ks := KindStats{
		Count:      len(items),
		TotalValue: decimal.Zero,
		LowStock:   []domain.CatalogItem{},
		OutOfStock: []domain.CatalogItem{},
	}
	for _, it := range items {
		ks.TotalStock += it.Quantity
		ks.TotalValue = ks.TotalValue.Add(it.Value())
		if it.Quantity <= LowStockThreshold {
			ks.LowStock = append(ks.LowStock, it)
		}
		if it.Quantity == 0 {
			ks.OutOfStock = append(ks.OutOfStock, it)
		}
	}
	ks.TopCategory = topOf(items, func(it domain.CatalogItem) string { return it.Category })
	return ks
}

func Sales(sales []domain.Sale, now time.Time) SalesStats {
	ss := SalesStats{Count: len(sales), TotalRevenue: decimal.Zero, TodayRevenue: decimal.Zero}
	y, m, d := now.Date()
	for _, s := range sales {
		total := s.Total()
		ss.TotalRevenue = ss.TotalRevenue.Add(total)
		sy, sm, sd := s.CreatedAt.In(now.Location()).Date()
		if sy == y && sm == m && sd == d {
			ss.TodaySales++
			ss.TodayRevenue = ss.TodayRevenue.Add(total)
		}
	}
	return ss
}

// topOf counts key(item) and returns the most frequent key. Ties go to the key seen
// first in the input, so the winner depends on input order.
func topOf(items []domain.CatalogItem, key func(domain.CatalogItem) string) *Top {
	counts := map[string]int{}
	var order []string
	for _, it := range items {
		k := key(it)
		if k == "" {
			continue
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}
	var top *Top
	for _, k := range order {
		if top == nil || counts[k] > top.Count {
			top = &Top{Name: k, Count: counts[k]}
		}
	}
	return top
}
