// Package export writes the catalog and the sale ledger as an .xlsx workbook.
package export

import (
	"io"
	"strconv"
	"time"

	"github.com/tealeg/xlsx"

	"stockbook/internal/domain"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	timeLayout  = "2006-01-02 15:04:05"
)

var itemHeaders = []string{"ID", "Name", "Brand", "Category", "BasePrice", "Quantity", "Value", "Description", "StockUpdatedAt"}

var saleHeaders = []string{"ID", "SellerID", "Kind", "ItemID", "Quantity", "UnitPrice", "Total", "IMEI", "Color", "CreatedAt"}

// Workbook holds what goes into the file. Times are written in Loc.
type Workbook struct {
	Products    []domain.CatalogItem
	Accessories []domain.CatalogItem
	Sales       []domain.Sale
	Loc         *time.Location
}

// Write renders one sheet per kind plus the ledger. Amounts are written as canonical decimal
// strings so spreadsheets never see a float rounding of a price.
func (wb Workbook) Write(w io.Writer) error {
	loc := wb.Loc
	if loc == nil {
		loc = time.UTC
	}
	file := xlsx.NewFile()
	if err := addItems(file, "Products", wb.Products, loc); err != nil {
		return err
	}
	if err := addItems(file, "Accessories", wb.Accessories, loc); err != nil {
		return err
	}
	if err := addSales(file, wb.Sales, loc); err != nil {
		return err
	}
	return file.Write(w)
}

func header(sheet *xlsx.Sheet, cols []string) {
	row := sheet.AddRow()
	for _, h := range cols {
		row.AddCell().SetValue(h)
	}
}

func addItems(file *xlsx.File, name string, items []domain.CatalogItem, loc *time.Location) error {
	sheet, err := file.AddSheet(name)
	if err != nil {
		return err
	}
	header(sheet, itemHeaders)
	for _, it := range items {
		row := sheet.AddRow()
		row.AddCell().SetValue(it.ID)
		row.AddCell().SetValue(it.Name)
		row.AddCell().SetValue(it.Brand)
		row.AddCell().SetValue(it.Category)
		row.AddCell().SetString(it.BasePrice.String())
		row.AddCell().SetInt(it.Quantity)
		row.AddCell().SetString(it.Value().String())
		row.AddCell().SetValue(deref(it.Description))
		row.AddCell().SetValue(it.StockUpdatedAt.In(loc).Format(timeLayout))
	}
	return nil
}

func addSales(file *xlsx.File, sales []domain.Sale, loc *time.Location) error {
	sheet, err := file.AddSheet("Sales")
	if err != nil {
		return err
	}
	header(sheet, saleHeaders)
	for _, s := range sales {
		row := sheet.AddRow()
		row.AddCell().SetValue(s.ID)
		row.AddCell().SetValue(s.SellerID)
		row.AddCell().SetValue(string(s.Item.Kind))
		row.AddCell().SetValue(strconv.FormatInt(s.Item.ID, 10))
		row.AddCell().SetInt(s.Quantity)
		row.AddCell().SetString(s.UnitPrice.String())
		row.AddCell().SetString(s.Total().String())
		row.AddCell().SetValue(deref(s.IMEI))
		row.AddCell().SetValue(deref(s.Color))
		row.AddCell().SetValue(s.CreatedAt.In(loc).Format(timeLayout))
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
