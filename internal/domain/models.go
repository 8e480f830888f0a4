package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind partitions the catalog into products and accessories.
type Kind string

const (
	KindProduct   Kind = "product"
	KindAccessory Kind = "accessory"
)

var categories = map[Kind][]string{
	KindProduct:   {"smartphone", "laptop", "tablet", "autre"},
	KindAccessory: {"housse", "cable", "chargeur", "ecouteur", "boitier", "autre"},
}

// ParseKind accepts the singular and plural forms used in URLs.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "product", "products":
		return KindProduct, true
	case "accessory", "accessories":
		return KindAccessory, true
	}
	return "", false
}

// Categories returns the enumerated categories allowed for k.
func (k Kind) Categories() []string { return categories[k] }

// ValidCategory reports whether c belongs to the kind's category set.
func (k Kind) ValidCategory(c string) bool {
	for _, x := range categories[k] {
		if x == c {
			return true
		}
	}
	return false
}

// ItemRef points at exactly one catalog item.
type ItemRef struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

// CatalogItem is a Product or an Accessory. Brand is only set for products.
type CatalogItem struct {
	Kind           Kind            `json:"kind"`
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand,omitempty"`
	Category       string          `json:"category"`
	Description    *string         `json:"description,omitempty"`
	BasePrice      decimal.Decimal `json:"basePrice"`
	Quantity       int             `json:"quantity"`
	ImageURI       *string         `json:"imageUri,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	StockUpdatedAt time.Time       `json:"stockUpdatedAt"`
}

func (it CatalogItem) Ref() ItemRef { return ItemRef{Kind: it.Kind, ID: it.ID} }

// Value is basePrice × quantity.
func (it CatalogItem) Value() decimal.Decimal {
	return it.BasePrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// NewItem is the input of an add-item operation.
type NewItem struct {
	Name        string          `json:"name" validate:"required"`
	Brand       string          `json:"brand"`
	Category    string          `json:"category" validate:"required"`
	Description *string         `json:"description"`
	BasePrice   decimal.Decimal `json:"basePrice" validate:"decimal_gte0"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	ImageURI    *string         `json:"imageUri"`
}

// Extras are the optional descriptive fields captured with a sale.
type Extras struct {
	Color         *string `json:"color,omitempty"`
	IMEI          *string `json:"imei,omitempty"`
	RAM           *int    `json:"ram,omitempty"`
	ROM           *int    `json:"rom,omitempty"`
	APN           *int    `json:"apn,omitempty"`
	AttachmentURI *string `json:"attachmentUri,omitempty"`
}

// Sale is an immutable record of one stock-decrementing transaction.
type Sale struct {
	ID        int64           `json:"id"`
	SellerID  int64           `json:"sellerId"`
	Item      ItemRef         `json:"item"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Extras
	CreatedAt time.Time `json:"createdAt"`
}

// Total is unitPrice × quantity.
func (s Sale) Total() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}
