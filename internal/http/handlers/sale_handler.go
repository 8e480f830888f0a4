package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"stockbook/internal/domain"
	applog "stockbook/internal/log"
	"stockbook/internal/services"
)

type SaleHandler struct {
	Sales   *services.SaleService
	Catalog *services.CatalogService
}

// saleLine mirrors services.Line; an omitted unitPrice falls back to the catalog base price.
type saleLine struct {
	Item      domain.ItemRef      `json:"item"`
	Quantity  int                 `json:"quantity"`
	UnitPrice decimal.NullDecimal `json:"unitPrice"`
	domain.Extras
}

func (h *SaleHandler) toLine(ctx context.Context, in saleLine) (services.Line, error) {
	kind, ok := domain.ParseKind(string(in.Item.Kind))
	if !ok || in.Item.ID <= 0 {
		return services.Line{}, &domain.ValidationError{Field: "item", Reason: "must name a product or an accessory by id"}
	}
	ref := domain.ItemRef{Kind: kind, ID: in.Item.ID}
	price := in.UnitPrice.Decimal
	if !in.UnitPrice.Valid {
		it, err := h.Catalog.Get(ctx, kind, in.Item.ID)
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return services.Line{}, &domain.ItemNotFoundError{Ref: ref}
		}
		if err != nil {
			return services.Line{}, err
		}
		price = it.BasePrice
	}
	return services.Line{Item: ref, Quantity: in.Quantity, UnitPrice: price, Extras: in.Extras}, nil
}

// POST /api/v1/sales
func (h *SaleHandler) Commit(c *fiber.Ctx) error {
	var in saleLine
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "malformed JSON body")
	}
	l, err := h.toLine(c.UserContext(), in)
	if err != nil {
		return respond(c, "sale.commit", err)
	}
	sale, err := h.Sales.CommitSale(c.UserContext(), sellerID(c), l.Item, l.Quantity, l.UnitPrice, l.Extras)
	if err != nil {
		return respond(c, "sale.commit", err)
	}
	applog.Audit(c, "sale.commit", map[string]any{
		"sale_id": sale.ID, "kind": sale.Item.Kind, "item_id": sale.Item.ID, "quantity": sale.Quantity,
	})
	return c.Status(fiber.StatusCreated).JSON(sale)
}

// POST /api/v1/sales/basket
func (h *SaleHandler) CommitBasket(c *fiber.Ctx) error {
	var in struct {
		Lines []saleLine `json:"lines"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "malformed JSON body")
	}
	lines := make([]services.Line, 0, len(in.Lines))
	for _, raw := range in.Lines {
		l, err := h.toLine(c.UserContext(), raw)
		if err != nil {
			return respond(c, "sale.basket", err)
		}
		lines = append(lines, l)
	}
	sales, err := h.Sales.CommitBasket(c.UserContext(), sellerID(c), lines)
	if err != nil {
		return respond(c, "sale.basket", err)
	}
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Total())
	}
	applog.Audit(c, "sale.basket", map[string]any{"lines": len(sales), "total": total.String()})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"sales": sales, "total": total})
}

// GET /api/v1/sales
func (h *SaleHandler) List(c *fiber.Ctx) error {
	sales, err := h.Sales.List(c.UserContext())
	if err != nil {
		return respond(c, "sale.list", err)
	}
	return c.JSON(fiber.Map{"sales": sales, "count": len(sales)})
}
