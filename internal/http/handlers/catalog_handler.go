package handlers

import (
	"github.com/gofiber/fiber/v2"

	"stockbook/internal/domain"
	applog "stockbook/internal/log"
	"stockbook/internal/services"
	"stockbook/internal/validate"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func kindParam(c *fiber.Ctx) (domain.Kind, bool) {
	return domain.ParseKind(c.Params("kind"))
}

func idParam(c *fiber.Ctx) (int64, bool) {
	return validate.ID(c.Params("id"))
}

// GET /api/v1/catalog/:kind
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return badRequest(c, "kind", "kind must be products or accessories")
	}
	items, err := h.Catalog.List(c.UserContext(), kind)
	if err != nil {
		return respond(c, "catalog.list", err)
	}
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

// GET /api/v1/catalog/:kind/:id
func (h *CatalogHandler) Get(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return badRequest(c, "kind", "kind must be products or accessories")
	}
	id, ok := idParam(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	it, err := h.Catalog.Get(c.UserContext(), kind, id)
	if err != nil {
		return respond(c, "catalog.get", err)
	}
	return c.JSON(it)
}

// POST /api/v1/catalog/:kind
func (h *CatalogHandler) Create(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return badRequest(c, "kind", "kind must be products or accessories")
	}
	var in domain.NewItem
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "malformed JSON body")
	}
	it, err := h.Catalog.Add(c.UserContext(), kind, in)
	if err != nil {
		return respond(c, "catalog.add", err)
	}
	applog.Audit(c, "catalog.add", map[string]any{"kind": kind, "id": it.ID, "quantity": it.Quantity})
	return c.Status(fiber.StatusCreated).JSON(it)
}

// PUT /api/v1/catalog/:kind/:id
func (h *CatalogHandler) Update(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return badRequest(c, "kind", "kind must be products or accessories")
	}
	id, ok := idParam(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	var in domain.NewItem
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "malformed JSON body")
	}
	it, err := h.Catalog.Update(c.UserContext(), domain.CatalogItem{
		Kind: kind, ID: id, Name: in.Name, Brand: in.Brand, Category: in.Category, Description: in.Description,
		BasePrice: in.BasePrice, Quantity: in.Quantity, ImageURI: in.ImageURI,
	})
	if err != nil {
		return respond(c, "catalog.update", err)
	}
	applog.Audit(c, "catalog.update", map[string]any{"kind": kind, "id": id, "quantity": it.Quantity})
	return c.JSON(it)
}

// DELETE /api/v1/catalog/:kind/:id
func (h *CatalogHandler) Delete(c *fiber.Ctx) error {
	kind, ok := kindParam(c)
	if !ok {
		return badRequest(c, "kind", "kind must be products or accessories")
	}
	id, ok := idParam(c)
	if !ok {
		return badRequest(c, "id", "invalid id")
	}
	if err := h.Catalog.Delete(c.UserContext(), kind, id); err != nil {
		return respond(c, "catalog.delete", err)
	}
	applog.Audit(c, "catalog.delete", map[string]any{"kind": kind, "id": id})
	return c.SendStatus(fiber.StatusNoContent)
}
