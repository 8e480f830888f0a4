package handlers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"stockbook/internal/export"
	applog "stockbook/internal/log"
	"stockbook/internal/services"
)

type ExportHandler struct {
	Dashboard *services.DashboardService
	Loc       *time.Location
	Now       func() time.Time
}

// GET /api/v1/export/catalog.xlsx
func (h *ExportHandler) Catalog(c *fiber.Ctx) error {
	snap, err := h.Dashboard.Snapshot(c.UserContext())
	if err != nil {
		return respond(c, "export.catalog", err)
	}
	var buf bytes.Buffer
	wb := export.Workbook{Products: snap.Products, Accessories: snap.Accessories, Sales: snap.Sales, Loc: h.Loc}
	if err := wb.Write(&buf); err != nil {
		return respond(c, "export.catalog", err)
	}
	name := fmt.Sprintf("stockbook-%s.xlsx", h.Now().In(h.Loc).Format("20060102"))
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	applog.Audit(c, "export.catalog", map[string]any{"bytes": buf.Len()})
	return c.Send(buf.Bytes())
}
