package handlers

import "github.com/gofiber/fiber/v2"

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if s := c.Locals("seller"); s != nil {
		data["Seller"] = s
	}
	return c.Render(tmpl, data)
}
