package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	applog "stockbook/internal/log"
	"stockbook/internal/services"
)

const tokenCookie = "stockbook_token"

// RequireSeller admits requests carrying a valid bearer token.
func RequireSeller(auth *services.AuthService) fiber.Handler {
	return requireSeller(auth, false)
}

// RequireSellerPage also accepts the session cookie set at login. It is only mounted on
// read-only pages, so cookie auth never reaches a state-changing route.
func RequireSellerPage(auth *services.AuthService) fiber.Handler {
	return requireSeller(auth, true)
}

func requireSeller(auth *services.AuthService, allowCookie bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearer(c.Get(fiber.HeaderAuthorization))
		if token == "" && allowCookie {
			token = c.Cookies(tokenCookie)
		}
		if token == "" {
			applog.Security(c, "access.denied", map[string]any{"reason": "missing_token"})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		s, err := auth.CurrentSeller(c.UserContext(), token)
		if err != nil || s == nil {
			applog.Security(c, "access.denied", map[string]any{"reason": "bad_token"})
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		c.Locals("seller", s)
		c.Locals("sellerID", s.ID)
		return c.Next()
	}
}

func bearer(h string) string {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

func sellerID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("sellerID").(int64)
	return id
}
