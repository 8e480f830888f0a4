package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "stockbook/internal/log"
)

// Limits are the rate limits applied per client IP.
type Limits struct {
	API   int // requests per minute on the whole API
	Login int // attempts per 10 minutes on login and signup
}

var DefaultLimits = Limits{API: 120, Login: 5}

// NewApp builds the fiber app with the middleware stack shared by every route.
func NewApp(views fiber.Views, accessLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        views,
		ErrorHandler: ErrorHandler,
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	app.Use(recover.New())
	app.Use(requestid.New())
	if accessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	return app
}

// Routes mounts every endpoint on app.
func Routes(app *fiber.App, d *Deps, lim Limits) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })

	api := app.Group("/api/v1", limiter.New(limiter.Config{
		Max:        lim.API,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.api.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	// Auth routes (throttled)
	authLimiter := limiter.New(limiter.Config{
		Max:        lim.Login,
		Expiration: 10 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|auth"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many attempts. Please try again later."})
		},
	})
	api.Post("/sellers", authLimiter, d.AuthHandler.Signup)
	api.Post("/login", authLimiter, d.AuthHandler.Login)
	api.Post("/logout", d.AuthHandler.Logout)

	secured := api.Group("", RequireSeller(d.AuthService))
	secured.Get("/me", d.AuthHandler.Me)
	secured.Put("/me/passcode", d.AuthHandler.ChangePasscode)

	// Catalog
	secured.Get("/catalog/:kind", d.CatalogHandler.List)
	secured.Post("/catalog/:kind", d.CatalogHandler.Create)
	secured.Get("/catalog/:kind/:id", d.CatalogHandler.Get)
	secured.Put("/catalog/:kind/:id", d.CatalogHandler.Update)
	secured.Delete("/catalog/:kind/:id", d.CatalogHandler.Delete)

	// Sales
	secured.Post("/sales", d.SaleHandler.Commit)
	secured.Post("/sales/basket", d.SaleHandler.CommitBasket)
	secured.Get("/sales", d.SaleHandler.List)

	secured.Get("/dashboard", d.DashboardHandler.JSON)
	secured.Get("/export/catalog.xlsx", d.ExportHandler.Catalog)

	// Pages
	app.Get("/dashboard", RequireSellerPage(d.AuthService), d.DashboardHandler.Page)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})
}
