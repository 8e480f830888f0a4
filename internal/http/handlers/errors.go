package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"stockbook/internal/auth"
	"stockbook/internal/domain"
	applog "stockbook/internal/log"
	"stockbook/internal/services"
)

const genericError = "Something went wrong. Please try again."

// respond maps domain errors to status codes. Anything unrecognised is logged and reported
// without details.
func respond(c *fiber.Ctx, action string, err error) error {
	var (
		ve  *domain.ValidationError
		iqe *domain.InvalidQuantityError
		nf  *domain.NotFoundError
		inf *domain.ItemNotFoundError
		ise *domain.InsufficientStockError
		ce  *domain.ConflictError
	)
	switch {
	case errors.As(err, &ise):
		applog.Info(c, action+".rejected", map[string]any{"reason": "insufficient_stock", "available": ise.Available})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(), "code": "insufficient_stock", "available": ise.Available,
		})
	case errors.As(err, &iqe):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "code": "invalid_quantity"})
	case errors.As(err, &ve):
		applog.Security(c, "validation.fail", map[string]any{"field": ve.Field, "action": action})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error(), "code": "validation", "field": ve.Field})
	case errors.As(err, &inf), errors.As(err, &nf):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error(), "code": "not_found"})
	case errors.As(err, &ce):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error(), "code": "conflict"})
	case errors.Is(err, services.ErrBadCreds), errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error(), "code": "unauthorized"})
	}
	applog.Error(c, action+".fail", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": genericError})
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "code": "validation", "field": field})
}

// ErrorHandler is the last stop for errors returned by handlers and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := genericError
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code, msg = fe.Code, fe.Message
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
