package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"stockbook/internal/domain"
	"stockbook/internal/log"
	"stockbook/internal/services"
	"stockbook/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
	TTL  time.Duration
}

type credentials struct {
	Name     string `json:"name"`
	Passcode string `json:"passcode"`
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, sess *services.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Secure:   false, // set true behind HTTPS
	})
}

// POST /api/v1/sellers
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "malformed JSON body")
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return badRequest(c, "name", "name must be 1-50 characters")
	}
	sess, err := h.Auth.Signup(c.UserContext(), domain.NewSeller{Name: name, Passcode: in.Passcode})
	if errors.Is(err, services.ErrBadCreds) {
		log.Security(c, "auth.signup.taken", map[string]any{"name": name})
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "name already taken", "code": "conflict"})
	}
	if err != nil {
		return respond(c, "auth.signup", err)
	}
	h.setCookie(c, sess)
	log.Audit(c, "auth.signup.success", map[string]any{"seller_id": sess.Seller.ID})
	return c.Status(fiber.StatusCreated).JSON(sess)
}

// POST /api/v1/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in credentials
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "malformed JSON body")
	}
	name, ok := validate.Name(in.Name)
	if !ok || !validate.Passcode(in.Passcode) {
		log.Security(c, "auth.login.fail", map[string]any{"name": in.Name, "reason": "bad_format"})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": services.ErrBadCreds.Error()})
	}
	sess, err := h.Auth.Login(c.UserContext(), name, in.Passcode)
	if errors.Is(err, services.ErrBadCreds) {
		log.Security(c, "auth.login.fail", map[string]any{"name": name})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return respond(c, "auth.login", err)
	}
	h.setCookie(c, sess)
	log.Audit(c, "auth.login.success", map[string]any{"seller_id": sess.Seller.ID})
	return c.JSON(sess)
}

// POST /api/v1/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
	return c.SendStatus(fiber.StatusNoContent)
}

// GET /api/v1/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(c.Locals("seller"))
}

// PUT /api/v1/me/passcode
func (h *AuthHandler) ChangePasscode(c *fiber.Ctx) error {
	var in struct {
		Passcode string `json:"passcode"`
	}
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "body", "malformed JSON body")
	}
	if err := h.Auth.ChangePasscode(c.UserContext(), sellerID(c), in.Passcode); err != nil {
		return respond(c, "auth.passcode", err)
	}
	log.Audit(c, "auth.passcode.change", nil)
	return c.SendStatus(fiber.StatusNoContent)
}
