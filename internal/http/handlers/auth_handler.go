package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"hellosession/internal/log"
	"hellosession/internal/metrics"
	"hellosession/internal/services"
)

type AuthHandler struct {
	Auth    *services.AuthService
	Metrics *metrics.Metrics
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", nil)
}

// hasFormField reports whether key was sent at all, even with an empty value.
func hasFormField(c *fiber.Ctx, key string) bool {
	if c.Request().PostArgs().Has(key) {
		return true
	}
	if form, err := c.MultipartForm(); err == nil {
		_, ok := form.Value[key]
		return ok
	}
	return false
}

// Login expects the Sessions and Persist middlewares in front of it. Only
// absent fields are answered locally; empty ones go to authentication.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if !hasFormField(c, "email") || !hasFormField(c, "password") {
		h.Metrics.Login(metrics.ResultInvalid)
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": "missing_fields"})
		return c.SendString("Bad credentials")
	}

	u, err := h.Auth.Authenticate(email, pass)
	if err != nil {
		h.Metrics.Login(metrics.ResultFailed)
		log.Security(c, "auth.login.fail", map[string]any{"email": email})
		return fmt.Errorf("login %s: %w", email, err)
	}
	authenticate(c, u)

	h.Metrics.Login(metrics.ResultSuccess)
	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/hello")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if sess := currentSession(c); sess != nil {
		if err := sess.Destroy(); err != nil {
			return err
		}
	}
	if u := CurrentUser(c); u != nil {
		log.Audit(c, "auth.logout", map[string]any{"email": u.Email})
	}
	authenticate(c, nil)
	return c.Redirect("/")
}
