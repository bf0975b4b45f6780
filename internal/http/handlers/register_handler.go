package handlers

import (
	"github.com/gofiber/fiber/v2"

	"hellosession/internal/log"
	"hellosession/internal/metrics"
	"hellosession/internal/services"
)

type RegisterHandler struct {
	Auth    *services.AuthService
	Metrics *metrics.Metrics
}

func (h *RegisterHandler) Form(c *fiber.Ctx) error {
	return render(c, "register", nil)
}

// Register answers "success" or "failed" in plain text. Only presence of the
// three fields is checked here.
func (h *RegisterHandler) Register(c *fiber.Ctx) error {
	name := c.FormValue("name")
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if name == "" || email == "" || pass == "" {
		h.Metrics.Register(metrics.ResultInvalid)
		return c.SendString("failed")
	}

	u, err := h.Auth.Register(name, email, pass)
	if err != nil {
		h.Metrics.Register(metrics.ResultFailed)
		return err
	}

	h.Metrics.Register(metrics.ResultSuccess)
	log.Audit(c, "auth.register", map[string]any{"email": u.Email, "user": u.ID})
	return c.SendString("success")
}
