package handlers

import "github.com/gofiber/fiber/v2"

type PagesHandler struct{}

func (h *PagesHandler) Welcome(c *fiber.Ctx) error {
	return render(c, "welcome", nil)
}

// Info echoes the raw request back as text.
func (h *PagesHandler) Info(c *fiber.Ctx) error {
	return c.SendString(c.Request().String())
}

func (h *PagesHandler) NotFound(c *fiber.Ctx) error {
	return fiber.ErrNotFound
}
