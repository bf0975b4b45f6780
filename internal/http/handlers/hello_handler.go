package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HelloHandler serves the protected /hello resource. The password
// middleware guarantees a current user.
type HelloHandler struct{}

func (h *HelloHandler) Index(c *fiber.Ctx) error {
	return render(c, "hello", fiber.Map{"Name": CurrentUser(c).Name})
}

func (h *HelloHandler) Show(c *fiber.Ctx) error {
	return render(c, "hello", fiber.Map{"Name": c.Params("name")})
}
