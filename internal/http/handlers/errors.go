package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "hellosession/internal/log"
	"hellosession/internal/services"
)

var statusMessages = map[int]string{
	fiber.StatusUnauthorized:          "Please log in to continue.",
	fiber.StatusForbidden:             "Security check failed. Please refresh and try again.",
	fiber.StatusNotFound:              "Page not found.",
	fiber.StatusRequestEntityTooLarge: "Request too large.",
	fiber.StatusTooManyRequests:       "Too many attempts. Please try again later.",
}

const genericMessage = "Something went wrong. Please try again."

// ErrorHandler renders every error that reaches the app as the "error" view,
// keeping internals out of the response.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, services.ErrBadCreds):
		code = fiber.StatusUnauthorized
	}

	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Info(c, "request.rejected", map[string]any{"code": code, "err": err.Error()})
	}

	msg, ok := statusMessages[code]
	if !ok {
		msg = genericMessage
	}
	c.Status(code)
	if rerr := c.Render("error", fiber.Map{"Code": code, "Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
