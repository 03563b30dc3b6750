// Package web holds the fiber plumbing shared by the clinician and patient apps.
package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/services"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrUpstreamUnavailable):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func APIError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// RespondError writes err as a JSON error. Unclassified errors are logged and
// answered with fallback so internals never leak.
func RespondError(c *fiber.Ctx, err error, fallback string) error {
	status := StatusFor(err)
	if status == fiber.StatusInternalServerError {
		Logger(c).Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return APIError(c, status, services.Message(err, fallback))
}

func AcceptsJSON(c *fiber.Ctx) bool {
	return strings.Contains(strings.ToLower(c.Get(fiber.HeaderAccept)), fiber.MIMEApplicationJSON)
}

func RedirectOrJSON(c *fiber.Ctx, path string) error {
	if AcceptsJSON(c) {
		return c.JSON(fiber.Map{"ok": true})
	}
	return c.Redirect(path, fiber.StatusSeeOther)
}

func CSRFToken(c *fiber.Ctx) string {
	token, _ := c.Locals(CSRFContextKey).(string)
	return token
}

func SendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}
