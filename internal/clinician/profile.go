package clinician

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/web"
)

func (handler *Handler) ShowProfile(c *fiber.Ctx) error {
	return handler.renderer.Render(c, "profile", fiber.Map{
		"Title":  "Profile",
		"Doctor": currentDoctor(c),
	})
}

func (handler *Handler) ProfilePicture(c *fiber.Ctx) error {
	doctor := currentDoctor(c)
	if !doctor.HasProfilePicture() {
		return web.APIError(c, fiber.StatusNotFound, "no profile picture")
	}
	c.Set(fiber.HeaderContentType, http.DetectContentType(doctor.ProfilePicture))
	c.Set(fiber.HeaderCacheControl, "private, max-age=300")
	return c.Send(doctor.ProfilePicture)
}
