// Package clinician serves the doctor-facing portal and the endpoints the
// patient service calls into.
package clinician

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/models"
	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/templates"
	"github.com/terraincognita07/vocalis/internal/web"
)

const (
	AppName = "Vocalis Clinician"

	contextDoctorKey = "doctor"

	loginAttemptLimit  = 10
	loginAttemptWindow = 15 * time.Minute
)

// Services bundles everything the clinician handlers call into.
type Services struct {
	Accounts   *services.DoctorAccountService
	Sessions   *services.SessionTokens
	Intake     *services.IntakeService
	Extraction *services.ExtractionService
	Finalize   *services.FinalizeService
	Handoff    *services.HandoffService
}

type Handler struct {
	accounts     *services.DoctorAccountService
	sessions     *services.SessionTokens
	intake       *services.IntakeService
	extraction   *services.ExtractionService
	finalize     *services.FinalizeService
	handoff      *services.HandoffService
	cookies      web.Cookies
	renderer     *web.Renderer
	loginLimiter *web.AttemptLimiter
	now          func() time.Time
}

func NewHandler(deps Services, cookies web.Cookies) (*Handler, error) {
	if deps.Accounts == nil || deps.Sessions == nil || deps.Intake == nil {
		return nil, errors.New("clinician handler requires accounts, sessions and intake services")
	}
	if deps.Extraction == nil || deps.Finalize == nil || deps.Handoff == nil {
		return nil, errors.New("clinician handler requires extraction, finalize and handoff services")
	}

	renderer, err := web.NewRenderer(templates.Files, templates.ClinicianDir, templates.ClinicianPages, AppName, cookies)
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		accounts:     deps.Accounts,
		sessions:     deps.Sessions,
		intake:       deps.Intake,
		extraction:   deps.Extraction,
		finalize:     deps.Finalize,
		handoff:      deps.Handoff,
		cookies:      cookies,
		loginLimiter: web.NewAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
		now:          time.Now,
	}
	handler.renderer = renderer.WithDefaults(func(c *fiber.Ctx) fiber.Map {
		return fiber.Map{"CurrentDoctor": handler.optionalDoctor(c)}
	})
	return handler, nil
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	doctor, err := handler.authenticateRequest(c)
	if err != nil {
		handler.cookies.ClearSession(c)
		if web.AcceptsJSON(c) {
			return web.APIError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	c.Locals(contextDoctorKey, &doctor)
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (models.Doctor, error) {
	token := handler.cookies.Session(c)
	if token == "" {
		return models.Doctor{}, services.ErrSessionInvalid
	}
	doctorID, err := handler.sessions.Resolve(c.UserContext(), token)
	if err != nil {
		return models.Doctor{}, err
	}
	return handler.accounts.FindByID(doctorID)
}

// currentDoctor is only valid behind AuthRequired.
func currentDoctor(c *fiber.Ctx) *models.Doctor {
	doctor, _ := c.Locals(contextDoctorKey).(*models.Doctor)
	return doctor
}

// optionalDoctor resolves the session on public pages without requiring one.
func (handler *Handler) optionalDoctor(c *fiber.Ctx) *models.Doctor {
	if doctor := currentDoctor(c); doctor != nil {
		return doctor
	}
	doctor, err := handler.authenticateRequest(c)
	if err != nil {
		return nil
	}
	c.Locals(contextDoctorKey, &doctor)
	return &doctor
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	if web.AcceptsJSON(c) {
		return web.APIError(c, fiber.StatusNotFound, "not found")
	}
	primaryPath := "/login"
	if handler.optionalDoctor(c) != nil {
		primaryPath = "/dashboard"
	}
	c.Status(fiber.StatusNotFound)
	return handler.renderer.Render(c, "not_found", fiber.Map{
		"Title":       "Page not found",
		"PrimaryPath": primaryPath,
	})
}
