// Package patient serves the patient portal and the endpoints the clinician
// service calls into.
package patient

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
	AppName = "Vocalis Patient"

	contextPatientKey = "patient"

	loginAttemptLimit  = 10
	loginAttemptWindow = 15 * time.Minute
)

type Services struct {
	Accounts  *services.PatientAccountService
	Sessions  *services.SessionTokens
	Receipt   *services.ReceiptService
	Directory *services.DirectoryService
}

type Handler struct {
	accounts     *services.PatientAccountService
	sessions     *services.SessionTokens
	receipt      *services.ReceiptService
	directory    *services.DirectoryService
	cookies      web.Cookies
	renderer     *web.Renderer
	loginLimiter *web.AttemptLimiter
	now          func() time.Time
}

func NewHandler(deps Services, cookies web.Cookies) (*Handler, error) {
	if deps.Accounts == nil || deps.Sessions == nil || deps.Receipt == nil || deps.Directory == nil {
		return nil, errors.New("patient handler requires accounts, sessions, receipt and directory services")
	}

	renderer, err := web.NewRenderer(templates.Files, templates.PatientDir, templates.PatientPages, AppName, cookies)
	if err != nil {
		return nil, err
	}

	handler := &Handler{
		accounts:     deps.Accounts,
		sessions:     deps.Sessions,
		receipt:      deps.Receipt,
		directory:    deps.Directory,
		cookies:      cookies,
		loginLimiter: web.NewAttemptLimiter(loginAttemptLimit, loginAttemptWindow),
		now:          time.Now,
	}
	handler.renderer = renderer.WithDefaults(func(c *fiber.Ctx) fiber.Map {
		return fiber.Map{"CurrentPatient": handler.optionalPatient(c)}
	})
	return handler, nil
}

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	patient, err := handler.authenticateRequest(c)
	if err != nil {
		handler.cookies.ClearSession(c)
		if web.AcceptsJSON(c) {
			return web.APIError(c, fiber.StatusUnauthorized, "unauthorized")
		}
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	c.Locals(contextPatientKey, &patient)
	return c.Next()
}

func (handler *Handler) authenticateRequest(c *fiber.Ctx) (models.Patient, error) {
	token := handler.cookies.Session(c)
	if token == "" {
		return models.Patient{}, services.ErrSessionInvalid
	}
	patientID, err := handler.sessions.Resolve(c.UserContext(), token)
	if err != nil {
		return models.Patient{}, err
	}
	return handler.accounts.FindByID(patientID)
}

func currentPatient(c *fiber.Ctx) *models.Patient {
	patient, _ := c.Locals(contextPatientKey).(*models.Patient)
	return patient
}

func (handler *Handler) optionalPatient(c *fiber.Ctx) *models.Patient {
	if patient := currentPatient(c); patient != nil {
		return patient
	}
	patient, err := handler.authenticateRequest(c)
	if err != nil {
		return nil
	}
	c.Locals(contextPatientKey, &patient)
	return &patient
}

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	if web.AcceptsJSON(c) {
		return web.APIError(c, fiber.StatusNotFound, "not found")
	}
	primaryPath := "/login"
	if handler.optionalPatient(c) != nil {
		primaryPath = "/dashboard"
	}
	c.Status(fiber.StatusNotFound)
	return handler.renderer.Render(c, "not_found", fiber.Map{
		"Title":       "Page not found",
		"PrimaryPath": primaryPath,
	})
}
