package patient

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/services"
	"github.com/terraincognita07/vocalis/internal/web"
)

const (
	errInvalidCredentials = "invalid credentials"
	errTooManyAttempts    = "too many login attempts, try again later"
)

func (handler *Handler) ShowHome(c *fiber.Ctx) error {
	return handler.renderer.Render(c, "home", fiber.Map{"Title": AppName})
}

func (handler *Handler) ShowSignupPage(c *fiber.Ctx) error {
	return handler.renderer.Render(c, "signup", fiber.Map{
		"Title": "Patient sign up",
		"Form":  services.PatientSignup{},
	})
}

func (handler *Handler) Signup(c *fiber.Ctx) error {
	input := services.PatientSignup{
		Username: strings.TrimSpace(c.FormValue("username")),
		Password: c.FormValue("password"),
		Email:    strings.TrimSpace(c.FormValue("email")),
	}

	if _, err := handler.accounts.Signup(input); err != nil {
		status := web.StatusFor(err)
		if status == fiber.StatusInternalServerError {
			web.Logger(c).Error().Err(err).Msg("patient signup failed")
		}
		input.Password = ""
		c.Status(status)
		return handler.renderer.Render(c, "signup", fiber.Map{
			"Title": "Patient sign up",
			"Form":  input,
			"Error": services.Message(err, "failed to create the account"),
		})
	}

	handler.cookies.SetFlash(c, web.Flash{Success: "Account created, please log in.", Username: input.Username})
	return c.Redirect("/login", fiber.StatusSeeOther)
}

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if handler.optionalPatient(c) != nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return handler.renderer.Render(c, "login", fiber.Map{"Title": "Patient login"})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	limiterKey := web.RequestLimiterKey(c)
	now := handler.now()

	if handler.loginLimiter.TooManyRecent(limiterKey, now) {
		handler.cookies.SetFlash(c, web.Flash{Error: errTooManyAttempts, Username: username})
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	patient, err := handler.accounts.Authenticate(username, c.FormValue("password"))
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			web.Logger(c).Error().Err(err).Msg("patient login failed")
		}
		handler.loginLimiter.AddFailure(limiterKey, now)
		handler.cookies.SetFlash(c, web.Flash{Error: errInvalidCredentials, Username: username})
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	handler.loginLimiter.Reset(limiterKey)

	token, expiresAt, err := handler.sessions.Issue(c.UserContext(), patient.ID)
	if err != nil {
		web.Logger(c).Error().Err(err).Uint("patient_id", patient.ID).Msg("issue session failed")
		handler.cookies.SetFlash(c, web.Flash{Error: "failed to start the session", Username: username})
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	handler.cookies.SetSession(c, token, expiresAt)
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

func (handler *Handler) Logout(c *fiber.Ctx) error {
	if token := handler.cookies.Session(c); token != "" {
		if err := handler.sessions.Revoke(c.UserContext(), token); err != nil {
			web.Logger(c).Warn().Err(err).Msg("revoke session failed")
		}
	}
	handler.cookies.ClearSession(c)
	return web.RedirectOrJSON(c, "/login")
}
