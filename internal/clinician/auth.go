package clinician

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
		"Title": "Doctor sign up",
		"Form":  services.DoctorSignup{},
	})
}

func (handler *Handler) Signup(c *fiber.Ctx) error {
	input := services.DoctorSignup{
		Username:      strings.TrimSpace(c.FormValue("username")),
		Password:      c.FormValue("password"),
		Name:          strings.TrimSpace(c.FormValue("name")),
		Email:         strings.TrimSpace(c.FormValue("email")),
		Qualification: strings.TrimSpace(c.FormValue("qualification")),
		Position:      strings.TrimSpace(c.FormValue("position")),
	}

	picture, _, err := web.ReadFormFile(c, "profile_picture")
	switch {
	case err == nil:
		input.ProfilePicture = picture
	case !errors.Is(err, web.ErrMissingFile):
		return handler.renderSignupError(c, input, fiber.StatusBadRequest, "the profile picture could not be read")
	}

	if _, err := handler.accounts.Signup(input); err != nil {
		status := web.StatusFor(err)
		if status == fiber.StatusInternalServerError {
			web.Logger(c).Error().Err(err).Msg("doctor signup failed")
		}
		return handler.renderSignupError(c, input, status, services.Message(err, "failed to create the account"))
	}

	handler.cookies.SetFlash(c, web.Flash{Success: "Account created, please log in.", Username: input.Username})
	return c.Redirect("/login", fiber.StatusSeeOther)
}

func (handler *Handler) renderSignupError(c *fiber.Ctx, input services.DoctorSignup, status int, message string) error {
	input.Password = ""
	input.ProfilePicture = nil
	c.Status(status)
	return handler.renderer.Render(c, "signup", fiber.Map{
		"Title": "Doctor sign up",
		"Form":  input,
		"Error": message,
	})
}

func (handler *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if handler.optionalDoctor(c) != nil {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return handler.renderer.Render(c, "login", fiber.Map{"Title": "Doctor login"})
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	username := strings.TrimSpace(c.FormValue("username"))
	limiterKey := web.RequestLimiterKey(c)
	now := handler.now()

	if handler.loginLimiter.TooManyRecent(limiterKey, now) {
		handler.cookies.SetFlash(c, web.Flash{Error: errTooManyAttempts, Username: username})
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	doctor, err := handler.accounts.Authenticate(username, c.FormValue("password"))
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			web.Logger(c).Error().Err(err).Msg("doctor login failed")
		}
		handler.loginLimiter.AddFailure(limiterKey, now)
		handler.cookies.SetFlash(c, web.Flash{Error: errInvalidCredentials, Username: username})
		return c.Redirect("/login", fiber.StatusSeeOther)
	}
	handler.loginLimiter.Reset(limiterKey)

	token, expiresAt, err := handler.sessions.Issue(c.UserContext(), doctor.ID)
	if err != nil {
		web.Logger(c).Error().Err(err).Uint("doctor_id", doctor.ID).Msg("issue session failed")
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
