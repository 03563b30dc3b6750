package clinician

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/web"
)

// PeerPaths are called by the patient service and carry no browser session.
var PeerPaths = []string{"/receive-report", "/doctors"}

// IsPeerPath tells the CSRF middleware which requests to skip.
func IsPeerPath(c *fiber.Ctx) bool {
	path := strings.TrimSuffix(c.Path(), "/")
	for _, peerPath := range PeerPaths {
		if path == peerPath {
			return true
		}
	}
	return false
}

func RegisterRoutes(app *fiber.App, handler *Handler) {
	registerPageRoutes(app, handler)
	registerPeerRoutes(app, handler)
}

func registerPageRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/favicon.ico", web.SendNoContent)

	app.Get("/", handler.ShowHome)
	app.Get("/signup", handler.ShowSignupPage)
	app.Post("/signup", handler.Signup)
	app.Get("/login", handler.ShowLoginPage)
	app.Post("/login", handler.Login)
	app.Post("/logout", handler.Logout)

	app.Get("/dashboard", handler.AuthRequired, handler.ShowDashboard)
	app.Get("/profile", handler.AuthRequired, handler.ShowProfile)
	app.Get("/profile/picture", handler.AuthRequired, handler.ProfilePicture)
	app.Get("/download-report", handler.AuthRequired, handler.DownloadReport)
	app.Post("/delete-notification", handler.AuthRequired, handler.DeleteNotification)
	app.Post("/detect-text", handler.AuthRequired, handler.DetectText)
	app.Post("/analyze-report", handler.AuthRequired, handler.AnalyzeReport)
	app.Get("/final-report", handler.AuthRequired, handler.ShowFinalReports)
	app.Post("/final-report", handler.AuthRequired, handler.FinalReport)
	app.Post("/send-to-patient", handler.AuthRequired, handler.SendToPatient)
}

func registerPeerRoutes(app *fiber.App, handler *Handler) {
	app.Post("/receive-report", handler.ReceiveReport)
	app.Get("/doctors", handler.ListDoctors)
}
