package patient

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/terraincognita07/vocalis/internal/web"
)

var PeerPaths = []string{"/patient/receive_report", "/patient/notifications"}

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
	app.Get("/send-report", handler.AuthRequired, handler.ShowSendReport)
	app.Post("/send-report", handler.AuthRequired, handler.SendReport)
	app.Get("/reports/:id/download", handler.AuthRequired, handler.DownloadReport)

	peer := app.Group("/patient")
	peer.Post("/receive_report", handler.ReceiveReport)
	peer.Get("/notifications", handler.Notifications)
}
