// handlers/notification_routes.go
package handlers

import (
	"esports-arena/middleware"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupNotificationRoutes(app *fiber.App, notifications *services.NotificationService, verifier middleware.TokenVerifier) {
	auth := middleware.RequireAuth(verifier)

	app.Get("/notifications", auth, notifications.List)
	app.Patch("/notifications/:id/read", auth, notifications.MarkRead)
}
