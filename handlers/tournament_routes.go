// handlers/tournament_routes.go
package handlers

import (
	"esports-arena/middleware"
	"esports-arena/models"
	"esports-arena/services"
	"esports-arena/store"

	"github.com/gofiber/fiber/v2"
)

func SetupTournamentRoutes(app *fiber.App, tournaments *services.TournamentService, verifier middleware.TokenVerifier, st store.Store) {
	auth := middleware.RequireAuth(verifier)

	// 🔓 Public routes
	app.Get("/tournaments", tournaments.List)
	app.Get("/tournaments/:id", tournaments.Get)

	// 🔐 Authenticated routes
	app.Post("/tournaments", auth, middleware.RequireRole(st, models.RoleOrganizer), tournaments.Create)
	app.Patch("/tournaments/:id", auth, tournaments.Update)
	app.Delete("/tournaments/:id", auth, tournaments.Delete)

	// Publishing
	app.Post("/tournaments/:id/publish", auth, tournaments.Publish)
	app.Post("/tournaments/:id/publish/schedule", auth, tournaments.SchedulePublish)
	app.Post("/tournaments/:id/banner", auth, tournaments.UploadBanner)

	// Participation
	app.Post("/tournaments/:id/join", auth, middleware.RequireRole(st, models.RoleGamer), tournaments.Join)
	app.Post("/tournaments/:id/complete", auth, tournaments.Complete)
}
