// handlers/team_routes.go
package handlers

import (
	"esports-arena/middleware"
	"esports-arena/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTeamRoutes(app *fiber.App, teams *services.TeamService, verifier middleware.TokenVerifier) {
	auth := middleware.RequireAuth(verifier)

	app.Post("/teams", auth, teams.Create)
	app.Get("/teams/:id", teams.Get)
	app.Post("/teams/:id/join", auth, teams.Join)
}
