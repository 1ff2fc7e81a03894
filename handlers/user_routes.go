// handlers/user_routes.go
package handlers

import (
	"esports-arena/middleware"
	"esports-arena/models"
	"esports-arena/services"
	"esports-arena/store"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App, users *services.UserService, social *services.SocialService, verifier middleware.TokenVerifier, st store.Store) {
	app.Post("/auth/signup", users.Signup)

	auth := middleware.RequireAuth(verifier)

	// /users/me must be registered before /users/:id.
	app.Get("/users/me", auth, users.GetMe)
	app.Patch("/users/me", auth, users.UpdateMe)
	app.Post("/users/me/avatar", auth, users.UploadAvatar)
	app.Get("/users/:id", users.GetUser)

	app.Get("/social/connections", auth, social.List)
	app.Post("/social/connections", auth, social.Connect)

	// 🔒 Admin-only routes
	admin := app.Group("/admin", auth, middleware.RequireRole(st, models.RoleAdmin))
	admin.Get("/users", users.AdminListUsers)
	admin.Patch("/users/:id/ban", users.AdminSetBan)
}
