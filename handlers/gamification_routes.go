// handlers/gamification_routes.go
package handlers

import (
	"esports-arena/middleware"
	"esports-arena/models"
	"esports-arena/services"
	"esports-arena/store"

	"github.com/gofiber/fiber/v2"
)

func SetupGamificationRoutes(app *fiber.App, gamification *services.GamificationService, verifier middleware.TokenVerifier) {
	auth := middleware.RequireAuth(verifier)

	app.Get("/gamification/xp", auth, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		history, err := gamification.XPHistory(c.UserContext(), userID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch XP history", "details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"success": true, "data": history})
	})

	// Serves the worker's snapshot when one exists; falls back to a live scan
	// on a cold start.
	app.Get("/gamification/leaderboard", func(c *fiber.Ctx) error {
		ctx := c.UserContext()

		var snapshot models.LeaderboardSnapshot
		found, err := gamification.Store.Get(ctx, store.LeaderboardSnapshotKey, &snapshot)
		if err == nil && found {
			return c.JSON(fiber.Map{"success": true, "data": snapshot.Entries})
		}

		entries, err := gamification.Leaderboard(ctx)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to fetch leaderboard", "details": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"success": true, "data": entries})
	})

	app.Get("/gamification/level-progress", auth, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		var profile models.UserProfile
		found, err := gamification.Store.Get(c.UserContext(), store.ProfileKey(userID), &profile)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to calculate level progress", "details": err.Error(),
			})
		}
		if !found {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}

		return c.JSON(fiber.Map{"success": true, "data": gamification.LevelProgress(&profile)})
	})
}
