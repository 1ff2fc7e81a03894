package middleware

import (
	"context"
	"log"
	"strings"

	"esports-arena/models"
	"esports-arena/store"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier resolves an opaque bearer token to a user id.
// Implemented by services.AuthServiceClient.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, accessToken string) (string, error)
}

// RequireAuth validates the Authorization bearer token against the identity
// provider and attaches the user id to the request context.
func RequireAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == "" || token == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized - No token provided",
			})
		}

		userID, err := verifier.VerifyToken(c.UserContext(), token)
		if err != nil {
			log.Printf("🚫 [AUTH] Token rejected for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized - Invalid token",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// RequireRole loads the caller's profile from the store and rejects the
// request unless its role is one of the given roles. Must run after
// RequireAuth. The loaded profile is attached for handlers.
func RequireRole(st store.Store, roles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)

		var profile models.UserProfile
		found, err := st.Get(c.UserContext(), store.ProfileKey(userID), &profile)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load profile", "details": err.Error(),
			})
		}

		allowed := false
		if found {
			for _, role := range roles {
				if profile.Role == role {
					allowed = true
					break
				}
			}
		}
		if !allowed {
			names := make([]string, len(roles))
			for i, role := range roles {
				names[i] = string(role)
			}
			log.Printf("🚫 [AUTH] user=%s denied on %s (requires %s)", userID, c.Path(), strings.Join(names, " or "))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden - Requires role: " + strings.Join(names, " or "),
			})
		}

		c.Locals("profile", &profile)
		return c.Next()
	}
}
