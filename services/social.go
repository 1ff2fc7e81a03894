package services

import (
	"fmt"
	"sort"
	"time"

	"esports-arena/models"
	"esports-arena/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SocialService struct {
	Store        store.Store
	Gamification *GamificationService
}

func NewSocialService(st store.Store, gamification *GamificationService) *SocialService {
	return &SocialService{Store: st, Gamification: gamification}
}

// List returns the caller's social connections.
func (s *SocialService) List(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)

	connections, err := store.ListByPrefix[models.SocialConnection](c.UserContext(), s.Store, store.SocialConnectionPrefix(userID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch connections", "details": err.Error()})
	}
	sort.Slice(connections, func(i, j int) bool {
		return connections[i].ConnectedAt.After(connections[j].ConnectedAt)
	})

	return c.JSON(fiber.Map{"success": true, "data": connections})
}

type connectRequest struct {
	Provider         models.SocialProvider `json:"provider"`
	ProviderID       string                `json:"provider_id"`
	ProviderUsername string                `json:"provider_username"`
}

// Connect links an external gaming identity. One connection per provider;
// each new provider link awards social_connect.
func (s *SocialService) Connect(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := c.Locals("user_id").(string)

	var req connectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	switch req.Provider {
	case models.ProviderDiscord, models.ProviderTwitch, models.ProviderSteam:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": `Invalid provider. Must be "discord", "twitch" or "steam"`})
	}
	if req.ProviderID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required field: provider_id"})
	}

	existing, err := store.ListByPrefix[models.SocialConnection](ctx, s.Store, store.SocialConnectionPrefix(userID))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch connections", "details": err.Error()})
	}
	for _, conn := range existing {
		if conn.Provider == req.Provider {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("Already connected to %s", req.Provider)})
		}
	}

	connection := models.SocialConnection{
		ID:               uuid.NewString(),
		UserID:           userID,
		Provider:         req.Provider,
		ProviderID:       req.ProviderID,
		ProviderUsername: req.ProviderUsername,
		ConnectedAt:      time.Now().UTC(),
	}
	if err := s.Store.Set(ctx, store.SocialConnectionKey(userID, connection.ID), &connection); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save connection", "details": err.Error()})
	}

	if _, err := s.Gamification.AwardXP(ctx, userID, ActionSocialConnect,
		fmt.Sprintf("Connected %s account", req.Provider),
		map[string]interface{}{"provider": string(req.Provider)}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award XP", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": connection, "message": "Connection added"})
}
