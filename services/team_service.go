package services

import (
	"fmt"
	"time"

	"esports-arena/models"
	"esports-arena/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TeamService struct {
	Store        store.Store
	Gamification *GamificationService
}

func NewTeamService(st store.Store, gamification *GamificationService) *TeamService {
	return &TeamService{Store: st, Gamification: gamification}
}

type teamCreateRequest struct {
	Name    string `json:"name"`
	Tag     string `json:"tag"`
	LogoURL string `json:"logo_url"`
	Bio     string `json:"bio"`
}

// Create makes a team with the caller as owner and first member, then awards
// team_create.
func (s *TeamService) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := c.Locals("user_id").(string)

	var req teamCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required field: name"})
	}

	now := time.Now().UTC()
	team := models.Team{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Tag:       req.Tag,
		OwnerID:   userID,
		LogoURL:   req.LogoURL,
		Bio:       req.Bio,
		Level:     1,
		TotalXP:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Set(ctx, store.TeamKey(team.ID), &team); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create team", "details": err.Error()})
	}

	member := models.TeamMember{
		ID:       uuid.NewString(),
		TeamID:   team.ID,
		UserID:   userID,
		Role:     models.TeamRoleOwner,
		JoinedAt: now,
	}
	if err := s.Store.Set(ctx, store.TeamMemberKey(team.ID, userID), &member); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add owner to team", "details": err.Error()})
	}

	if _, err := s.Gamification.AwardXP(ctx, userID, ActionTeamCreate,
		fmt.Sprintf("Created team: %s", team.Name),
		map[string]interface{}{"team_id": team.ID}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award XP", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": team, "message": "Team created successfully"})
}

// Get returns a team with its member list enriched from profiles.
func (s *TeamService) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	var team models.Team
	found, err := s.Store.Get(ctx, store.TeamKey(id), &team)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch team", "details": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Team not found"})
	}

	members, err := store.ListByPrefix[models.TeamMember](ctx, s.Store, store.TeamMemberPrefix(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch members", "details": err.Error()})
	}
	for i := range members {
		var profile models.UserProfile
		if ok, err := s.Store.Get(ctx, store.ProfileKey(members[i].UserID), &profile); err == nil && ok {
			members[i].User = &models.MemberSummary{
				ID:          profile.ID,
				DisplayName: profile.DisplayName,
				AvatarURL:   profile.AvatarURL,
				Level:       profile.Level,
			}
		}
	}
	team.Members = members

	return c.JSON(fiber.Map{"success": true, "data": team})
}

// Join adds the caller as a regular member and awards team_join.
func (s *TeamService) Join(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	var team models.Team
	found, err := s.Store.Get(ctx, store.TeamKey(id), &team)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch team", "details": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Team not found"})
	}

	if exists, err := s.Store.Get(ctx, store.TeamMemberKey(id, userID), nil); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check membership", "details": err.Error()})
	} else if exists {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Already a member of this team"})
	}

	member := models.TeamMember{
		ID:       uuid.NewString(),
		TeamID:   id,
		UserID:   userID,
		Role:     models.TeamRoleMember,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.Store.Set(ctx, store.TeamMemberKey(id, userID), &member); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join team", "details": err.Error()})
	}

	if _, err := s.Gamification.AwardXP(ctx, userID, ActionTeamJoin,
		fmt.Sprintf("Joined team: %s", team.Name),
		map[string]interface{}{"team_id": id}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award XP", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": member, "message": "Successfully joined team"})
}
