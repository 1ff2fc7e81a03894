// services/users.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"esports-arena/models"
	"esports-arena/store"
	"esports-arena/utils"

	"github.com/gofiber/fiber/v2"
)

// IdentityProvider is the slice of the auth service that signup needs.
type IdentityProvider interface {
	CreateAccount(ctx context.Context, email, password string, metadata map[string]interface{}) (string, error)
}

type UserService struct {
	Store        store.Store
	Auth         IdentityProvider
	Gamification *GamificationService
}

func NewUserService(st store.Store, auth IdentityProvider, gamification *GamificationService) *UserService {
	return &UserService{Store: st, Auth: auth, Gamification: gamification}
}

type signupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// Signup provisions the account with the identity provider, seeds the profile
// document and fires the account_created award.
func (s *UserService) Signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Email == "" || req.Password == "" || req.Role == "" || req.DisplayName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields: email, password, role, display_name",
		})
	}
	if req.Role != string(models.RoleGamer) && req.Role != string(models.RoleOrganizer) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": `Invalid role. Must be "gamer" or "organizer"`,
		})
	}

	ctx := c.UserContext()
	userID, err := s.Auth.CreateAccount(ctx, req.Email, req.Password, map[string]interface{}{
		"role":         req.Role,
		"display_name": req.DisplayName,
	})
	if err != nil {
		log.Printf("❌ Signup failed for %s: %v", req.Email, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to create account", "details": err.Error()})
	}

	now := time.Now().UTC()
	profile := models.UserProfile{
		ID:              userID,
		Role:            models.UserRole(req.Role),
		DisplayName:     req.DisplayName,
		Email:           req.Email,
		AvatarURL:       nil,
		Level:           1,
		CurrentXP:       0,
		TotalXP:         0,
		InterestedGames: []string{},
		ContactInfo:     map[string]interface{}{},
		Bio:             nil,
		CreatedAt:       now,
		UpdatedAt:       now,
		IsBanned:        false,
	}
	if err := s.Store.Set(ctx, store.ProfileKey(userID), &profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create profile", "details": err.Error()})
	}

	res, err := s.Gamification.AwardXP(ctx, userID, ActionAccountCreated, "Account created successfully", nil)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award signup XP", "details": err.Error()})
	}
	if res != nil {
		profile = *res.Profile
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"user":    fiber.Map{"id": userID, "email": req.Email},
			"profile": profile,
		},
		"message": "Account created successfully",
	})
}

// GetMe returns the caller's profile with the completion percentage refreshed
// and persisted, mirroring how the platform has always served this route.
func (s *UserService) GetMe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := c.Locals("user_id").(string)

	var profile models.UserProfile
	found, err := s.Store.Get(ctx, store.ProfileKey(userID), &profile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile", "details": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	}

	completion, err := s.Gamification.CompletionForProfile(ctx, &profile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to score profile", "details": err.Error()})
	}
	profile.ProfileCompletionPercentage = completion
	if err := s.Store.Set(ctx, store.ProfileKey(userID), &profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to persist profile", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": profile})
}

type profileUpdateRequest struct {
	DisplayName     *string                 `json:"display_name"`
	Bio             *string                 `json:"bio"`
	InterestedGames *[]string               `json:"interested_games"`
	ContactInfo     *map[string]interface{} `json:"contact_info"`
	AvatarURL       *string                 `json:"avatar_url"`
}

// UpdateMe patches the allowed profile fields. Completion awards fire only on
// an empty→filled transition, which is what keeps them single-shot without the
// engine itself deduplicating.
func (s *UserService) UpdateMe(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := c.Locals("user_id").(string)

	var req profileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	var profile models.UserProfile
	found, err := s.Store.Get(ctx, store.ProfileKey(userID), &profile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile", "details": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	}

	hadBio := profile.HasBio()
	hadGames := profile.HasGames()
	hadContact := profile.HasContactInfo()

	if req.DisplayName != nil {
		profile.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.InterestedGames != nil {
		profile.InterestedGames = *req.InterestedGames
	}
	if req.ContactInfo != nil {
		profile.ContactInfo = *req.ContactInfo
	}
	if req.AvatarURL != nil {
		profile.AvatarURL = req.AvatarURL
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := s.Store.Set(ctx, store.ProfileKey(userID), &profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile", "details": err.Error()})
	}

	if !hadBio && profile.Bio != nil && len(*profile.Bio) > 10 {
		if _, err := s.Gamification.AwardXP(ctx, userID, ActionProfileBio, "Added bio to profile", nil); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award XP", "details": err.Error()})
		}
	}
	if !hadGames && profile.HasGames() {
		if _, err := s.Gamification.AwardXP(ctx, userID, ActionProfileGames, "Added interested games", nil); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award XP", "details": err.Error()})
		}
	}
	if !hadContact && profile.HasContactInfo() {
		if _, err := s.Gamification.AwardXP(ctx, userID, ActionProfileContact, "Added contact information", nil); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award XP", "details": err.Error()})
		}
	}

	// Awards may have advanced XP and level; serve the fresh document.
	if _, err := s.Store.Get(ctx, store.ProfileKey(userID), &profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": profile, "message": "Profile updated successfully"})
}

// GetUser serves the public subset of any profile.
func (s *UserService) GetUser(c *fiber.Ctx) error {
	userID := c.Params("id")

	var profile models.UserProfile
	found, err := s.Store.Get(c.UserContext(), store.ProfileKey(userID), &profile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user", "details": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"success": true, "data": profile.PublicView()})
}

// UploadAvatar stores an avatar image and sets avatar_url. The first avatar a
// user ever sets awards profile_avatar.
func (s *UserService) UploadAvatar(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := c.Locals("user_id").(string)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}

	var profile models.UserProfile
	found, err := s.Store.Get(ctx, store.ProfileKey(userID), &profile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile", "details": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	}

	url, err := utils.StoreImage(fileHeader, fmt.Sprintf("avatars/%s", userID))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to store avatar", "details": err.Error()})
	}

	hadAvatar := profile.AvatarURL != nil && *profile.AvatarURL != ""
	profile.AvatarURL = &url
	profile.UpdatedAt = time.Now().UTC()
	if err := s.Store.Set(ctx, store.ProfileKey(userID), &profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile", "details": err.Error()})
	}

	if !hadAvatar {
		if _, err := s.Gamification.AwardXP(ctx, userID, ActionProfileAvatar, "Uploaded profile avatar", nil); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award XP", "details": err.Error()})
		}
		if _, err := s.Store.Get(ctx, store.ProfileKey(userID), &profile); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch profile", "details": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": profile, "message": "Avatar updated"})
}

// AdminListUsers returns every profile, banned ones included.
func (s *UserService) AdminListUsers(c *fiber.Ctx) error {
	users, err := store.ListByPrefix[models.UserProfile](c.UserContext(), s.Store, store.ProfilePrefix)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users", "details": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "data": users, "count": len(users)})
}

type banRequest struct {
	Banned bool `json:"banned"`
}

// AdminSetBan toggles is_banned on a profile. Banned users drop off the
// leaderboard but keep their ledger.
func (s *UserService) AdminSetBan(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID := c.Params("id")

	var req banRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	var profile models.UserProfile
	found, err := s.Store.Get(ctx, store.ProfileKey(userID), &profile)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user", "details": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	profile.IsBanned = req.Banned
	profile.UpdatedAt = time.Now().UTC()
	if err := s.Store.Set(ctx, store.ProfileKey(userID), &profile); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user ban status", "details": err.Error()})
	}

	message := "User unbanned"
	if req.Banned {
		message = "User banned"
	}
	return c.JSON(fiber.Map{"success": true, "data": profile, "message": message})
}
