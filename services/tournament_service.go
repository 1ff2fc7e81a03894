package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"esports-arena/models"
	"esports-arena/store"
	"esports-arena/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type TournamentService struct {
	Store        store.Store
	Gamification *GamificationService
}

func NewTournamentService(st store.Store, gamification *GamificationService) *TournamentService {
	return &TournamentService{Store: st, Gamification: gamification}
}

// List returns tournaments, optionally filtered by ?status= and ?game=,
// newest first.
func (s *TournamentService) List(c *fiber.Ctx) error {
	status := c.Query("status")
	game := c.Query("game")

	tournaments, err := store.ListByPrefix[models.Tournament](c.UserContext(), s.Store, store.TournamentPrefix)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tournaments", "details": err.Error()})
	}

	filtered := tournaments[:0]
	for _, t := range tournaments {
		if status != "" && string(t.Status) != status {
			continue
		}
		if game != "" && !strings.Contains(strings.ToLower(t.Game), strings.ToLower(game)) {
			continue
		}
		filtered = append(filtered, t)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	return c.JSON(fiber.Map{"success": true, "data": filtered, "count": len(filtered)})
}

type tournamentCreateRequest struct {
	Name              string                  `json:"name"`
	Description       string                  `json:"description"`
	Game              string                  `json:"game"`
	Format            models.TournamentFormat `json:"format"`
	MaxParticipants   int                     `json:"max_participants"`
	RegistrationStart string                  `json:"registration_start"`
	RegistrationEnd   string                  `json:"registration_end"`
	TournamentStart   string                  `json:"tournament_start"`
	TournamentEnd     string                  `json:"tournament_end"`
	Rules             string                  `json:"rules"`
	DiscordLink       string                  `json:"discord_link"`
	PrizePool         float64                 `json:"prize_pool"`
	BannerURL         string                  `json:"banner_url"`
	TeamSize          int                     `json:"team_size"`
	CheckInRequired   bool                    `json:"check_in_required"`
}

// Create opens a draft tournament owned by the calling organizer and fires the
// tournament_create award.
func (s *TournamentService) Create(c *fiber.Ctx) error {
	ctx := c.UserContext()
	userID, _ := c.Locals("user_id").(string)

	var req tournamentCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Name == "" || req.Game == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields: name, game"})
	}
	if req.Format == "" {
		req.Format = models.FormatSingleElimination
	}
	if req.MaxParticipants <= 0 {
		req.MaxParticipants = 16
	}
	if req.TeamSize <= 0 {
		req.TeamSize = 1
	}
	if req.RegistrationStart == "" {
		req.RegistrationStart = time.Now().UTC().Format(time.RFC3339)
	}

	now := time.Now().UTC()
	tournament := models.Tournament{
		ID:                uuid.NewString(),
		OrganizerID:       userID,
		Name:              req.Name,
		Slug:              slug.Make(req.Name),
		Description:       req.Description,
		Game:              req.Game,
		Format:            req.Format,
		MaxParticipants:   req.MaxParticipants,
		RegistrationStart: req.RegistrationStart,
		RegistrationEnd:   req.RegistrationEnd,
		TournamentStart:   req.TournamentStart,
		TournamentEnd:     req.TournamentEnd,
		Status:            models.TournamentDraft,
		Rules:             req.Rules,
		DiscordLink:       req.DiscordLink,
		PrizePool:         req.PrizePool,
		BannerURL:         req.BannerURL,
		TeamSize:          req.TeamSize,
		CheckInRequired:   req.CheckInRequired,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.Store.Set(ctx, store.TournamentKey(tournament.ID), &tournament); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create tournament", "details": err.Error()})
	}

	if _, err := s.Gamification.AwardXP(ctx, userID, ActionTournamentCreate,
		fmt.Sprintf("Created tournament: %s", tournament.Name),
		map[string]interface{}{"tournament_id": tournament.ID}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award XP", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": tournament, "message": "Tournament created successfully"})
}

// Get returns one tournament enriched with its organizer summary and the
// current participant list.
func (s *TournamentService) Get(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	var tournament models.Tournament
	found, err := s.Store.Get(ctx, store.TournamentKey(id), &tournament)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tournament", "details": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
	}

	var organizer models.UserProfile
	if ok, err := s.Store.Get(ctx, store.ProfileKey(tournament.OrganizerID), &organizer); err == nil && ok {
		tournament.Organizer = &models.OrganizerSummary{
			ID:          organizer.ID,
			DisplayName: organizer.DisplayName,
			AvatarURL:   organizer.AvatarURL,
		}
	}

	participants, err := store.ListByPrefix[models.TournamentParticipant](ctx, s.Store, store.ParticipantPrefix(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch participants", "details": err.Error()})
	}
	tournament.Participants = participants
	count := len(participants)
	tournament.CurrentParticipants = &count

	return c.JSON(fiber.Map{"success": true, "data": tournament})
}

type tournamentUpdateRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Rules           *string  `json:"rules"`
	DiscordLink     *string  `json:"discord_link"`
	PrizePool       *float64 `json:"prize_pool"`
	BannerURL       *string  `json:"banner_url"`
	RegistrationEnd *string  `json:"registration_end"`
	TournamentStart *string  `json:"tournament_start"`
	TournamentEnd   *string  `json:"tournament_end"`
}

// Update patches the organizer-editable fields.
func (s *TournamentService) Update(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	tournament, errResp := s.loadOwned(c, id)
	if tournament == nil {
		return errResp
	}

	var req tournamentUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	if req.Name != nil {
		tournament.Name = *req.Name
		tournament.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		tournament.Description = *req.Description
	}
	if req.Rules != nil {
		tournament.Rules = *req.Rules
	}
	if req.DiscordLink != nil {
		tournament.DiscordLink = *req.DiscordLink
	}
	if req.PrizePool != nil {
		tournament.PrizePool = *req.PrizePool
	}
	if req.BannerURL != nil {
		tournament.BannerURL = *req.BannerURL
	}
	if req.RegistrationEnd != nil {
		tournament.RegistrationEnd = *req.RegistrationEnd
	}
	if req.TournamentStart != nil {
		tournament.TournamentStart = *req.TournamentStart
	}
	if req.TournamentEnd != nil {
		tournament.TournamentEnd = *req.TournamentEnd
	}
	tournament.UpdatedAt = time.Now().UTC()

	if err := s.Store.Set(ctx, store.TournamentKey(id), tournament); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update tournament", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": tournament, "message": "Tournament updated"})
}

// Publish flips a tournament to published immediately.
func (s *TournamentService) Publish(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	tournament, errResp := s.loadOwned(c, id)
	if tournament == nil {
		return errResp
	}

	tournament.Status = models.TournamentPublished
	tournament.PublishAt = nil
	tournament.UpdatedAt = time.Now().UTC()
	if err := s.Store.Set(ctx, store.TournamentKey(id), tournament); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to publish tournament", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": tournament, "message": "Tournament published"})
}

type schedulePublishRequest struct {
	PublishAt time.Time `json:"publish_at"`
}

// SchedulePublish records a future publish time; the scheduler job flips the
// status once it passes.
func (s *TournamentService) SchedulePublish(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	tournament, errResp := s.loadOwned(c, id)
	if tournament == nil {
		return errResp
	}

	var req schedulePublishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.PublishAt.IsZero() || req.PublishAt.Before(time.Now()) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "publish_at must be a future timestamp"})
	}
	if tournament.Status != models.TournamentDraft {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only draft tournaments can be scheduled"})
	}

	at := req.PublishAt.UTC()
	tournament.PublishAt = &at
	tournament.UpdatedAt = time.Now().UTC()
	if err := s.Store.Set(ctx, store.TournamentKey(id), tournament); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to schedule publish", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": tournament, "message": "Publish scheduled"})
}

// Join registers the calling gamer, guarding against unpublished tournaments,
// duplicate registrations and full brackets, then awards tournament_join.
func (s *TournamentService) Join(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")
	userID, _ := c.Locals("user_id").(string)

	var tournament models.Tournament
	found, err := s.Store.Get(ctx, store.TournamentKey(id), &tournament)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tournament", "details": err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
	}
	if tournament.Status != models.TournamentPublished {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tournament registration is not open"})
	}

	if exists, err := s.Store.Get(ctx, store.ParticipantKey(id, userID), nil); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check registration", "details": err.Error()})
	} else if exists {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Already registered for this tournament"})
	}

	participants, err := s.Store.GetByPrefix(ctx, store.ParticipantPrefix(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count participants", "details": err.Error()})
	}
	if len(participants) >= tournament.MaxParticipants {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Tournament is full"})
	}

	participant := models.TournamentParticipant{
		ID:           uuid.NewString(),
		TournamentID: id,
		UserID:       userID,
		Status:       models.ParticipantRegistered,
		JoinedAt:     time.Now().UTC(),
	}
	if err := s.Store.Set(ctx, store.ParticipantKey(id, userID), &participant); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to join tournament", "details": err.Error()})
	}

	if _, err := s.Gamification.AwardXP(ctx, userID, ActionTournamentJoin,
		fmt.Sprintf("Joined tournament: %s", tournament.Name),
		map[string]interface{}{"tournament_id": id}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award XP", "details": err.Error()})
	}
	if _, err := s.Gamification.Notify(ctx, userID, models.NotificationTournamentStart, "Tournament Registration",
		fmt.Sprintf("You've successfully registered for %s", tournament.Name),
		map[string]interface{}{"tournament_id": id}); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to notify", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": participant, "message": "Successfully joined tournament"})
}

type completeRequest struct {
	Placements map[string]int `json:"placements"`
}

// Complete closes out a tournament. Every registered participant receives the
// tournament_complete award and a notification; optional placements are
// recorded on the participant documents.
func (s *TournamentService) Complete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	tournament, errResp := s.loadOwned(c, id)
	if tournament == nil {
		return errResp
	}
	if tournament.Status != models.TournamentPublished && tournament.Status != models.TournamentLive {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only published or live tournaments can be completed"})
	}

	var req completeRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}

	tournament.Status = models.TournamentCompleted
	tournament.UpdatedAt = time.Now().UTC()
	if err := s.Store.Set(ctx, store.TournamentKey(id), tournament); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete tournament", "details": err.Error()})
	}

	participants, err := store.ListByPrefix[models.TournamentParticipant](ctx, s.Store, store.ParticipantPrefix(id))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch participants", "details": err.Error()})
	}

	for i := range participants {
		p := &participants[i]
		if placement, ok := req.Placements[p.UserID]; ok {
			p.Placement = &placement
			if err := s.Store.Set(ctx, store.ParticipantKey(id, p.UserID), p); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record placement", "details": err.Error()})
			}
		}
		if p.Status != models.ParticipantRegistered && p.Status != models.ParticipantCheckedIn {
			continue
		}
		if _, err := s.Gamification.AwardXP(ctx, p.UserID, ActionTournamentComplete,
			fmt.Sprintf("Completed tournament: %s", tournament.Name),
			map[string]interface{}{"tournament_id": id}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to award XP", "details": err.Error()})
		}
		if _, err := s.Gamification.Notify(ctx, p.UserID, models.NotificationTournamentStart, "Tournament Completed",
			fmt.Sprintf("%s has finished — thanks for playing!", tournament.Name),
			map[string]interface{}{"tournament_id": id}); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to notify", "details": err.Error()})
		}
	}

	log.Printf("🏁 Tournament completed: %s (%d participants)", tournament.Name, len(participants))
	return c.JSON(fiber.Map{"success": true, "data": tournament, "message": "Tournament completed"})
}

// Delete removes a draft tournament. Published history is never deleted.
func (s *TournamentService) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	tournament, errResp := s.loadOwned(c, id)
	if tournament == nil {
		return errResp
	}
	if tournament.Status != models.TournamentDraft {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Only draft tournaments can be deleted"})
	}

	if err := s.Store.Delete(ctx, store.TournamentKey(id)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete tournament", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Tournament deleted"})
}

// UploadBanner stores a banner image for the tournament.
func (s *TournamentService) UploadBanner(c *fiber.Ctx) error {
	ctx := c.UserContext()
	id := c.Params("id")

	tournament, errResp := s.loadOwned(c, id)
	if tournament == nil {
		return errResp
	}

	fileHeader, err := c.FormFile("banner")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "banner file is required"})
	}

	url, err := utils.StoreImage(fileHeader, fmt.Sprintf("banners/%s", id))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Failed to store banner", "details": err.Error()})
	}

	tournament.BannerURL = url
	tournament.UpdatedAt = time.Now().UTC()
	if err := s.Store.Set(ctx, store.TournamentKey(id), tournament); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update tournament", "details": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "data": tournament, "message": "Banner updated"})
}

// loadOwned fetches the tournament and enforces organizer ownership. On
// failure it returns (nil, alreadyWrittenResponse).
func (s *TournamentService) loadOwned(c *fiber.Ctx, id string) (*models.Tournament, error) {
	userID, _ := c.Locals("user_id").(string)

	var tournament models.Tournament
	found, err := s.Store.Get(c.UserContext(), store.TournamentKey(id), &tournament)
	if err != nil {
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch tournament", "details": err.Error()})
	}
	if !found {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Tournament not found"})
	}
	if tournament.OrganizerID != userID {
		return nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Only the organizer can manage this tournament"})
	}
	return &tournament, nil
}
