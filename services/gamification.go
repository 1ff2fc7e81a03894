package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"esports-arena/models"
	"esports-arena/store"

	"github.com/google/uuid"
)

// XPRules maps an action type to the XP it awards. A missing or zero entry
// makes AwardXP a no-op for that action.
type XPRules map[string]int

// Action types recognized by the default rule table.
const (
	ActionAccountCreated     = "account_created"
	ActionProfileAvatar      = "profile_avatar"
	ActionProfileBio         = "profile_bio"
	ActionProfileGames       = "profile_games"
	ActionProfileContact     = "profile_contact"
	ActionSocialConnect      = "social_connect"
	ActionTournamentCreate   = "tournament_create"
	ActionTournamentJoin     = "tournament_join"
	ActionTournamentComplete = "tournament_complete"
	ActionTeamCreate         = "team_create"
	ActionTeamJoin           = "team_join"
)

var DefaultXPRules = XPRules{
	ActionAccountCreated:     50,
	ActionProfileAvatar:      100,
	ActionProfileBio:         50,
	ActionProfileGames:       50,
	ActionProfileContact:     75,
	ActionSocialConnect:      150,
	ActionTournamentCreate:   200,
	ActionTournamentJoin:     100,
	ActionTournamentComplete: 500,
	ActionTeamCreate:         150,
	ActionTeamJoin:           75,
}

// LevelThreshold pairs a level with the minimum cumulative XP that reaches it.
type LevelThreshold struct {
	Level int `json:"level"`
	XP    int `json:"xp"`
}

// DefaultLevelThresholds must stay strictly increasing in XP, with level 1 at 0.
// Above the last entry the top level is the ceiling.
var DefaultLevelThresholds = []LevelThreshold{
	{Level: 1, XP: 0},
	{Level: 2, XP: 100},
	{Level: 3, XP: 250},
	{Level: 4, XP: 500},
	{Level: 5, XP: 1000},
	{Level: 6, XP: 1650},
	{Level: 7, XP: 2500},
	{Level: 8, XP: 3600},
	{Level: 9, XP: 5000},
	{Level: 10, XP: 6800},
}

// Attempts at the versioned profile write before giving up on a hot profile.
const awardWriteAttempts = 5

// GamificationService is the single writer of XP and level state. Every
// XP-granting call site goes through AwardXP, so awards stay enumerable.
// Rule and threshold tables are injected so tests can run alternates.
type GamificationService struct {
	Store      store.Store
	Rules      XPRules
	Thresholds []LevelThreshold
}

func NewGamificationService(st store.Store) *GamificationService {
	return NewGamificationServiceWithTables(st, DefaultXPRules, DefaultLevelThresholds)
}

func NewGamificationServiceWithTables(st store.Store, rules XPRules, thresholds []LevelThreshold) *GamificationService {
	return &GamificationService{Store: st, Rules: rules, Thresholds: thresholds}
}

// ResolveLevel maps cumulative XP to a level by scanning the threshold table
// from the top down. Pure; never errors.
func (s *GamificationService) ResolveLevel(totalXP int) int {
	for i := len(s.Thresholds) - 1; i >= 0; i-- {
		if totalXP >= s.Thresholds[i].XP {
			return s.Thresholds[i].Level
		}
	}
	return 1
}

// ScoreProfileCompletion is the pure completion scorer. The caller supplies the
// social connection count so the scorer itself never touches the store.
func (s *GamificationService) ScoreProfileCompletion(p *models.UserProfile, socialConnections int) int {
	completion := 0
	if p.AvatarURL != nil && *p.AvatarURL != "" {
		completion += 20
	}
	if p.Bio != nil && len(*p.Bio) > 10 {
		completion += 15
	}
	if len(p.InterestedGames) > 0 {
		completion += 15
	}
	if len(p.ContactInfo) > 0 {
		completion += 25
	}
	if socialConnections > 0 {
		completion += 25
	}
	if completion > 100 {
		completion = 100
	}
	return completion
}

// CompletionForProfile counts the profile's social connections and scores it.
func (s *GamificationService) CompletionForProfile(ctx context.Context, p *models.UserProfile) (int, error) {
	connections, err := s.Store.GetByPrefix(ctx, store.SocialConnectionPrefix(p.ID))
	if err != nil {
		return 0, fmt.Errorf("count social connections: %w", err)
	}
	return s.ScoreProfileCompletion(p, len(connections)), nil
}

// AwardResult is what a successful (non-no-op) award returns.
type AwardResult struct {
	Transaction *models.XPTransaction `json:"transaction"`
	Profile     *models.UserProfile   `json:"profile"`
	LeveledUp   bool                  `json:"leveledUp"`
}

// AwardXP appends a ledger entry and advances the profile's XP and level.
// Unknown or zero-valued action types and missing profiles return (nil, nil):
// nothing happened, and that is not an error.
//
// The ledger entry is written exactly once. The profile write is a
// CompareAndSwap retried with a fresh read on conflict, so concurrent awards
// for the same user cannot lose a delta.
func (s *GamificationService) AwardXP(ctx context.Context, userID, actionType, description string, metadata map[string]interface{}) (*AwardResult, error) {
	xpAmount := s.Rules[actionType]
	if xpAmount <= 0 {
		return nil, nil
	}

	var profile models.UserProfile
	version, found, err := s.Store.GetVersioned(ctx, store.ProfileKey(userID), &profile)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	tx := &models.XPTransaction{
		ID:          uuid.NewString(),
		UserID:      userID,
		ActionType:  actionType,
		XPAmount:    xpAmount,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Store.Set(ctx, store.TransactionKey(userID, tx.ID), tx); err != nil {
		return nil, fmt.Errorf("append xp transaction: %w", err)
	}

	var leveledUp bool
	var newLevel int
	for attempt := 1; ; attempt++ {
		oldLevel := profile.Level
		if oldLevel < 1 {
			oldLevel = 1
		}
		newTotal := profile.TotalXP + xpAmount
		newLevel = s.ResolveLevel(newTotal)
		leveledUp = newLevel > oldLevel

		profile.TotalXP = newTotal
		profile.CurrentXP = newTotal
		profile.Level = newLevel
		profile.UpdatedAt = time.Now().UTC()

		err = s.Store.CompareAndSwap(ctx, store.ProfileKey(userID), &profile, version)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("persist profile: %w", err)
		}
		if attempt >= awardWriteAttempts {
			return nil, fmt.Errorf("persist profile for %s after %d attempts: %w", userID, attempt, store.ErrConflict)
		}
		version, found, err = s.Store.GetVersioned(ctx, store.ProfileKey(userID), &profile)
		if err != nil {
			return nil, err
		}
		if !found {
			// Profile vanished mid-award. The ledger entry stays; it is audit-only.
			return nil, nil
		}
	}

	log.Printf("🎮 XP awarded: user=%s action=%s +%d → total=%d lvl=%d", userID, actionType, xpAmount, profile.TotalXP, profile.Level)

	if leveledUp {
		if _, err := s.Notify(ctx, userID, models.NotificationLevelUp, "Level Up!",
			fmt.Sprintf("You've reached level %d!", newLevel),
			map[string]interface{}{"level": newLevel}); err != nil {
			return nil, err
		}
	}

	return &AwardResult{Transaction: tx, Profile: &profile, LeveledUp: leveledUp}, nil
}

// Notify writes a notification record. No delivery happens here; notifications
// are durable, queryable, markable-read documents.
func (s *GamificationService) Notify(ctx context.Context, userID string, ntype models.NotificationType, title, message string, data map[string]interface{}) (*models.Notification, error) {
	if data == nil {
		data = map[string]interface{}{}
	}
	notification := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		Data:      data,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.Set(ctx, store.NotificationKey(userID, notification.ID), notification); err != nil {
		return nil, fmt.Errorf("write notification: %w", err)
	}
	return notification, nil
}

// XPHistory returns the user's ledger, newest first.
func (s *GamificationService) XPHistory(ctx context.Context, userID string) ([]models.XPTransaction, error) {
	transactions, err := store.ListByPrefix[models.XPTransaction](ctx, s.Store, store.TransactionPrefix(userID))
	if err != nil {
		return nil, err
	}
	sort.Slice(transactions, func(i, j int) bool {
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})
	return transactions, nil
}

// LevelProgress reports where the profile sits between its current and next
// threshold, for the XP progress bar.
func (s *GamificationService) LevelProgress(p *models.UserProfile) models.LevelProgress {
	currentLevel := p.Level
	if currentLevel < 1 {
		currentLevel = 1
	}
	currentXP := p.TotalXP

	var current, next *LevelThreshold
	for i := range s.Thresholds {
		if s.Thresholds[i].Level == currentLevel {
			current = &s.Thresholds[i]
		}
		if s.Thresholds[i].Level == currentLevel+1 {
			next = &s.Thresholds[i]
		}
	}

	progress := models.LevelProgress{
		CurrentLevel: currentLevel,
		CurrentXP:    currentXP,
	}
	if current != nil {
		progress.CurrentLevelXP = current.XP
	}
	if next != nil {
		progress.NextLevelXP = next.XP
		progress.XPToNextLevel = next.XP - currentXP
		span := next.XP - progress.CurrentLevelXP
		if span > 0 {
			progress.Percentage = float64(currentXP-progress.CurrentLevelXP) / float64(span) * 100
		}
	} else {
		progress.NextLevelXP = currentXP
		progress.Percentage = 100
	}
	return progress
}

// Leaderboard ranks all non-banned profiles by total XP, top 100.
func (s *GamificationService) Leaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	profiles, err := store.ListByPrefix[models.UserProfile](ctx, s.Store, store.ProfilePrefix)
	if err != nil {
		return nil, err
	}
	ranked := profiles[:0]
	for _, p := range profiles {
		if !p.IsBanned {
			ranked = append(ranked, p)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalXP > ranked[j].TotalXP
	})
	if len(ranked) > 100 {
		ranked = ranked[:100]
	}
	entries := make([]models.LeaderboardEntry, len(ranked))
	for i, p := range ranked {
		entries[i] = models.LeaderboardEntry{
			Rank:        i + 1,
			ID:          p.ID,
			DisplayName: p.DisplayName,
			AvatarURL:   p.AvatarURL,
			Level:       p.Level,
			TotalXP:     p.TotalXP,
			Role:        p.Role,
		}
	}
	return entries, nil
}
