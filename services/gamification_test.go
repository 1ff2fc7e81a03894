package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"esports-arena/models"
	"esports-arena/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfile(t *testing.T, st store.Store, gamification *GamificationService, userID string, totalXP int) models.UserProfile {
	t.Helper()
	now := time.Now().UTC()
	profile := models.UserProfile{
		ID:              userID,
		Role:            models.RoleGamer,
		DisplayName:     "Player " + userID,
		Level:           gamification.ResolveLevel(totalXP),
		CurrentXP:       totalXP,
		TotalXP:         totalXP,
		InterestedGames: []string{},
		ContactInfo:     map[string]interface{}{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, st.Set(context.Background(), store.ProfileKey(userID), &profile))
	return profile
}

func notificationsFor(t *testing.T, st store.Store, userID string) []models.Notification {
	t.Helper()
	notifications, err := store.ListByPrefix[models.Notification](context.Background(), st, store.NotificationPrefix(userID))
	require.NoError(t, err)
	return notifications
}

func ledgerFor(t *testing.T, st store.Store, userID string) []models.XPTransaction {
	t.Helper()
	transactions, err := store.ListByPrefix[models.XPTransaction](context.Background(), st, store.TransactionPrefix(userID))
	require.NoError(t, err)
	return transactions
}

func TestResolveLevel(t *testing.T) {
	gamification := NewGamificationService(store.NewMemoryStore())

	tests := []struct {
		totalXP int
		want    int
	}{
		{0, 1},
		{50, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{499, 3},
		{500, 4},
		{999, 4},
		{1000, 5},
		{1649, 5},
		{1650, 6},
		{2500, 7},
		{3600, 8},
		{5000, 9},
		{6799, 9},
		{6800, 10},
		{1000000, 10}, // level 10 is the ceiling
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gamification.ResolveLevel(tt.totalXP), "totalXP=%d", tt.totalXP)
	}
}

func TestResolveLevelMonotonic(t *testing.T) {
	gamification := NewGamificationService(store.NewMemoryStore())

	prev := gamification.ResolveLevel(0)
	require.Equal(t, 1, prev)
	for xp := 1; xp <= 8000; xp += 7 {
		level := gamification.ResolveLevel(xp)
		require.GreaterOrEqual(t, level, prev, "level regressed at xp=%d", xp)
		prev = level
	}
}

func TestResolveLevelWithCustomThresholds(t *testing.T) {
	thresholds := []LevelThreshold{
		{Level: 1, XP: 0},
		{Level: 2, XP: 10},
		{Level: 3, XP: 20},
	}
	gamification := NewGamificationServiceWithTables(store.NewMemoryStore(), DefaultXPRules, thresholds)

	assert.Equal(t, 1, gamification.ResolveLevel(9))
	assert.Equal(t, 2, gamification.ResolveLevel(10))
	assert.Equal(t, 3, gamification.ResolveLevel(25))
}

func TestScoreProfileCompletion(t *testing.T) {
	gamification := NewGamificationService(store.NewMemoryStore())

	avatar := "https://cdn.example.com/a.png"
	longBio := "I play fighting games competitively."
	shortBio := "hey"
	tenCharBio := "exactly10!"

	tests := []struct {
		name        string
		profile     models.UserProfile
		connections int
		want        int
	}{
		{"empty profile", models.UserProfile{}, 0, 0},
		{"avatar only", models.UserProfile{AvatarURL: &avatar}, 0, 20},
		{"short bio scores nothing", models.UserProfile{Bio: &shortBio}, 0, 0},
		{"ten char bio is not enough", models.UserProfile{Bio: &tenCharBio}, 0, 0},
		{"long bio", models.UserProfile{Bio: &longBio}, 0, 15},
		{"games only", models.UserProfile{InterestedGames: []string{"SF6"}}, 0, 15},
		{"contact only", models.UserProfile{ContactInfo: map[string]interface{}{"discord": "x#1"}}, 0, 25},
		{"connections only", models.UserProfile{}, 2, 25},
		{
			"everything",
			models.UserProfile{
				AvatarURL:       &avatar,
				Bio:             &longBio,
				InterestedGames: []string{"SF6", "Tekken 8"},
				ContactInfo:     map[string]interface{}{"discord": "x#1"},
			},
			1,
			100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, gamification.ScoreProfileCompletion(&tt.profile, tt.connections))
		})
	}
}

func TestAwardXPCrossesThreshold(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gamification := NewGamificationService(st)
	seedProfile(t, st, gamification, "u1", 90)

	res, err := gamification.AwardXP(ctx, "u1", ActionTournamentJoin, "Joined tournament: Summer Cup", map[string]interface{}{"tournament_id": "t1"})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 190, res.Profile.TotalXP)
	assert.Equal(t, 190, res.Profile.CurrentXP)
	assert.Equal(t, 2, res.Profile.Level)
	assert.True(t, res.LeveledUp)
	assert.Equal(t, 100, res.Transaction.XPAmount)
	assert.Equal(t, ActionTournamentJoin, res.Transaction.ActionType)

	ledger := ledgerFor(t, st, "u1")
	require.Len(t, ledger, 1)
	assert.Equal(t, 100, ledger[0].XPAmount)

	notifications := notificationsFor(t, st, "u1")
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationLevelUp, notifications[0].Type)
	assert.EqualValues(t, 2, notifications[0].Data["level"])

	// The stored document must match the returned one.
	var stored models.UserProfile
	found, err := st.Get(ctx, store.ProfileKey("u1"), &stored)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 190, stored.TotalXP)
	assert.Equal(t, 2, stored.Level)
}

func TestAwardXPSkipsIntermediateLevels(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gamification := NewGamificationService(st)
	seedProfile(t, st, gamification, "u1", 980)

	res, err := gamification.AwardXP(ctx, "u1", ActionTournamentComplete, "Completed tournament: Summer Cup", nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 1480, res.Profile.TotalXP)
	assert.Equal(t, 5, res.Profile.Level)
	assert.True(t, res.LeveledUp)

	// One notification for the final level, not one per threshold crossed.
	notifications := notificationsFor(t, st, "u1")
	require.Len(t, notifications, 1)
	assert.EqualValues(t, 5, notifications[0].Data["level"])
}

func TestAwardXPNoLevelUpNoNotification(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gamification := NewGamificationService(st)
	seedProfile(t, st, gamification, "u1", 0)

	res, err := gamification.AwardXP(ctx, "u1", ActionProfileBio, "Added bio to profile", nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 50, res.Profile.TotalXP)
	assert.Equal(t, 1, res.Profile.Level)
	assert.False(t, res.LeveledUp)
	assert.Empty(t, notificationsFor(t, st, "u1"))
}

func TestAwardXPUnknownActionIsNoop(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gamification := NewGamificationService(st)
	before := seedProfile(t, st, gamification, "u1", 120)

	res, err := gamification.AwardXP(ctx, "u1", "definitely_not_a_rule", "?", nil)
	require.NoError(t, err)
	assert.Nil(t, res)

	var after models.UserProfile
	_, err = st.Get(ctx, store.ProfileKey("u1"), &after)
	require.NoError(t, err)
	assert.Equal(t, before.TotalXP, after.TotalXP)
	assert.Equal(t, before.Level, after.Level)
	assert.Empty(t, ledgerFor(t, st, "u1"))
	assert.Empty(t, notificationsFor(t, st, "u1"))
}

func TestAwardXPZeroRuleIsNoop(t *testing.T) {
	rules := XPRules{"free_action": 0}
	st := store.NewMemoryStore()
	gamification := NewGamificationServiceWithTables(st, rules, DefaultLevelThresholds)
	seedProfile(t, st, gamification, "u1", 0)

	res, err := gamification.AwardXP(context.Background(), "u1", "free_action", "zero rule", nil)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, ledgerFor(t, st, "u1"))
}

func TestAwardXPMissingProfileIsNoop(t *testing.T) {
	st := store.NewMemoryStore()
	gamification := NewGamificationService(st)

	res, err := gamification.AwardXP(context.Background(), "ghost", ActionTournamentJoin, "Joined", nil)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, ledgerFor(t, st, "ghost"))
}

func TestAwardXPDoubleCounts(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gamification := NewGamificationService(st)
	seedProfile(t, st, gamification, "u1", 0)

	for i := 0; i < 2; i++ {
		_, err := gamification.AwardXP(ctx, "u1", ActionTeamJoin, "Joined team: Alpha", nil)
		require.NoError(t, err)
	}

	var profile models.UserProfile
	_, err := st.Get(ctx, store.ProfileKey("u1"), &profile)
	require.NoError(t, err)
	assert.Equal(t, 150, profile.TotalXP)
	assert.Len(t, ledgerFor(t, st, "u1"), 2)
}

// contendedStore simulates another award landing between this award's read and
// its profile write: the first CompareAndSwap on a profile key hits a bumped
// version and fails.
type contendedStore struct {
	*store.MemoryStore
	interfered bool
	extraXP    int
}

func (s *contendedStore) CompareAndSwap(ctx context.Context, key string, value interface{}, expected int64) error {
	if !s.interfered && strings.HasPrefix(key, store.ProfilePrefix) {
		s.interfered = true
		var p models.UserProfile
		if found, err := s.MemoryStore.Get(ctx, key, &p); err == nil && found {
			p.TotalXP += s.extraXP
			p.CurrentXP = p.TotalXP
			_ = s.MemoryStore.Set(ctx, key, &p)
		}
	}
	return s.MemoryStore.CompareAndSwap(ctx, key, value, expected)
}

func TestAwardXPRetriesOnConflictWithoutLosingDeltas(t *testing.T) {
	ctx := context.Background()
	st := &contendedStore{MemoryStore: store.NewMemoryStore(), extraXP: 100}
	gamification := NewGamificationService(st)
	seedProfile(t, st, gamification, "u1", 0)

	res, err := gamification.AwardXP(ctx, "u1", ActionTournamentJoin, "Joined tournament: Clash", nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	// Both the interfering 100 XP and this award's 100 XP survive.
	assert.Equal(t, 200, res.Profile.TotalXP)

	var stored models.UserProfile
	_, err = st.Get(ctx, store.ProfileKey("u1"), &stored)
	require.NoError(t, err)
	assert.Equal(t, 200, stored.TotalXP)

	// The ledger holds this award exactly once.
	assert.Len(t, ledgerFor(t, st, "u1"), 1)
}

func TestXPHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gamification := NewGamificationService(st)
	seedProfile(t, st, gamification, "u1", 0)

	base := time.Now().UTC().Add(-time.Hour)
	for i, action := range []string{ActionAccountCreated, ActionProfileBio, ActionTeamCreate} {
		tx := models.XPTransaction{
			ID:         action,
			UserID:     "u1",
			ActionType: action,
			XPAmount:   gamification.Rules[action],
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, st.Set(ctx, store.TransactionKey("u1", tx.ID), &tx))
	}

	history, err := gamification.XPHistory(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, ActionTeamCreate, history[0].ActionType)
	assert.Equal(t, ActionAccountCreated, history[2].ActionType)
}

func TestLevelProgress(t *testing.T) {
	gamification := NewGamificationService(store.NewMemoryStore())

	midway := models.UserProfile{Level: 1, TotalXP: 50}
	progress := gamification.LevelProgress(&midway)
	assert.Equal(t, 1, progress.CurrentLevel)
	assert.Equal(t, 0, progress.CurrentLevelXP)
	assert.Equal(t, 100, progress.NextLevelXP)
	assert.Equal(t, 50, progress.XPToNextLevel)
	assert.InDelta(t, 50.0, progress.Percentage, 0.001)

	capped := models.UserProfile{Level: 10, TotalXP: 9000}
	progress = gamification.LevelProgress(&capped)
	assert.Equal(t, 10, progress.CurrentLevel)
	assert.Equal(t, 9000, progress.NextLevelXP)
	assert.Equal(t, 0, progress.XPToNextLevel)
	assert.InDelta(t, 100.0, progress.Percentage, 0.001)
}

func TestLeaderboardExcludesBannedAndRanks(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gamification := NewGamificationService(st)

	seedProfile(t, st, gamification, "low", 100)
	seedProfile(t, st, gamification, "high", 5000)
	banned := seedProfile(t, st, gamification, "cheater", 99999)
	banned.IsBanned = true
	require.NoError(t, st.Set(ctx, store.ProfileKey("cheater"), &banned))

	entries, err := gamification.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "high", entries[0].ID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "low", entries[1].ID)
	assert.Equal(t, 2, entries[1].Rank)
}

func TestCompletionForProfileCountsConnections(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gamification := NewGamificationService(st)
	profile := seedProfile(t, st, gamification, "u1", 0)

	completion, err := gamification.CompletionForProfile(ctx, &profile)
	require.NoError(t, err)
	assert.Equal(t, 0, completion)

	conn := models.SocialConnection{ID: "c1", UserID: "u1", Provider: models.ProviderDiscord}
	require.NoError(t, st.Set(ctx, store.SocialConnectionKey("u1", conn.ID), &conn))

	completion, err = gamification.CompletionForProfile(ctx, &profile)
	require.NoError(t, err)
	assert.Equal(t, 25, completion)
}
