package workers

import (
	"context"
	"testing"
	"time"

	"esports-arena/models"
	"esports-arena/services"
	"esports-arena/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProfile(t *testing.T, st store.Store, userID string, totalXP int, banned bool) {
	t.Helper()
	now := time.Now().UTC()
	gamification := services.NewGamificationService(st)
	profile := models.UserProfile{
		ID:          userID,
		Role:        models.RoleGamer,
		DisplayName: "Player " + userID,
		Level:       gamification.ResolveLevel(totalXP),
		CurrentXP:   totalXP,
		TotalXP:     totalXP,
		IsBanned:    banned,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(t, st.Set(context.Background(), store.ProfileKey(userID), &profile))
}

func TestSnapshotWritesRankedEntries(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gamification := services.NewGamificationService(st)

	seedProfile(t, st, "second", 300, false)
	seedProfile(t, st, "first", 1200, false)
	seedProfile(t, st, "banned", 5000, true)

	worker := NewLeaderboardWorker(st, gamification, time.Minute)
	require.NoError(t, worker.snapshot(ctx))

	var snapshot models.LeaderboardSnapshot
	found, err := st.Get(ctx, store.LeaderboardSnapshotKey, &snapshot)
	require.NoError(t, err)
	require.True(t, found)

	require.Len(t, snapshot.Entries, 2)
	assert.Equal(t, "first", snapshot.Entries[0].ID)
	assert.Equal(t, 1, snapshot.Entries[0].Rank)
	assert.Equal(t, "second", snapshot.Entries[1].ID)
	assert.False(t, snapshot.GeneratedAt.IsZero())
}

func TestSnapshotOverwritesPrevious(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gamification := services.NewGamificationService(st)
	worker := NewLeaderboardWorker(st, gamification, time.Minute)

	seedProfile(t, st, "u1", 100, false)
	require.NoError(t, worker.snapshot(ctx))

	seedProfile(t, st, "u2", 900, false)
	require.NoError(t, worker.snapshot(ctx))

	var snapshot models.LeaderboardSnapshot
	_, err := st.Get(ctx, store.LeaderboardSnapshotKey, &snapshot)
	require.NoError(t, err)
	require.Len(t, snapshot.Entries, 2)
	assert.Equal(t, "u2", snapshot.Entries[0].ID)
}

func TestStartStopsOnContextCancel(t *testing.T) {
	st := store.NewMemoryStore()
	gamification := services.NewGamificationService(st)
	worker := NewLeaderboardWorker(st, gamification, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	worker.Start(ctx)

	// Give the initial snapshot a moment, then stop.
	time.Sleep(30 * time.Millisecond)
	cancel()
	time.Sleep(30 * time.Millisecond)

	found, err := st.Get(context.Background(), store.LeaderboardSnapshotKey, &models.LeaderboardSnapshot{})
	require.NoError(t, err)
	assert.True(t, found)
}
