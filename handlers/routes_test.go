package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"esports-arena/models"
	"esports-arena/services"
	"esports-arena/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapVerifier map[string]string

func (v mapVerifier) VerifyToken(_ context.Context, token string) (string, error) {
	if userID, ok := v[token]; ok {
		return userID, nil
	}
	return "", errors.New("unknown token")
}

type stubIdentity struct{}

func (stubIdentity) CreateAccount(context.Context, string, string, map[string]interface{}) (string, error) {
	return "stub-user", nil
}

// newTestApp wires the whole route table the way main does.
func newTestApp(t *testing.T, st store.Store, verifier mapVerifier) *fiber.App {
	t.Helper()
	gamification := services.NewGamificationService(st)
	users := services.NewUserService(st, stubIdentity{}, gamification)
	social := services.NewSocialService(st, gamification)
	tournaments := services.NewTournamentService(st, gamification)
	teams := services.NewTeamService(st, gamification)
	notifications := services.NewNotificationService(st)

	app := fiber.New()
	SetupUserRoutes(app, users, social, verifier, st)
	SetupGamificationRoutes(app, gamification, verifier)
	SetupTournamentRoutes(app, tournaments, verifier, st)
	SetupTeamRoutes(app, teams, verifier)
	SetupNotificationRoutes(app, notifications, verifier)
	return app
}

func seedProfile(t *testing.T, st store.Store, userID string, role models.UserRole, totalXP int) {
	t.Helper()
	gamification := services.NewGamificationService(st)
	now := time.Now().UTC()
	profile := models.UserProfile{
		ID:              userID,
		Role:            role,
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
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	app := newTestApp(t, store.NewMemoryStore(), mapVerifier{})

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users/me"},
		{http.MethodPatch, "/users/me"},
		{http.MethodGet, "/gamification/xp"},
		{http.MethodGet, "/gamification/level-progress"},
		{http.MethodPost, "/tournaments"},
		{http.MethodPost, "/tournaments/x/join"},
		{http.MethodPost, "/teams"},
		{http.MethodGet, "/notifications"},
		{http.MethodGet, "/social/connections"},
		{http.MethodGet, "/admin/users"},
	}
	for _, route := range protected {
		resp, err := app.Test(httptest.NewRequest(route.method, route.path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
	}
}

func TestPublicRoutesServeAnonymous(t *testing.T) {
	app := newTestApp(t, store.NewMemoryStore(), mapVerifier{})

	public := []string{"/tournaments", "/gamification/leaderboard"}
	for _, path := range public {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

// /users/me must win over /users/:id for the authenticated caller.
func TestUsersMeBeatsUsersID(t *testing.T) {
	st := store.NewMemoryStore()
	app := newTestApp(t, st, mapVerifier{"tok-u1": "u1"})
	seedProfile(t, st, "u1", models.RoleGamer, 0)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer tok-u1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "u1", data["id"])
	// The private document, not the public view.
	assert.Contains(t, data, "contact_info")
}

func TestLeaderboardPrefersSnapshot(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	app := newTestApp(t, st, mapVerifier{})
	seedProfile(t, st, "live-only", models.RoleGamer, 9000)

	snapshot := models.LeaderboardSnapshot{
		Entries: []models.LeaderboardEntry{
			{Rank: 1, ID: "snapshotted", DisplayName: "From Snapshot", Level: 3, TotalXP: 400},
		},
		GeneratedAt: time.Now().UTC(),
	}
	require.NoError(t, st.Set(ctx, store.LeaderboardSnapshotKey, &snapshot))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/gamification/leaderboard", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	entries := body["data"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "snapshotted", entries[0].(map[string]interface{})["id"])
}

func TestLevelProgressRoute(t *testing.T) {
	st := store.NewMemoryStore()
	app := newTestApp(t, st, mapVerifier{"tok-u1": "u1"})
	seedProfile(t, st, "u1", models.RoleGamer, 150)

	req := httptest.NewRequest(http.MethodGet, "/gamification/level-progress", nil)
	req.Header.Set("Authorization", "Bearer tok-u1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 2, data["currentLevel"])
	assert.EqualValues(t, 250, data["nextLevelXp"])
	assert.EqualValues(t, 100, data["xpToNextLevel"])
}
