package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"esports-arena/models"
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

func echoUserID(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	return c.JSON(fiber.Map{"user_id": userID})
}

func TestRequireAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", RequireAuth(mapVerifier{"good-token": "u1"}), echoUserID)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc123", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"rejected token", "Bearer bad-token", http.StatusUnauthorized},
		{"valid token", "Bearer good-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRequireRole(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	now := time.Now().UTC()
	organizer := models.UserProfile{ID: "org1", Role: models.RoleOrganizer, DisplayName: "Org", Level: 1, CreatedAt: now, UpdatedAt: now}
	gamer := models.UserProfile{ID: "g1", Role: models.RoleGamer, DisplayName: "Gamer", Level: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, st.Set(ctx, store.ProfileKey("org1"), &organizer))
	require.NoError(t, st.Set(ctx, store.ProfileKey("g1"), &gamer))

	verifier := mapVerifier{"tok-org": "org1", "tok-gamer": "g1", "tok-ghost": "ghost"}
	app := fiber.New()
	app.Post("/organize", RequireAuth(verifier), RequireRole(st, models.RoleOrganizer, models.RoleAdmin), echoUserID)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"organizer allowed", "tok-org", http.StatusOK},
		{"gamer forbidden", "tok-gamer", http.StatusForbidden},
		{"no profile forbidden", "tok-ghost", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/organize", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
