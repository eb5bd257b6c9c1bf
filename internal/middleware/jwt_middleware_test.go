package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"usermgmt/internal/middleware"
	"usermgmt/internal/models"
	"usermgmt/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapConfig map[string]string

func (m mapConfig) GetString(key string) string { return m[key] }

func setupApp(t *testing.T) (*fiber.App, *services.TokenService) {
	t.Helper()
	tokens := services.NewTokenService(mapConfig{
		services.ConfigJWTKey:      "0123456789abcdef0123456789abcdef",
		services.ConfigJWTIssuer:   "issuer",
		services.ConfigJWTAudience: "audience",
	})
	logger, _ := test.NewNullLogger()

	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(tokens, logger), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id":  c.Locals("user_id"),
			"username": c.Locals("username"),
		})
	})
	return app, tokens
}

func TestAuthRequired(t *testing.T) {
	app, tokens := setupApp(t)
	result := tokens.Issue(&models.User{ID: 5, Username: "alice"})
	require.True(t, result.Success)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer " + result.Token, http.StatusOK},
		{"lowercase scheme", "bearer " + result.Token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
