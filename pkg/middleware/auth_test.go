package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"docuai/internal/models"
	"docuai/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingResolver struct {
	calls int
	user  *models.User
}

func (r *countingResolver) ResolvePrincipal(_ context.Context, p *auth.Principal) (*models.User, error) {
	r.calls++
	u := *r.user
	u.ID = uuid.MustParse(p.Subject)
	return &u, nil
}

func setup(t *testing.T, role models.Role) (*fiber.App, *countingResolver, string) {
	t.Helper()
	jwt := auth.NewJWTManager("secret", time.Hour, time.Hour)
	id := uuid.New()
	token, err := jwt.GenerateToken(id.String(), "ada@example.com")
	require.NoError(t, err)

	resolver := &countingResolver{user: &models.User{Role: role, Tier: models.TierFree}}
	app := fiber.New()
	api := app.Group("/api", AuthMiddleware(auth.NewLocalStrategy(jwt), resolver, zap.NewNop()))
	api.Get("/me", func(c *fiber.Ctx) error {
		first, err := CurrentUser(c)
		if err != nil {
			return err
		}
		second, err := CurrentUser(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": first.ID.String(), "same": first == second})
	})
	api.Get("/admin", RequireAdmin(zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, resolver, token
}

func TestAuthMiddleware(t *testing.T) {
	app, resolver, token := setup(t, models.RoleUser)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", fiber.StatusUnauthorized},
		{"garbage", "Bearer nope", fiber.StatusUnauthorized},
		{"bearer", "Bearer " + token, fiber.StatusOK},
		{"lowercase scheme", "bearer " + token, fiber.StatusOK},
		{"bare token", token, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	// one lookup per request even when CurrentUser is called twice
	assert.Equal(t, 3, resolver.calls)
}

func TestRequireAdmin(t *testing.T) {
	for role, want := range map[models.Role]int{
		models.RoleUser:  fiber.StatusForbidden,
		models.RoleAdmin: fiber.StatusNoContent,
	} {
		t.Run(string(role), func(t *testing.T) {
			app, _, token := setup(t, role)
			req := httptest.NewRequest("GET", "/api/admin", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, want, resp.StatusCode)
		})
	}
}

func TestCurrentUserWithoutAuth(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := CurrentUser(c)
		assert.ErrorIs(t, err, ErrNoPrincipal)
		return c.SendStatus(fiber.StatusOK)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
}
