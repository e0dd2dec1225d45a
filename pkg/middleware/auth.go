package middleware

import (
	"context"
	"errors"
	"strings"

	"docuai/internal/models"
	"docuai/pkg/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	localsPrincipal = "principal"
	localsResolver  = "userResolver"
	localsUser      = "user"
)

// ErrNoPrincipal is returned by CurrentUser outside an authenticated route.
var ErrNoPrincipal = errors.New("no authenticated principal")

// UserResolver maps a verified principal to a local account.
type UserResolver interface {
	ResolvePrincipal(ctx context.Context, p *auth.Principal) (*models.User, error)
}

// AuthMiddleware verifies the bearer token with the configured strategy and
// stores the principal. The user record is loaded lazily by CurrentUser.
func AuthMiddleware(strategy auth.Strategy, users UserResolver, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("Authorization")
		if token == "" {
			logger.Debug("Missing authorization token", zap.String("path", c.Path()))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization token required",
			})
		}

		if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
			token = token[7:]
		}

		principal, err := strategy.Authenticate(c.UserContext(), strings.TrimSpace(token))
		if err != nil {
			logger.Warn("Invalid token", zap.String("strategy", strategy.Name()), zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(localsPrincipal, principal)
		c.Locals(localsResolver, users)
		return c.Next()
	}
}

// CurrentUser resolves the request's user at most once and caches it in the
// request locals.
func CurrentUser(c *fiber.Ctx) (*models.User, error) {
	if user, ok := c.Locals(localsUser).(*models.User); ok {
		return user, nil
	}

	principal, ok := c.Locals(localsPrincipal).(*auth.Principal)
	if !ok {
		return nil, ErrNoPrincipal
	}
	resolver, ok := c.Locals(localsResolver).(UserResolver)
	if !ok {
		return nil, ErrNoPrincipal
	}

	user, err := resolver.ResolvePrincipal(c.UserContext(), principal)
	if err != nil {
		return nil, err
	}
	c.Locals(localsUser, user)
	return user, nil
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			logger.Warn("Failed to resolve user", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		if !user.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}
		return c.Next()
	}
}
