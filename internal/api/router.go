package api

import (
	"context"
	"errors"
	"time"

	"docuai/docs"
	"docuai/internal/api/handlers"
	"docuai/pkg/auth"
	"docuai/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Documents *handlers.DocumentHandler
	Catalog   *handlers.CatalogHandler
	Admin     *handlers.AdminHandler
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Options struct {
	CORSOrigins  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
	Health       HealthCheck
}

func SetupRouter(
	h Handlers,
	strategy auth.Strategy,
	users middleware.UserResolver,
	opts Options,
	appLogger *zap.Logger,
) *fiber.App {
	if opts.CORSOrigins == "" {
		opts.CORSOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		BodyLimit:    opts.BodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal server error"
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
				msg = e.Message
			} else {
				appLogger.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error": msg,
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo // registers the swagger document via the package init
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if opts.Health != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := opts.Health(ctx); err != nil {
				appLogger.Warn("Health check failed", zap.Error(err))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unavailable",
				})
			}
		}
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	// Auth routes (public)
	authRoutes := app.Group("/user/auth")
	authRoutes.Post("/register", h.Auth.Register)
	authRoutes.Post("/login", h.Auth.Login)
	authRoutes.Post("/refresh", h.Auth.RefreshToken)

	// Protected routes
	protected := app.Group("/api/v1", middleware.AuthMiddleware(strategy, users, appLogger))
	protected.Get("/me", h.Auth.Me)

	protected.Get("/templates", h.Catalog.ListTemplates)
	protected.Get("/designs", h.Catalog.ListDesigns)
	protected.Get("/tones", h.Catalog.ListTones)
	protected.Get("/subscription", h.Catalog.Subscription)

	documents := protected.Group("/documents")
	documents.Post("/generate", h.Documents.Generate)
	documents.Get("", h.Documents.ListDocuments)
	documents.Get("/:id", h.Documents.GetDocument)
	documents.Get("/:id/status", h.Documents.Status)
	documents.Delete("/:id", h.Documents.DeleteDocument)
	documents.Post("/:id/clone", h.Documents.Clone)
	documents.Put("/:id/favorite", h.Documents.SetFavorite)
	documents.Put("/:id/tags", h.Documents.SetTags)

	// Generated files are only reachable through the ownership check.
	protected.Get("/files/:filename", h.Documents.Download)

	admin := protected.Group("/admin", middleware.RequireAdmin(appLogger))
	admin.Get("/templates", h.Admin.ListTemplates)
	admin.Post("/templates", h.Admin.CreateTemplate)
	admin.Put("/templates/:id", h.Admin.UpdateTemplate)
	admin.Put("/templates/:id/active", h.Admin.SetTemplateActive)
	admin.Delete("/templates/:id", h.Admin.DeleteTemplate)

	admin.Get("/designs", h.Admin.ListDesigns)
	admin.Post("/designs", h.Admin.CreateDesign)
	admin.Put("/designs/:id", h.Admin.UpdateDesign)
	admin.Put("/designs/:id/active", h.Admin.SetDesignActive)
	admin.Put("/designs/:id/default", h.Admin.SetDefaultDesign)
	admin.Delete("/designs/:id", h.Admin.DeleteDesign)

	admin.Get("/branding", h.Admin.GetBranding)
	admin.Put("/branding", h.Admin.PutBranding)

	admin.Get("/users", h.Admin.ListUsers)
	admin.Put("/users/:id/tier", h.Admin.SetTier)
	admin.Put("/users/:id/role", h.Admin.SetRole)

	admin.Get("/stats", h.Admin.Stats)

	return app
}
