package handlers

import (
	"errors"

	"docuai/internal/models"
	"docuai/internal/service"
	"docuai/internal/storage"
	"docuai/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// statusFor maps service errors to an HTTP status and a message safe to show
// the caller. ok is false for unexpected errors, which get a generic message.
func statusFor(err error) (code int, msg string, ok bool) {
	var quota *service.QuotaExceededError
	switch {
	case errors.As(err, &quota):
		return fiber.StatusPaymentRequired, quota.Error(), true
	case errors.Is(err, service.ErrInvalidInput):
		return fiber.StatusBadRequest, err.Error(), true
	case errors.Is(err, storage.ErrInvalidFilename):
		return fiber.StatusBadRequest, "Invalid filename", true
	case errors.Is(err, service.ErrFormatUnsupported):
		return fiber.StatusBadRequest, "Format not supported by this template", true
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		return fiber.StatusUnauthorized, "Unauthorized", true
	case errors.Is(err, service.ErrTemplateLocked):
		return fiber.StatusForbidden, "This template requires a higher subscription tier", true
	case errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden, "Forbidden", true
	case errors.Is(err, service.ErrDocumentNotFound):
		return fiber.StatusNotFound, "Document not found", true
	case errors.Is(err, service.ErrTemplateUnavailable):
		return fiber.StatusNotFound, "Template not found or inactive", true
	case errors.Is(err, service.ErrDesignUnavailable):
		return fiber.StatusNotFound, "Design template not found, inactive or not available for this format", true
	case errors.Is(err, service.ErrUserNotFound):
		return fiber.StatusNotFound, "User not found", true
	case errors.Is(err, service.ErrNotFound):
		return fiber.StatusNotFound, "Not found", true
	case errors.Is(err, service.ErrUserExists):
		return fiber.StatusConflict, "User already exists", true
	case errors.Is(err, service.ErrInUse):
		return fiber.StatusConflict, "Still referenced by documents; deactivate it instead", true
	case errors.Is(err, service.ErrQueueUnavailable):
		return fiber.StatusServiceUnavailable, "Generation queue unavailable, try again later", true
	default:
		return fiber.StatusInternalServerError, "", false
	}
}

func respondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	code, msg, ok := statusFor(err)
	if !ok {
		logger.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
		msg = fallback
	}
	return c.Status(code).JSON(fiber.Map{
		"error": msg,
	})
}

// getUser and parseID return *fiber.Error values rendered by the app's
// ErrorHandler.
func getUser(c *fiber.Ctx, logger *zap.Logger) (*models.User, error) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		logger.Warn("Failed to resolve current user", zap.Error(err))
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return user, nil
}

func parseID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}
	return id, nil
}

var errBadBody = fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
