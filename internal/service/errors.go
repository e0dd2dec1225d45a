package service

import (
	"errors"
	"fmt"

	"docuai/internal/models"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")

	ErrUnauthorized        = errors.New("authentication required")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidInput        = errors.New("invalid input")
	ErrTemplateUnavailable = errors.New("template not found or inactive")
	ErrTemplateLocked      = errors.New("template requires a higher subscription tier")
	ErrFormatUnsupported   = errors.New("format not supported by template")
	ErrDesignUnavailable   = errors.New("design template not found, inactive or incompatible with format")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrQueueUnavailable    = errors.New("queue unavailable")
	ErrNotFound            = errors.New("not found")
	ErrInUse               = errors.New("still referenced by documents")

	// ErrInterrupted means a run stopped because the process is shutting
	// down. The document stays PROCESSING and the job is not acknowledged.
	ErrInterrupted = errors.New("generation interrupted")
)

// QuotaExceededError is returned by admission when the monthly allowance of
// completed generations is used up.
type QuotaExceededError struct {
	Limit int
	Tier  models.Tier
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("Monthly limit reached (%d generations) on the %s plan. Upgrade to generate more documents.", e.Limit, e.Tier)
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
