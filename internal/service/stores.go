package service

import (
	"context"
	"time"

	"docuai/internal/models"

	"github.com/google/uuid"
)

// The interfaces below are what the services need from persistence. The
// repository package satisfies them against Postgres; not-found is reported
// as repository.ErrNotFound.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	SetTier(ctx context.Context, id uuid.UUID, tier models.Tier) error
	SetRole(ctx context.Context, id uuid.UUID, role models.Role) error
}

type TemplateStore interface {
	Create(ctx context.Context, t *models.Template) error
	Update(ctx context.Context, t *models.Template) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error)
	List(ctx context.Context, activeOnly bool) ([]*models.Template, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DesignStore interface {
	Create(ctx context.Context, d *models.DesignTemplate) error
	Update(ctx context.Context, d *models.DesignTemplate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DesignTemplate, error)
	GetDefault(ctx context.Context) (*models.DesignTemplate, error)
	List(ctx context.Context, activeOnly bool, format models.Format) ([]*models.DesignTemplate, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetDefault(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type BrandStore interface {
	Get(ctx context.Context) (*models.BrandSettings, error)
	Put(ctx context.Context, b *models.BrandSettings) error
}

type DocumentStore interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	GetByFileURL(ctx context.Context, fileURL string) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]*models.Document, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, content, fileURL string) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error
	SetTags(ctx context.Context, id uuid.UUID, tags []string) error
	CountCompletedBetween(ctx context.Context, userID *uuid.UUID, start, end time.Time) (int, error)
	ListStuck(ctx context.Context, cutoff time.Time, limit int) ([]*models.Document, error)
	CountByStatus(ctx context.Context) (map[models.DocumentStatus]int, error)
}

type UsageStore interface {
	Create(ctx context.Context, u *models.Usage) error
	TokensBetween(ctx context.Context, start, end time.Time) (int64, error)
}

type Enqueuer interface {
	Enqueue(ctx context.Context, documentID uuid.UUID) error
}

// Renderers is satisfied by *render.Registry.
type Renderers interface {
	Render(format models.Format, content map[string]any, templateType models.TemplateType, design *models.DesignTokens) ([]byte, error)
}
