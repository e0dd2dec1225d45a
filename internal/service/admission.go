package service

import (
	"context"
	"errors"
	"fmt"

	"docuai/internal/models"
	"docuai/internal/repository"

	"github.com/google/uuid"
)

// Admission decides whether a generation may start. It has no side effects.
type Admission struct {
	templates     TemplateStore
	subscriptions *SubscriptionService
}

func NewAdmission(templates TemplateStore, subscriptions *SubscriptionService) *Admission {
	return &Admission{templates: templates, subscriptions: subscriptions}
}

func (a *Admission) Admit(ctx context.Context, user *models.User, templateID uuid.UUID, format models.Format) (*models.Template, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}

	tmpl, err := a.templates.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateUnavailable
		}
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if !tmpl.IsActive {
		return nil, ErrTemplateUnavailable
	}
	if !user.Tier.Includes(tmpl.RequiredTier) {
		return nil, ErrTemplateLocked
	}
	if !tmpl.Supports(format) {
		return nil, ErrFormatUnsupported
	}

	summary, err := a.subscriptions.Summary(ctx, user)
	if err != nil {
		return nil, err
	}
	if summary.IsLimitReached {
		return nil, &QuotaExceededError{Limit: summary.Limit, Tier: user.Tier}
	}
	return tmpl, nil
}
