package service

import (
	"context"
	"fmt"
	"strings"

	"docuai/internal/dto"
	"docuai/internal/models"
)

// CatalogService lists what a user can generate from.
type CatalogService struct {
	templates TemplateStore
	designs   DesignStore
}

func NewCatalogService(templates TemplateStore, designs DesignStore) *CatalogService {
	return &CatalogService{templates: templates, designs: designs}
}

// Templates returns active templates. Templates above the user's tier are
// still listed, flagged as locked. System prompts are never exposed here.
func (s *CatalogService) Templates(ctx context.Context, user *models.User) ([]dto.TemplateResponse, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	list, err := s.templates.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	out := make([]dto.TemplateResponse, 0, len(list))
	for _, t := range list {
		resp := toTemplateResponse(t)
		resp.SystemPrompt = ""
		resp.Locked = !user.Tier.Includes(t.RequiredTier)
		out = append(out, resp)
	}
	return out, nil
}

// Designs returns active designs, narrowed to one format when given.
func (s *CatalogService) Designs(ctx context.Context, format string) ([]dto.DesignResponse, error) {
	var f models.Format
	if strings.TrimSpace(format) != "" {
		parsed, err := models.ParseFormat(format)
		if err != nil {
			return nil, invalidInput("format must be one of DOCX, PDF, XLSX")
		}
		f = parsed
	}
	list, err := s.designs.List(ctx, true, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	return toDesignResponses(list), nil
}

func toTemplateResponse(t *models.Template) dto.TemplateResponse {
	fields := t.Fields
	if fields == nil {
		fields = []models.TemplateField{}
	}
	return dto.TemplateResponse{
		ID:               t.ID.String(),
		Name:             t.Name,
		Type:             string(t.Type),
		Description:      t.Description,
		SystemPrompt:     t.SystemPrompt,
		Fields:           fields,
		SupportedFormats: models.FormatsToStrings(t.SupportedFormats),
		RequiredTier:     string(t.RequiredTier),
		IsActive:         t.IsActive,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func toDesignResponse(d *models.DesignTemplate) dto.DesignResponse {
	return dto.DesignResponse{
		ID:               d.ID.String(),
		Name:             d.Name,
		Description:      d.Description,
		Tokens:           d.Tokens,
		SupportedFormats: models.FormatsToStrings(d.SupportedFormats),
		IsActive:         d.IsActive,
		IsDefault:        d.IsDefault,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func toDesignResponses(list []*models.DesignTemplate) []dto.DesignResponse {
	out := make([]dto.DesignResponse, 0, len(list))
	for _, d := range list {
		out = append(out, toDesignResponse(d))
	}
	return out
}
