package service

import (
	"context"
	"errors"
	"fmt"

	"docuai/internal/models"
	"docuai/internal/repository"

	"github.com/google/uuid"
)

type DesignSource string

const (
	DesignSourceSelected DesignSource = "selected"
	DesignSourceDefault  DesignSource = "default"
	DesignSourceSystem   DesignSource = "system"
)

type ResolvedDesign struct {
	Tokens models.DesignTokens
	Source DesignSource
}

// SystemDesign is used when neither a selected nor a default design applies.
func SystemDesign() models.DesignTokens {
	return models.DesignTokens{
		PrimaryColor:   "#1F4E79",
		SecondaryColor: "#2E75B6",
		HeadingColor:   "#1F4E79",
		BodyColor:      "#333333",
		HeadingFont:    "Calibri",
		BodyFont:       "Calibri",
		Spacing:        models.SpacingNormal,
		TableStyle:     "grid",
		CoverStyle:     "simple",
	}
}

type DesignResolver struct {
	designs DesignStore
	brand   BrandStore
}

func NewDesignResolver(designs DesignStore, brand BrandStore) *DesignResolver {
	return &DesignResolver{designs: designs, brand: brand}
}

// Resolve picks tokens by strict precedence: the explicitly selected design,
// then the tenant default, then SystemDesign. Branding is layered on top:
// presets only take the logo, the system fallback takes every set field.
func (r *DesignResolver) Resolve(ctx context.Context, designID *uuid.UUID, format models.Format) (*ResolvedDesign, error) {
	resolved, err := r.pick(ctx, designID, format)
	if err != nil {
		return nil, err
	}

	brand, err := r.brand.Get(ctx)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		brand = &models.BrandSettings{}
	case err != nil:
		return nil, fmt.Errorf("failed to load branding: %w", err)
	}
	applyBranding(resolved, brand)
	return resolved, nil
}

func (r *DesignResolver) pick(ctx context.Context, designID *uuid.UUID, format models.Format) (*ResolvedDesign, error) {
	if designID != nil {
		d, err := r.designs.GetByID(ctx, *designID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrDesignUnavailable
			}
			return nil, fmt.Errorf("failed to load design: %w", err)
		}
		if !d.IsActive || !d.Supports(format) {
			return nil, ErrDesignUnavailable
		}
		return &ResolvedDesign{Tokens: d.Tokens, Source: DesignSourceSelected}, nil
	}

	d, err := r.designs.GetDefault(ctx)
	switch {
	case err == nil && d.IsActive && d.Supports(format):
		return &ResolvedDesign{Tokens: d.Tokens, Source: DesignSourceDefault}, nil
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("failed to load default design: %w", err)
	}
	return &ResolvedDesign{Tokens: SystemDesign(), Source: DesignSourceSystem}, nil
}

// applyBranding gives presets the branding logo verbatim, even when it is
// empty, so a preset never shows a logo the tenant did not set.
func applyBranding(r *ResolvedDesign, b *models.BrandSettings) {
	if r.Source != DesignSourceSystem {
		r.Tokens.LogoURL = b.LogoURL
		return
	}
	if b.LogoURL != "" {
		r.Tokens.LogoURL = b.LogoURL
	}
	if b.PrimaryColor != "" {
		r.Tokens.PrimaryColor = b.PrimaryColor
		r.Tokens.HeadingColor = b.PrimaryColor
	}
	if b.SecondaryColor != "" {
		r.Tokens.SecondaryColor = b.SecondaryColor
	}
	if b.HeadingFont != "" {
		r.Tokens.HeadingFont = b.HeadingFont
	}
	if b.BodyFont != "" {
		r.Tokens.BodyFont = b.BodyFont
	}
}
