package service

import (
	"context"
	"testing"

	"docuai/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func preset(name string, isDefault, active bool, formats ...models.Format) *models.DesignTemplate {
	return &models.DesignTemplate{
		ID:   uuid.New(),
		Name: name,
		Tokens: models.DesignTokens{
			PrimaryColor: "#" + name[:1] + "00000",
			HeadingFont:  name + " Serif",
			BodyFont:     name + " Sans",
			Spacing:      models.SpacingCompact,
		},
		SupportedFormats: formats,
		IsActive:         active,
		IsDefault:        isDefault,
	}
}

func TestDesignResolverPrecedence(t *testing.T) {
	ctx := context.Background()
	selected := preset("Alpha", false, true, models.FormatPDF, models.FormatDOCX)
	def := preset("Bravo", true, true, models.FormatPDF)

	r := NewDesignResolver(newFakeDesigns(selected, def), &fakeBrand{})

	got, err := r.Resolve(ctx, &selected.ID, models.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, DesignSourceSelected, got.Source)
	assert.Equal(t, "Alpha Serif", got.Tokens.HeadingFont)

	got, err = r.Resolve(ctx, nil, models.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, DesignSourceDefault, got.Source)
	assert.Equal(t, "Bravo Serif", got.Tokens.HeadingFont)

	// the default lacks DOCX, so DOCX falls through to the system design
	got, err = r.Resolve(ctx, nil, models.FormatDOCX)
	require.NoError(t, err)
	assert.Equal(t, DesignSourceSystem, got.Source)
	assert.Equal(t, SystemDesign(), got.Tokens)
}

func TestDesignResolverInactiveDefaultFallsBack(t *testing.T) {
	def := preset("Bravo", true, false, models.FormatPDF)
	r := NewDesignResolver(newFakeDesigns(def), &fakeBrand{})

	got, err := r.Resolve(context.Background(), nil, models.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, DesignSourceSystem, got.Source)
}

func TestDesignResolverSelectedUnavailable(t *testing.T) {
	inactive := preset("Alpha", false, false, models.FormatPDF)
	pdfOnly := preset("Charlie", false, true, models.FormatPDF)
	missing := uuid.New()
	r := NewDesignResolver(newFakeDesigns(inactive, pdfOnly), &fakeBrand{})

	for name, tc := range map[string]struct {
		id     uuid.UUID
		format models.Format
	}{
		"missing":      {missing, models.FormatPDF},
		"inactive":     {inactive.ID, models.FormatPDF},
		"wrong format": {pdfOnly.ID, models.FormatDOCX},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), &tc.id, tc.format)
			assert.ErrorIs(t, err, ErrDesignUnavailable)
		})
	}
}

func TestDesignResolverBranding(t *testing.T) {
	ctx := context.Background()
	brand := &fakeBrand{b: &models.BrandSettings{
		LogoURL:      "https://cdn.example.com/logo.png",
		PrimaryColor: "#AA0000",
		HeadingFont:  "Georgia",
	}}
	selected := preset("Alpha", false, true, models.FormatPDF)
	r := NewDesignResolver(newFakeDesigns(selected), brand)

	// presets only pick up the logo
	got, err := r.Resolve(ctx, &selected.ID, models.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/logo.png", got.Tokens.LogoURL)
	assert.Equal(t, "#A00000", got.Tokens.PrimaryColor)
	assert.Equal(t, "Alpha Serif", got.Tokens.HeadingFont)

	// the system fallback takes every set branding field
	got, err = r.Resolve(ctx, nil, models.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, DesignSourceSystem, got.Source)
	assert.Equal(t, "#AA0000", got.Tokens.PrimaryColor)
	assert.Equal(t, "#AA0000", got.Tokens.HeadingColor)
	assert.Equal(t, "Georgia", got.Tokens.HeadingFont)
	assert.Equal(t, SystemDesign().SecondaryColor, got.Tokens.SecondaryColor)
	assert.Equal(t, SystemDesign().BodyFont, got.Tokens.BodyFont)
	assert.Equal(t, "https://cdn.example.com/logo.png", got.Tokens.LogoURL)
}

func TestDesignResolverPresetLogoFollowsBranding(t *testing.T) {
	withLogo := func(name string, isDefault bool) *models.DesignTemplate {
		d := preset(name, isDefault, true, models.FormatPDF)
		d.Tokens.LogoURL = "https://cdn.example.com/" + name + ".png"
		return d
	}
	selected := withLogo("Alpha", false)
	def := withLogo("Bravo", true)

	tests := []struct {
		name     string
		brand    *models.BrandSettings
		designID *uuid.UUID
		want     string
	}{
		{"selected, no branding record", nil, &selected.ID, ""},
		{"selected, branding without logo", &models.BrandSettings{PrimaryColor: "#AA0000"}, &selected.ID, ""},
		{"selected, branding logo", &models.BrandSettings{LogoURL: "https://cdn.example.com/brand.png"}, &selected.ID, "https://cdn.example.com/brand.png"},
		{"default, no branding record", nil, nil, ""},
		{"default, branding logo", &models.BrandSettings{LogoURL: "https://cdn.example.com/brand.png"}, nil, "https://cdn.example.com/brand.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewDesignResolver(newFakeDesigns(selected, def), &fakeBrand{b: tt.brand})
			got, err := r.Resolve(context.Background(), tt.designID, models.FormatPDF)
			require.NoError(t, err)
			assert.NotEqual(t, DesignSourceSystem, got.Source)
			assert.Equal(t, tt.want, got.Tokens.LogoURL)
		})
	}
}
