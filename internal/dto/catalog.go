package dto

import (
	"time"

	"docuai/internal/models"
)

type TemplateRequest struct {
	Name             string                 `json:"name" yaml:"name"`
	Type             string                 `json:"type" yaml:"type"`
	Description      string                 `json:"description" yaml:"description"`
	SystemPrompt     string                 `json:"systemPrompt,omitempty" yaml:"systemPrompt,omitempty"`
	Fields           []models.TemplateField `json:"fields" yaml:"fields"`
	SupportedFormats []string               `json:"supportedFormats" yaml:"supportedFormats"`
	RequiredTier     string                 `json:"requiredTier" yaml:"requiredTier"`
	IsActive         *bool                  `json:"isActive,omitempty" yaml:"isActive,omitempty"`
}

type TemplateResponse struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	Type             string                 `json:"type"`
	Description      string                 `json:"description"`
	SystemPrompt     string                 `json:"systemPrompt,omitempty"`
	Fields           []models.TemplateField `json:"fields"`
	SupportedFormats []string               `json:"supportedFormats"`
	RequiredTier     string                 `json:"requiredTier"`
	IsActive         bool                   `json:"isActive"`
	Locked           bool                   `json:"locked"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

type DesignRequest struct {
	Name             string              `json:"name" yaml:"name"`
	Description      string              `json:"description" yaml:"description"`
	Tokens           models.DesignTokens `json:"tokens" yaml:"tokens"`
	SupportedFormats []string            `json:"supportedFormats" yaml:"supportedFormats"`
	IsActive         *bool               `json:"isActive,omitempty" yaml:"isActive,omitempty"`
	IsDefault        bool                `json:"isDefault,omitempty" yaml:"isDefault,omitempty"`
}

type DesignResponse struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	Tokens           models.DesignTokens `json:"tokens"`
	SupportedFormats []string            `json:"supportedFormats"`
	IsActive         bool                `json:"isActive"`
	IsDefault        bool                `json:"isDefault"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

type BrandingRequest struct {
	CompanyName    string `json:"companyName" yaml:"companyName"`
	LogoURL        string `json:"logoUrl" yaml:"logoUrl"`
	PrimaryColor   string `json:"primaryColor" yaml:"primaryColor"`
	SecondaryColor string `json:"secondaryColor" yaml:"secondaryColor"`
	HeadingFont    string `json:"headingFont" yaml:"headingFont"`
	BodyFont       string `json:"bodyFont" yaml:"bodyFont"`
}

type BrandingResponse struct {
	BrandingRequest
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type ActiveRequest struct {
	IsActive bool `json:"isActive"`
}
