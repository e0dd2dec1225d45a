package models

import (
	"time"

	"github.com/google/uuid"
)

type Spacing string

const (
	SpacingCompact Spacing = "compact"
	SpacingNormal  Spacing = "normal"
	SpacingRelaxed Spacing = "relaxed"
)

func (s Spacing) Valid() bool {
	return s == SpacingCompact || s == SpacingNormal || s == SpacingRelaxed
}

// DesignTokens is the styling applied to paginated output.
type DesignTokens struct {
	PrimaryColor   string  `json:"primaryColor" yaml:"primaryColor"`
	SecondaryColor string  `json:"secondaryColor" yaml:"secondaryColor"`
	HeadingColor   string  `json:"headingColor" yaml:"headingColor"`
	BodyColor      string  `json:"bodyColor" yaml:"bodyColor"`
	HeadingFont    string  `json:"headingFont" yaml:"headingFont"`
	BodyFont       string  `json:"bodyFont" yaml:"bodyFont"`
	Spacing        Spacing `json:"spacing" yaml:"spacing"`
	TableStyle     string  `json:"tableStyle" yaml:"tableStyle"`
	CoverStyle     string  `json:"coverStyle" yaml:"coverStyle"`
	LogoURL        string  `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
}

type DesignTemplate struct {
	ID               uuid.UUID    `db:"id"`
	Name             string       `db:"name"`
	Description      string       `db:"description"`
	Tokens           DesignTokens `db:"tokens"`
	SupportedFormats []Format     `db:"supported_formats"`
	IsActive         bool         `db:"is_active"`
	IsDefault        bool         `db:"is_default"`
	CreatedAt        time.Time    `db:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at"`
}

func (d *DesignTemplate) Supports(f Format) bool {
	return containsFormat(d.SupportedFormats, f)
}

// BrandSettings is the tenant-wide singleton branding record.
type BrandSettings struct {
	CompanyName    string    `db:"company_name"`
	LogoURL        string    `db:"logo_url"`
	PrimaryColor   string    `db:"primary_color"`
	SecondaryColor string    `db:"secondary_color"`
	HeadingFont    string    `db:"heading_font"`
	BodyFont       string    `db:"body_font"`
	UpdatedAt      time.Time `db:"updated_at"`
}
