package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TemplateType string

const (
	TemplateInvoice  TemplateType = "invoice"
	TemplateReport   TemplateType = "report"
	TemplateMemo     TemplateType = "memo"
	TemplateProposal TemplateType = "proposal"
	TemplateLetter   TemplateType = "letter"
	TemplateContract TemplateType = "contract"
	TemplateMinutes  TemplateType = "minutes"
)

func ParseTemplateType(s string) (TemplateType, error) {
	switch t := TemplateType(strings.ToLower(strings.TrimSpace(s))); t {
	case TemplateInvoice, TemplateReport, TemplateMemo, TemplateProposal, TemplateLetter, TemplateContract, TemplateMinutes:
		return t, nil
	default:
		return "", fmt.Errorf("unknown template type %q", s)
	}
}

// TemplateField describes one input the user fills in before generating.
type TemplateField struct {
	Name     string `json:"name" yaml:"name"`
	Label    string `json:"label" yaml:"label"`
	Kind     string `json:"kind" yaml:"kind"` // text, textarea, number, date, list
	Required bool   `json:"required" yaml:"required"`
}

type Template struct {
	ID               uuid.UUID       `db:"id"`
	Name             string          `db:"name"`
	Type             TemplateType    `db:"type"`
	Description      string          `db:"description"`
	SystemPrompt     string          `db:"system_prompt"`
	Fields           []TemplateField `db:"fields"`
	SupportedFormats []Format        `db:"supported_formats"`
	RequiredTier     Tier            `db:"required_tier"`
	IsActive         bool            `db:"is_active"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (t *Template) Supports(f Format) bool {
	return containsFormat(t.SupportedFormats, f)
}

func containsFormat(formats []Format, f Format) bool {
	for _, x := range formats {
		if x == f {
			return true
		}
	}
	return false
}

func FormatsToStrings(formats []Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

func ParseFormats(values []string) ([]Format, error) {
	out := make([]Format, 0, len(values))
	for _, v := range values {
		f, err := ParseFormat(v)
		if err != nil {
			return nil, err
		}
		if !containsFormat(out, f) {
			out = append(out, f)
		}
	}
	return out, nil
}
