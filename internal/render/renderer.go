package render

import (
	"errors"
	"fmt"
	"strings"

	"docuai/internal/models"
)

var ErrNoRenderer = errors.New("no renderer for format")

// Renderer turns generated content into the bytes of one output format.
// design is nil for formats that carry no theming.
type Renderer interface {
	Render(content map[string]any, templateType models.TemplateType, design *models.DesignTokens) ([]byte, error)
}

type Registry struct {
	renderers map[models.Format]Renderer
}

func NewRegistry() *Registry {
	return &Registry{renderers: make(map[models.Format]Renderer)}
}

// DefaultRegistry wires the built-in DOCX, PDF and XLSX renderers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(models.FormatDOCX, NewDOCXRenderer())
	r.Register(models.FormatPDF, NewPDFRenderer())
	r.Register(models.FormatXLSX, NewXLSXRenderer())
	return r
}

func (r *Registry) Register(format models.Format, renderer Renderer) {
	r.renderers[format] = renderer
}

func (r *Registry) Get(format models.Format) (Renderer, error) {
	renderer, ok := r.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrNoRenderer, format)
	}
	return renderer, nil
}

func (r *Registry) Render(format models.Format, content map[string]any, templateType models.TemplateType, design *models.DesignTokens) ([]byte, error) {
	renderer, err := r.Get(format)
	if err != nil {
		return nil, err
	}
	return renderer.Render(content, templateType, design)
}

// style is the resolved subset of design tokens the paginated renderers use.
type style struct {
	primary, secondary, heading, body string
	headingFont, bodyFont             string
	spacing                           models.Spacing
	tableStyle                        string
	coverStyle                        string
	logoURL                           string
}

const (
	fallbackPrimary = "1F4E79"
	fallbackBody    = "333333"
	fallbackFont    = "Calibri"
)

func newStyle(d *models.DesignTokens) style {
	s := style{
		primary:     fallbackPrimary,
		secondary:   fallbackPrimary,
		heading:     fallbackPrimary,
		body:        fallbackBody,
		headingFont: fallbackFont,
		bodyFont:    fallbackFont,
		spacing:     models.SpacingNormal,
		tableStyle:  "grid",
		coverStyle:  "simple",
	}
	if d == nil {
		return s
	}
	s.primary = hexOr(d.PrimaryColor, s.primary)
	s.secondary = hexOr(d.SecondaryColor, s.primary)
	s.heading = hexOr(d.HeadingColor, s.primary)
	s.body = hexOr(d.BodyColor, s.body)
	if d.HeadingFont != "" {
		s.headingFont = d.HeadingFont
	}
	if d.BodyFont != "" {
		s.bodyFont = d.BodyFont
	}
	if d.Spacing.Valid() {
		s.spacing = d.Spacing
	}
	if d.TableStyle != "" {
		s.tableStyle = d.TableStyle
	}
	if d.CoverStyle != "" {
		s.coverStyle = d.CoverStyle
	}
	s.logoURL = d.LogoURL
	return s
}

// hexOr normalizes "#1f4e79" to "1F4E79" and falls back on anything that is
// not a six digit hex color.
func hexOr(c, fallback string) string {
	c = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c), "#"))
	if len(c) != 6 {
		return fallback
	}
	for _, r := range c {
		if !(r >= '0' && r <= '9' || r >= 'A' && r <= 'F') {
			return fallback
		}
	}
	return c
}

func typeLabel(t models.TemplateType) string {
	switch t {
	case models.TemplateMinutes:
		return "Meeting Minutes"
	case "":
		return "Document"
	default:
		return humanize(string(t))
	}
}
