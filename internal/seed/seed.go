// Package seed loads the template catalog, design presets and tenant branding
// from a YAML file and upserts them by name.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"docuai/internal/dto"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type File struct {
	Templates []dto.TemplateRequest `yaml:"templates"`
	Designs   []dto.DesignRequest   `yaml:"designs"`
	Branding  *dto.BrandingRequest  `yaml:"branding"`
}

// Catalog is implemented by *service.AdminService.
type Catalog interface {
	ListTemplates(ctx context.Context) ([]dto.TemplateResponse, error)
	CreateTemplate(ctx context.Context, req *dto.TemplateRequest) (*dto.TemplateResponse, error)
	UpdateTemplate(ctx context.Context, id uuid.UUID, req *dto.TemplateRequest) (*dto.TemplateResponse, error)
	ListDesigns(ctx context.Context) ([]dto.DesignResponse, error)
	CreateDesign(ctx context.Context, req *dto.DesignRequest) (*dto.DesignResponse, error)
	UpdateDesign(ctx context.Context, id uuid.UUID, req *dto.DesignRequest) (*dto.DesignResponse, error)
	PutBranding(ctx context.Context, req *dto.BrandingRequest) (*dto.BrandingResponse, error)
}

type Result struct {
	TemplatesCreated int
	TemplatesUpdated int
	DesignsCreated   int
	DesignsUpdated   int
	Branding         bool
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &f, nil
}

// Apply upserts every entry. Names are matched case-insensitively, so running
// the same file twice changes nothing the second time.
func Apply(ctx context.Context, catalog Catalog, f *File, logger *zap.Logger) (*Result, error) {
	res := &Result{}

	templates, err := catalog.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	templateIDs := make(map[string]string, len(templates))
	for _, t := range templates {
		templateIDs[key(t.Name)] = t.ID
	}

	for i := range f.Templates {
		req := &f.Templates[i]
		if id, ok := templateIDs[key(req.Name)]; ok {
			if _, err := catalog.UpdateTemplate(ctx, uuid.MustParse(id), req); err != nil {
				return nil, fmt.Errorf("template %q: %w", req.Name, err)
			}
			res.TemplatesUpdated++
			logger.Info("Template updated", zap.String("name", req.Name))
			continue
		}
		created, err := catalog.CreateTemplate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", req.Name, err)
		}
		templateIDs[key(req.Name)] = created.ID
		res.TemplatesCreated++
		logger.Info("Template created", zap.String("name", req.Name), zap.String("id", created.ID))
	}

	designs, err := catalog.ListDesigns(ctx)
	if err != nil {
		return nil, err
	}
	designIDs := make(map[string]string, len(designs))
	for _, d := range designs {
		designIDs[key(d.Name)] = d.ID
	}

	for i := range f.Designs {
		req := &f.Designs[i]
		if id, ok := designIDs[key(req.Name)]; ok {
			if _, err := catalog.UpdateDesign(ctx, uuid.MustParse(id), req); err != nil {
				return nil, fmt.Errorf("design %q: %w", req.Name, err)
			}
			res.DesignsUpdated++
			logger.Info("Design updated", zap.String("name", req.Name))
			continue
		}
		created, err := catalog.CreateDesign(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("design %q: %w", req.Name, err)
		}
		designIDs[key(req.Name)] = created.ID
		res.DesignsCreated++
		logger.Info("Design created", zap.String("name", req.Name), zap.String("id", created.ID))
	}

	if f.Branding != nil {
		if _, err := catalog.PutBranding(ctx, f.Branding); err != nil {
			return nil, fmt.Errorf("branding: %w", err)
		}
		res.Branding = true
	}

	return res, nil
}

func key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
