package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"docuai/internal/dto"
	"docuai/internal/models"
	"docuai/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var hexColor = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)

// AdminService backs the ADMIN-only surface: catalog management, branding,
// user tiers and roles, and usage statistics.
type AdminService struct {
	templates TemplateStore
	designs   DesignStore
	brand     BrandStore
	users     UserStore
	docs      DocumentStore
	usage     UsageStore
	logger    *zap.Logger
	now       func() time.Time
}

func NewAdminService(
	templates TemplateStore,
	designs DesignStore,
	brand BrandStore,
	users UserStore,
	docs DocumentStore,
	usage UsageStore,
	logger *zap.Logger,
) *AdminService {
	return &AdminService{
		templates: templates,
		designs:   designs,
		brand:     brand,
		users:     users,
		docs:      docs,
		usage:     usage,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AdminService) ListTemplates(ctx context.Context) ([]dto.TemplateResponse, error) {
	list, err := s.templates.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	out := make([]dto.TemplateResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toTemplateResponse(t))
	}
	return out, nil
}

func (s *AdminService) CreateTemplate(ctx context.Context, req *dto.TemplateRequest) (*dto.TemplateResponse, error) {
	now := s.now()
	t := &models.Template{ID: uuid.New(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := applyTemplateRequest(t, req); err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	s.logger.Info("Template created", zap.String("template_id", t.ID.String()), zap.String("name", t.Name))
	resp := toTemplateResponse(t)
	return &resp, nil
}

func (s *AdminService) UpdateTemplate(ctx context.Context, id uuid.UUID, req *dto.TemplateRequest) (*dto.TemplateResponse, error) {
	t, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := applyTemplateRequest(t, req); err != nil {
		return nil, err
	}
	t.UpdatedAt = s.now()
	if err := s.templates.Update(ctx, t); err != nil {
		return nil, notFound(err)
	}
	resp := toTemplateResponse(t)
	return &resp, nil
}

func (s *AdminService) SetTemplateActive(ctx context.Context, id uuid.UUID, active bool) error {
	return notFound(s.templates.SetActive(ctx, id, active))
}

// DeleteTemplate refuses templates that documents still reference;
// deactivate those instead.
func (s *AdminService) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	return notFound(s.templates.Delete(ctx, id))
}

func (s *AdminService) ListDesigns(ctx context.Context) ([]dto.DesignResponse, error) {
	list, err := s.designs.List(ctx, false, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	return toDesignResponses(list), nil
}

func (s *AdminService) CreateDesign(ctx context.Context, req *dto.DesignRequest) (*dto.DesignResponse, error) {
	now := s.now()
	d := &models.DesignTemplate{ID: uuid.New(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := applyDesignRequest(d, req); err != nil {
		return nil, err
	}
	d.IsDefault = req.IsDefault
	if err := s.designs.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create design: %w", err)
	}
	s.logger.Info("Design created", zap.String("design_id", d.ID.String()), zap.String("name", d.Name))
	resp := toDesignResponse(d)
	return &resp, nil
}

func (s *AdminService) UpdateDesign(ctx context.Context, id uuid.UUID, req *dto.DesignRequest) (*dto.DesignResponse, error) {
	d, err := s.designs.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if err := applyDesignRequest(d, req); err != nil {
		return nil, err
	}
	d.UpdatedAt = s.now()
	if err := s.designs.Update(ctx, d); err != nil {
		return nil, notFound(err)
	}
	if req.IsDefault && !d.IsDefault {
		if err := s.designs.SetDefault(ctx, d.ID); err != nil {
			return nil, notFound(err)
		}
		d.IsDefault = true
	}
	resp := toDesignResponse(d)
	return &resp, nil
}

func (s *AdminService) SetDesignActive(ctx context.Context, id uuid.UUID, active bool) error {
	return notFound(s.designs.SetActive(ctx, id, active))
}

// SetDefaultDesign makes id the tenant default; the previous default is
// cleared in the same transaction.
func (s *AdminService) SetDefaultDesign(ctx context.Context, id uuid.UUID) error {
	return notFound(s.designs.SetDefault(ctx, id))
}

func (s *AdminService) DeleteDesign(ctx context.Context, id uuid.UUID) error {
	return notFound(s.designs.Delete(ctx, id))
}

func (s *AdminService) GetBranding(ctx context.Context) (*dto.BrandingResponse, error) {
	b, err := s.brand.Get(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return &dto.BrandingResponse{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load branding: %w", err)
	}
	updated := b.UpdatedAt
	return &dto.BrandingResponse{
		BrandingRequest: dto.BrandingRequest{
			CompanyName:    b.CompanyName,
			LogoURL:        b.LogoURL,
			PrimaryColor:   b.PrimaryColor,
			SecondaryColor: b.SecondaryColor,
			HeadingFont:    b.HeadingFont,
			BodyFont:       b.BodyFont,
		},
		UpdatedAt: &updated,
	}, nil
}

// PutBranding overwrites the branding record wholesale.
func (s *AdminService) PutBranding(ctx context.Context, req *dto.BrandingRequest) (*dto.BrandingResponse, error) {
	for name, c := range map[string]string{"primaryColor": req.PrimaryColor, "secondaryColor": req.SecondaryColor} {
		if c != "" && !hexColor.MatchString(c) {
			return nil, invalidInput("%s must be a hex color like #1F4E79", name)
		}
	}
	b := &models.BrandSettings{
		CompanyName:    strings.TrimSpace(req.CompanyName),
		LogoURL:        strings.TrimSpace(req.LogoURL),
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		HeadingFont:    strings.TrimSpace(req.HeadingFont),
		BodyFont:       strings.TrimSpace(req.BodyFont),
		UpdatedAt:      s.now(),
	}
	if err := s.brand.Put(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save branding: %w", err)
	}
	return &dto.BrandingResponse{BrandingRequest: *req, UpdatedAt: &b.UpdatedAt}, nil
}

func (s *AdminService) ListUsers(ctx context.Context, limit, offset int) ([]dto.AdminUserResponse, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	users, err := s.users.List(ctx, limit, max(0, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	out := make([]dto.AdminUserResponse, 0, len(users))
	for _, u := range users {
		resp := dto.AdminUserResponse{UserResponse: ToUserResponse(u), CreatedAt: u.CreatedAt}
		if u.ExternalID != nil {
			resp.ExternalID = *u.ExternalID
		}
		out = append(out, resp)
	}
	return out, nil
}

func (s *AdminService) SetTier(ctx context.Context, id uuid.UUID, tier string) error {
	t, err := models.ParseTier(tier)
	if err != nil {
		return invalidInput("tier must be one of FREE, STARTER, PRO, ENTERPRISE")
	}
	if err := s.users.SetTier(ctx, id, t); err != nil {
		return userNotFound(err)
	}
	s.logger.Info("User tier changed", zap.String("user_id", id.String()), zap.String("tier", string(t)))
	return nil
}

func (s *AdminService) SetRole(ctx context.Context, id uuid.UUID, role string) error {
	r, err := models.ParseRole(role)
	if err != nil {
		return invalidInput("role must be USER or ADMIN")
	}
	if err := s.users.SetRole(ctx, id, r); err != nil {
		return userNotFound(err)
	}
	s.logger.Info("User role changed", zap.String("user_id", id.String()), zap.String("role", string(r)))
	return nil
}

// PromoteByEmail grants ADMIN to an existing account.
func (s *AdminService) PromoteByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, userNotFound(err)
	}
	if err := s.users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return nil, userNotFound(err)
	}
	u.Role = models.RoleAdmin
	return u, nil
}

func (s *AdminService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	counts, err := s.docs.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}
	start, end := models.MonthBounds(s.now())
	generations, err := s.docs.CountCompletedBetween(ctx, nil, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to count generations: %w", err)
	}
	tokens, err := s.usage.TokensBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to sum tokens: %w", err)
	}

	byStatus := map[string]int{
		string(models.StatusProcessing): 0,
		string(models.StatusCompleted):  0,
		string(models.StatusFailed):     0,
	}
	for st, n := range counts {
		byStatus[string(st)] = n
	}
	return &dto.StatsResponse{
		DocumentsByStatus:    byStatus,
		GenerationsThisMonth: generations,
		TokensUsedThisMonth:  tokens,
		PeriodStart:          start,
	}, nil
}

func applyTemplateRequest(t *models.Template, req *dto.TemplateRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return invalidInput("name is required")
	}
	typ, err := models.ParseTemplateType(req.Type)
	if err != nil {
		return invalidInput("type must be one of invoice, report, memo, proposal, letter, contract, minutes")
	}
	formats, err := models.ParseFormats(req.SupportedFormats)
	if err != nil || len(formats) == 0 {
		return invalidInput("supportedFormats must list at least one of DOCX, PDF, XLSX")
	}
	tier := models.TierFree
	if strings.TrimSpace(req.RequiredTier) != "" {
		if tier, err = models.ParseTier(req.RequiredTier); err != nil {
			return invalidInput("requiredTier must be one of FREE, STARTER, PRO, ENTERPRISE")
		}
	}
	seen := make(map[string]bool, len(req.Fields))
	for _, f := range req.Fields {
		if strings.TrimSpace(f.Name) == "" {
			return invalidInput("every field needs a name")
		}
		if seen[f.Name] {
			return invalidInput("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
	}

	t.Name = name
	t.Type = typ
	t.Description = strings.TrimSpace(req.Description)
	t.SystemPrompt = strings.TrimSpace(req.SystemPrompt)
	t.Fields = req.Fields
	t.SupportedFormats = formats
	t.RequiredTier = tier
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	return nil
}

func applyDesignRequest(d *models.DesignTemplate, req *dto.DesignRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return invalidInput("name is required")
	}
	formats, err := models.ParseFormats(req.SupportedFormats)
	if err != nil || len(formats) == 0 {
		return invalidInput("supportedFormats must list DOCX, PDF or both")
	}
	for _, f := range formats {
		if !f.Paginated() {
			return invalidInput("designs apply to DOCX and PDF only")
		}
	}
	tok := req.Tokens
	for name, c := range map[string]string{
		"primaryColor":   tok.PrimaryColor,
		"secondaryColor": tok.SecondaryColor,
		"headingColor":   tok.HeadingColor,
		"bodyColor":      tok.BodyColor,
	} {
		if c != "" && !hexColor.MatchString(c) {
			return invalidInput("tokens.%s must be a hex color like #1F4E79", name)
		}
	}
	if tok.Spacing != "" && !tok.Spacing.Valid() {
		return invalidInput("tokens.spacing must be compact, normal or relaxed")
	}

	d.Name = name
	d.Description = strings.TrimSpace(req.Description)
	d.Tokens = tok
	d.SupportedFormats = formats
	if req.IsActive != nil {
		d.IsActive = *req.IsActive
	}
	return nil
}

func notFound(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrInUse):
		return ErrInUse
	default:
		return err
	}
}

func userNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
