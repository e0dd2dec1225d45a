package handlers

import (
	"docuai/internal/dto"
	"docuai/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHandler serves /api/v1/admin. Every route sits behind RequireAdmin.
type AdminHandler struct {
	admin  *service.AdminService
	logger *zap.Logger
}

func NewAdminHandler(admin *service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// ListTemplates godoc
// @Summary List all templates
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.TemplateResponse
// @Failure 403 {object} dto.ErrorResponse
// @Router /api/v1/admin/templates [get]
func (h *AdminHandler) ListTemplates(c *fiber.Ctx) error {
	list, err := h.admin.ListTemplates(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list templates")
	}
	return c.JSON(list)
}

// CreateTemplate godoc
// @Summary Create a template
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.TemplateRequest true "Template"
// @Security Bearer
// @Success 201 {object} dto.TemplateResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/admin/templates [post]
func (h *AdminHandler) CreateTemplate(c *fiber.Ctx) error {
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	t, err := h.admin.CreateTemplate(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create template")
	}
	return c.Status(fiber.StatusCreated).JSON(t)
}

// UpdateTemplate godoc
// @Summary Update a template
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body dto.TemplateRequest true "Template"
// @Security Bearer
// @Success 200 {object} dto.TemplateResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/admin/templates/{id} [put]
func (h *AdminHandler) UpdateTemplate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.TemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	t, err := h.admin.UpdateTemplate(c.Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update template")
	}
	return c.JSON(t)
}

// SetTemplateActive godoc
// @Summary Activate or deactivate a template
// @Tags admin
// @Accept json
// @Param id path string true "Template ID"
// @Param request body dto.ActiveRequest true "Active flag"
// @Security Bearer
// @Success 204
// @Router /api/v1/admin/templates/{id}/active [put]
func (h *AdminHandler) SetTemplateActive(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.ActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	if err := h.admin.SetTemplateActive(c.Context(), id, req.IsActive); err != nil {
		return respondError(c, h.logger, err, "Failed to update template")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteTemplate godoc
// @Summary Delete an unused template
// @Tags admin
// @Param id path string true "Template ID"
// @Security Bearer
// @Success 204
// @Failure 409 {object} dto.ErrorResponse
// @Router /api/v1/admin/templates/{id} [delete]
func (h *AdminHandler) DeleteTemplate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteTemplate(c.Context(), id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete template")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListDesigns godoc
// @Summary List all design templates
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.DesignResponse
// @Router /api/v1/admin/designs [get]
func (h *AdminHandler) ListDesigns(c *fiber.Ctx) error {
	list, err := h.admin.ListDesigns(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list designs")
	}
	return c.JSON(list)
}

// CreateDesign godoc
// @Summary Create a design template
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.DesignRequest true "Design"
// @Security Bearer
// @Success 201 {object} dto.DesignResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/admin/designs [post]
func (h *AdminHandler) CreateDesign(c *fiber.Ctx) error {
	var req dto.DesignRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	d, err := h.admin.CreateDesign(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to create design")
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}

// UpdateDesign godoc
// @Summary Update a design template
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Design ID"
// @Param request body dto.DesignRequest true "Design"
// @Security Bearer
// @Success 200 {object} dto.DesignResponse
// @Router /api/v1/admin/designs/{id} [put]
func (h *AdminHandler) UpdateDesign(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.DesignRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	d, err := h.admin.UpdateDesign(c.Context(), id, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update design")
	}
	return c.JSON(d)
}

// SetDesignActive godoc
// @Summary Activate or deactivate a design template
// @Tags admin
// @Accept json
// @Param id path string true "Design ID"
// @Param request body dto.ActiveRequest true "Active flag"
// @Security Bearer
// @Success 204
// @Router /api/v1/admin/designs/{id}/active [put]
func (h *AdminHandler) SetDesignActive(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.ActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	if err := h.admin.SetDesignActive(c.Context(), id, req.IsActive); err != nil {
		return respondError(c, h.logger, err, "Failed to update design")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetDefaultDesign godoc
// @Summary Make a design the tenant default
// @Tags admin
// @Param id path string true "Design ID"
// @Security Bearer
// @Success 204
// @Router /api/v1/admin/designs/{id}/default [put]
func (h *AdminHandler) SetDefaultDesign(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.admin.SetDefaultDesign(c.Context(), id); err != nil {
		return respondError(c, h.logger, err, "Failed to set default design")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteDesign godoc
// @Summary Delete a design template
// @Tags admin
// @Param id path string true "Design ID"
// @Security Bearer
// @Success 204
// @Router /api/v1/admin/designs/{id} [delete]
func (h *AdminHandler) DeleteDesign(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.admin.DeleteDesign(c.Context(), id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete design")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBranding godoc
// @Summary Tenant branding
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.BrandingResponse
// @Router /api/v1/admin/branding [get]
func (h *AdminHandler) GetBranding(c *fiber.Ctx) error {
	b, err := h.admin.GetBranding(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load branding")
	}
	return c.JSON(b)
}

// PutBranding godoc
// @Summary Replace tenant branding
// @Tags admin
// @Accept json
// @Produce json
// @Param request body dto.BrandingRequest true "Branding"
// @Security Bearer
// @Success 200 {object} dto.BrandingResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/admin/branding [put]
func (h *AdminHandler) PutBranding(c *fiber.Ctx) error {
	var req dto.BrandingRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	b, err := h.admin.PutBranding(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to save branding")
	}
	return c.JSON(b)
}

// ListUsers godoc
// @Summary List users
// @Tags admin
// @Produce json
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {array} dto.AdminUserResponse
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.Context(), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list users")
	}
	return c.JSON(users)
}

// SetTier godoc
// @Summary Change a user's subscription tier
// @Tags admin
// @Accept json
// @Param id path string true "User ID"
// @Param request body dto.SetTierRequest true "Tier"
// @Security Bearer
// @Success 204
// @Router /api/v1/admin/users/{id}/tier [put]
func (h *AdminHandler) SetTier(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.SetTierRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	if err := h.admin.SetTier(c.Context(), id, req.Tier); err != nil {
		return respondError(c, h.logger, err, "Failed to update tier")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetRole godoc
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Param id path string true "User ID"
// @Param request body dto.SetRoleRequest true "Role"
// @Security Bearer
// @Success 204
// @Router /api/v1/admin/users/{id}/role [put]
func (h *AdminHandler) SetRole(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}
	if err := h.admin.SetRole(c.Context(), id, req.Role); err != nil {
		return respondError(c, h.logger, err, "Failed to update role")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stats godoc
// @Summary Usage statistics
// @Tags admin
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.StatsResponse
// @Router /api/v1/admin/stats [get]
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.Context())
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load stats")
	}
	return c.JSON(stats)
}
