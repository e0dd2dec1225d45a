package handlers

import (
	"docuai/internal/dto"
	"docuai/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	catalog       *service.CatalogService
	subscriptions *service.SubscriptionService
	logger        *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, subscriptions *service.SubscriptionService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog:       catalog,
		subscriptions: subscriptions,
		logger:        logger,
	}
}

// ListTemplates godoc
// @Summary List document templates
// @Description Active templates; those above the caller's tier are flagged locked
// @Tags catalog
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.TemplateResponse
// @Router /api/v1/templates [get]
func (h *CatalogHandler) ListTemplates(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}

	templates, err := h.catalog.Templates(c.Context(), user)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list templates")
	}
	return c.JSON(templates)
}

// ListDesigns godoc
// @Summary List design templates
// @Tags catalog
// @Produce json
// @Param format query string false "DOCX or PDF"
// @Security Bearer
// @Success 200 {array} dto.DesignResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/designs [get]
func (h *CatalogHandler) ListDesigns(c *fiber.Ctx) error {
	designs, err := h.catalog.Designs(c.Context(), c.Query("format"))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list designs")
	}
	return c.JSON(designs)
}

// ListTones godoc
// @Summary List writing tones
// @Tags catalog
// @Produce json
// @Security Bearer
// @Success 200 {array} string
// @Router /api/v1/tones [get]
func (h *CatalogHandler) ListTones(c *fiber.Ctx) error {
	return c.JSON(service.Tones())
}

// Subscription godoc
// @Summary Current plan and monthly usage
// @Tags subscription
// @Produce json
// @Security Bearer
// @Success 200 {object} dto.SubscriptionResponse
// @Router /api/v1/subscription [get]
func (h *CatalogHandler) Subscription(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}

	s, err := h.subscriptions.Summary(c.Context(), user)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load subscription")
	}
	return c.JSON(dto.SubscriptionResponse{
		Tier:           string(s.Tier),
		Limit:          s.Limit,
		Used:           s.Used,
		Remaining:      s.Remaining,
		IsLimitReached: s.IsLimitReached,
		PeriodStart:    s.PeriodStart,
		PeriodEnd:      s.PeriodEnd,
	})
}
