package handlers

import (
	"context"
	"fmt"

	"docuai/internal/dto"
	"docuai/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Documents is implemented by *service.DocumentService.
type Documents interface {
	Generate(ctx context.Context, user *models.User, req *dto.GenerateRequest) (uuid.UUID, error)
	Clone(ctx context.Context, user *models.User, id uuid.UUID) (uuid.UUID, error)
	Status(ctx context.Context, user *models.User, id uuid.UUID) (*dto.DocumentStatusResponse, error)
	Get(ctx context.Context, user *models.User, id uuid.UUID) (*dto.DocumentResponse, error)
	List(ctx context.Context, user *models.User, filter models.DocumentFilter) (*dto.DocumentListResponse, error)
	Delete(ctx context.Context, user *models.User, id uuid.UUID) error
	SetFavorite(ctx context.Context, user *models.User, id uuid.UUID, favorite bool) error
	SetTags(ctx context.Context, user *models.User, id uuid.UUID, tags []string) ([]string, error)
	Download(ctx context.Context, user *models.User, filename string) ([]byte, models.Format, error)
}

type DocumentHandler struct {
	docService Documents
	logger     *zap.Logger
}

func NewDocumentHandler(docService Documents, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// Generate godoc
// @Summary Start a document generation
// @Description Records the document in PROCESSING and queues it; poll the status endpoint for the result
// @Tags documents
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "Generation request"
// @Security Bearer
// @Success 202 {object} dto.GenerateResponse
// @Failure 400 {object} dto.GenerateResponse
// @Failure 401 {object} dto.GenerateResponse
// @Failure 402 {object} dto.GenerateResponse
// @Failure 403 {object} dto.GenerateResponse
// @Failure 404 {object} dto.GenerateResponse
// @Failure 503 {object} dto.GenerateResponse
// @Router /api/v1/documents/generate [post]
func (h *DocumentHandler) Generate(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}

	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.GenerateResponse{Error: "Invalid request body"})
	}

	id, err := h.docService.Generate(c.Context(), user, &req)
	if err != nil {
		return h.generateFailed(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.GenerateResponse{Success: true, DocumentID: id.String()})
}

// Clone godoc
// @Summary Regenerate from an existing document
// @Description Starts a new generation with the inputs of an existing document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Security Bearer
// @Success 202 {object} dto.GenerateResponse
// @Failure 402 {object} dto.GenerateResponse
// @Failure 404 {object} dto.GenerateResponse
// @Router /api/v1/documents/{id}/clone [post]
func (h *DocumentHandler) Clone(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	newID, err := h.docService.Clone(c.Context(), user, id)
	if err != nil {
		return h.generateFailed(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(dto.GenerateResponse{Success: true, DocumentID: newID.String()})
}

func (h *DocumentHandler) generateFailed(c *fiber.Ctx, err error) error {
	code, msg, ok := statusFor(err)
	if !ok {
		h.logger.Error("Failed to start generation", zap.Error(err))
		msg = "Failed to start generation"
	}
	return c.Status(code).JSON(dto.GenerateResponse{Error: msg})
}

// Status godoc
// @Summary Document status
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Security Bearer
// @Success 200 {object} dto.DocumentStatusResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/documents/{id}/status [get]
func (h *DocumentHandler) Status(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	status, err := h.docService.Status(c.Context(), user, id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get document status")
	}
	return c.JSON(status)
}

// GetDocument godoc
// @Summary Get a document
// @Description Full document including input and generated content
// @Tags documents
// @Produce json
// @Param id path string true "Document ID"
// @Security Bearer
// @Success 200 {object} dto.DocumentResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	doc, err := h.docService.Get(c.Context(), user, id)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to get document")
	}
	return c.JSON(doc)
}

// ListDocuments godoc
// @Summary List user's documents
// @Description Newest first; only the caller's own documents
// @Tags documents
// @Produce json
// @Param status query string false "PROCESSING, COMPLETED or FAILED"
// @Param templateId query string false "Template ID"
// @Param favorite query bool false "Only favorites"
// @Param tag query string false "Tag"
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {object} dto.DocumentListResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/documents [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}

	filter := models.DocumentFilter{
		Favorite: c.QueryBool("favorite", false),
		Tag:      c.Query("tag"),
		Limit:    c.QueryInt("limit", 20),
		Offset:   c.QueryInt("offset", 0),
	}
	if s := c.Query("status"); s != "" {
		if filter.Status, err = models.ParseStatus(s); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid status")
		}
	}
	if t := c.Query("templateId"); t != "" {
		id, err := uuid.Parse(t)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid templateId")
		}
		filter.TemplateID = &id
	}

	docs, err := h.docService.List(c.Context(), user, filter)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list documents")
	}
	return c.JSON(docs)
}

// DeleteDocument godoc
// @Summary Delete a document and its file
// @Tags documents
// @Param id path string true "Document ID"
// @Security Bearer
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.docService.Delete(c.Context(), user, id); err != nil {
		return respondError(c, h.logger, err, "Failed to delete document")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetFavorite godoc
// @Summary Mark or unmark a favorite
// @Tags documents
// @Accept json
// @Param id path string true "Document ID"
// @Param request body dto.FavoriteRequest true "Favorite flag"
// @Security Bearer
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/documents/{id}/favorite [put]
func (h *DocumentHandler) SetFavorite(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.FavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}

	if err := h.docService.SetFavorite(c.Context(), user, id, req.Favorite); err != nil {
		return respondError(c, h.logger, err, "Failed to update favorite")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetTags godoc
// @Summary Replace a document's tags
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document ID"
// @Param request body dto.TagsRequest true "Tags"
// @Security Bearer
// @Success 200 {object} dto.TagsRequest
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/documents/{id}/tags [put]
func (h *DocumentHandler) SetTags(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req dto.TagsRequest
	if err := c.BodyParser(&req); err != nil {
		return errBadBody
	}

	tags, err := h.docService.SetTags(c.Context(), user, id, req.Tags)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to update tags")
	}
	return c.JSON(dto.TagsRequest{Tags: tags})
}

// Download godoc
// @Summary Download a generated file
// @Description Streams a generated file after the ownership check. download=1 forces an attachment
// @Tags files
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param filename path string true "File name"
// @Param download query bool false "Send as attachment"
// @Security Bearer
// @Success 200 {file} binary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/files/{filename} [get]
func (h *DocumentHandler) Download(c *fiber.Ctx) error {
	user, err := getUser(c, h.logger)
	if err != nil {
		return err
	}

	filename := c.Params("filename")
	data, format, err := h.docService.Download(c.Context(), user, filename)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to read file")
	}

	disposition := "inline"
	if c.QueryBool("download", false) {
		disposition = "attachment"
	}
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("%s; filename=%q", disposition, filename))
	c.Set("X-Content-Type-Options", "nosniff")
	return c.Send(data)
}
