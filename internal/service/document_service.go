package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"docuai/internal/dto"
	"docuai/internal/models"
	"docuai/internal/repository"
	"docuai/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxTags      = 20
	maxTagLength = 50
	maxTitle     = 200
	maxListLimit = 100
)

// DocumentService records generation requests and serves the resulting
// documents. It never talks to the AI provider: the Worker does that after
// the id has been handed back to the caller.
type DocumentService struct {
	docs      DocumentStore
	admission *Admission
	queue     Enqueuer
	files     storage.Storage
	logger    *zap.Logger
	now       func() time.Time
}

func NewDocumentService(
	docs DocumentStore,
	admission *Admission,
	queue Enqueuer,
	files storage.Storage,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		docs:      docs,
		admission: admission,
		queue:     queue,
		files:     files,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate admits the request, records a PROCESSING document and queues it.
// The id is returned before any AI or rendering work happens.
func (s *DocumentService) Generate(ctx context.Context, user *models.User, req *dto.GenerateRequest) (uuid.UUID, error) {
	if user == nil {
		return uuid.Nil, ErrUnauthorized
	}

	templateID, err := uuid.Parse(strings.TrimSpace(req.TemplateID))
	if err != nil {
		return uuid.Nil, invalidInput("templateId must be a UUID")
	}
	format, err := models.ParseFormat(req.Format)
	if err != nil {
		return uuid.Nil, invalidInput("format must be one of DOCX, PDF, XLSX")
	}
	var designID *uuid.UUID
	if d := strings.TrimSpace(req.DesignTemplateID); d != "" {
		id, err := uuid.Parse(d)
		if err != nil {
			return uuid.Nil, invalidInput("designTemplateId must be a UUID")
		}
		designID = &id
	}
	tone, err := NormalizeTone(req.Tone)
	if err != nil {
		return uuid.Nil, err
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return uuid.Nil, err
	}
	title := strings.TrimSpace(req.Title)
	if len([]rune(title)) > maxTitle {
		return uuid.Nil, invalidInput("title is longer than %d characters", maxTitle)
	}

	tmpl, err := s.admission.Admit(ctx, user, templateID, format)
	if err != nil {
		return uuid.Nil, err
	}
	if err := validateInput(tmpl, req.UserInput); err != nil {
		return uuid.Nil, err
	}

	input, err := json.Marshal(sanitizeMap(req.UserInput))
	if err != nil {
		return uuid.Nil, invalidInput("userInput is not serializable: %v", err)
	}
	if title == "" {
		title = tmpl.Name
	}

	now := s.now()
	doc := &models.Document{
		ID:               uuid.New(),
		UserID:           user.ID,
		TemplateID:       tmpl.ID,
		DesignTemplateID: designID,
		Format:           format,
		Status:           models.StatusProcessing,
		Title:            sanitizeText(title),
		Tone:             tone,
		UserInput:        string(input),
		Tags:             tags,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create document record: %w", err)
	}

	if err := s.queue.Enqueue(ctx, doc.ID); err != nil {
		s.logger.Error("Failed to enqueue generation", zap.String("document_id", doc.ID.String()), zap.Error(err))
		if _, ferr := s.docs.MarkFailed(ctx, doc.ID, "queue unavailable"); ferr != nil {
			s.logger.Error("Failed to mark unqueued document as failed", zap.String("document_id", doc.ID.String()), zap.Error(ferr))
		}
		return uuid.Nil, ErrQueueUnavailable
	}

	s.logger.Info("Generation queued",
		zap.String("document_id", doc.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("template", string(tmpl.Type)),
		zap.String("format", string(format)),
	)
	return doc.ID, nil
}

// Clone starts a fresh lifecycle with the inputs of an existing document.
// The source document is left untouched.
func (s *DocumentService) Clone(ctx context.Context, user *models.User, id uuid.UUID) (uuid.UUID, error) {
	src, err := s.load(ctx, user, id)
	if err != nil {
		return uuid.Nil, err
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(src.UserInput), &input); err != nil {
		return uuid.Nil, fmt.Errorf("stored input of document %s is corrupt: %w", src.ID, err)
	}
	req := &dto.GenerateRequest{
		TemplateID: src.TemplateID.String(),
		Format:     string(src.Format),
		UserInput:  input,
		Tone:       src.Tone,
		Title:      src.Title,
		Tags:       src.Tags,
	}
	if src.DesignTemplateID != nil {
		req.DesignTemplateID = src.DesignTemplateID.String()
	}
	return s.Generate(ctx, user, req)
}

func (s *DocumentService) Status(ctx context.Context, user *models.User, id uuid.UUID) (*dto.DocumentStatusResponse, error) {
	doc, err := s.load(ctx, user, id)
	if err != nil {
		return nil, err
	}
	return &dto.DocumentStatusResponse{
		ID:            doc.ID.String(),
		Status:        string(doc.Status),
		FileURL:       doc.FileURL,
		Format:        string(doc.Format),
		FailureReason: doc.FailureReason,
	}, nil
}

func (s *DocumentService) Get(ctx context.Context, user *models.User, id uuid.UUID) (*dto.DocumentResponse, error) {
	doc, err := s.load(ctx, user, id)
	if err != nil {
		return nil, err
	}
	resp := toDocumentResponse(doc, true)
	return &resp, nil
}

// List returns the caller's own documents, newest first.
func (s *DocumentService) List(ctx context.Context, user *models.User, filter models.DocumentFilter) (*dto.DocumentListResponse, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	filter.UserID = &user.ID
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	docs, err := s.docs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	resp := &dto.DocumentListResponse{
		Documents: make([]dto.DocumentResponse, 0, len(docs)),
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}
	for _, d := range docs {
		resp.Documents = append(resp.Documents, toDocumentResponse(d, false))
	}
	return resp, nil
}

// Delete removes the record first and the file second, so a file is never
// reachable without its record.
func (s *DocumentService) Delete(ctx context.Context, user *models.User, id uuid.UUID) error {
	doc, err := s.load(ctx, user, id)
	if err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, doc.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if doc.FileURL != "" {
		if err := s.files.Delete(ctx, doc.FileURL); err != nil {
			s.logger.Warn("Failed to delete document file",
				zap.String("document_id", doc.ID.String()), zap.String("file", doc.FileURL), zap.Error(err))
		}
	}
	return nil
}

func (s *DocumentService) SetFavorite(ctx context.Context, user *models.User, id uuid.UUID, favorite bool) error {
	doc, err := s.load(ctx, user, id)
	if err != nil {
		return err
	}
	return s.mutate(s.docs.SetFavorite(ctx, doc.ID, favorite))
}

func (s *DocumentService) SetTags(ctx context.Context, user *models.User, id uuid.UUID, tags []string) ([]string, error) {
	doc, err := s.load(ctx, user, id)
	if err != nil {
		return nil, err
	}
	tags, err = normalizeTags(tags)
	if err != nil {
		return nil, err
	}
	if err := s.mutate(s.docs.SetTags(ctx, doc.ID, tags)); err != nil {
		return nil, err
	}
	return tags, nil
}

// Download returns the bytes behind a generated file name. Unknown names and
// documents the caller may not see are both reported as ErrDocumentNotFound.
func (s *DocumentService) Download(ctx context.Context, user *models.User, filename string) ([]byte, models.Format, error) {
	if user == nil {
		return nil, "", ErrUnauthorized
	}
	if !storage.ValidFilename(filename) {
		return nil, "", storage.ErrInvalidFilename
	}
	format, ok := models.FormatFromExtension(filename)
	if !ok {
		return nil, "", storage.ErrInvalidFilename
	}

	doc, err := s.docs.GetByFileURL(ctx, filename)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrDocumentNotFound
		}
		return nil, "", fmt.Errorf("failed to look up file owner: %w", err)
	}
	if !canAccessDocument(doc, user) {
		return nil, "", ErrDocumentNotFound
	}

	data, err := s.files.Read(ctx, filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrDocumentNotFound
		}
		return nil, "", fmt.Errorf("failed to read file: %w", err)
	}
	return data, format, nil
}

// load fetches a document and applies the ownership guard. A denial looks
// exactly like a missing document.
func (s *DocumentService) load(ctx context.Context, user *models.User, id uuid.UUID) (*models.Document, error) {
	if user == nil {
		return nil, ErrUnauthorized
	}
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if !canAccessDocument(doc, user) {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) mutate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrDocumentNotFound
	}
	return err
}

func normalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		if len([]rune(t)) > maxTagLength {
			return nil, invalidInput("tag %q is longer than %d characters", t, maxTagLength)
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > maxTags {
		return nil, invalidInput("at most %d tags are allowed", maxTags)
	}
	return out, nil
}

func toDocumentResponse(d *models.Document, withBodies bool) dto.DocumentResponse {
	resp := dto.DocumentResponse{
		ID:            d.ID.String(),
		UserID:        d.UserID.String(),
		TemplateID:    d.TemplateID.String(),
		Format:        string(d.Format),
		Status:        string(d.Status),
		Title:         d.Title,
		Tone:          d.Tone,
		FileURL:       d.FileURL,
		FailureReason: d.FailureReason,
		IsFavorite:    d.IsFavorite,
		Tags:          d.Tags,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if d.DesignTemplateID != nil {
		resp.DesignTemplateID = d.DesignTemplateID.String()
	}
	if withBodies {
		if d.UserInput != "" {
			_ = json.Unmarshal([]byte(d.UserInput), &resp.UserInput)
		}
		if d.Content != "" {
			_ = json.Unmarshal([]byte(d.Content), &resp.Content)
		}
	}
	return resp
}
