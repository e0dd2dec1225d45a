package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"docuai/internal/ai"
	"docuai/internal/models"
	"docuai/internal/repository"
	"docuai/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContentGenerator is satisfied by every ai.Provider.
type ContentGenerator interface {
	Name() string
	GenerateContent(ctx context.Context, prompt ai.Prompt) (*ai.Completion, error)
}

// stepError carries the reason stored on a FAILED document. The wrapped
// error is only logged.
type stepError struct {
	reason string
	err    error
}

func (e *stepError) Error() string { return e.reason + ": " + e.err.Error() }
func (e *stepError) Unwrap() error { return e.err }

func fail(reason string, err error) error {
	return &stepError{reason: reason, err: err}
}

type WorkerOptions struct {
	MaxTokens int
	Timeout   time.Duration
}

// Worker performs one deferred generation: prompt, AI call, render, store,
// and the terminal status update.
type Worker struct {
	docs      DocumentStore
	templates TemplateStore
	designs   *DesignResolver
	provider  ContentGenerator
	renderers Renderers
	files     storage.Storage
	usage     UsageStore
	opts      WorkerOptions
	logger    *zap.Logger
	now       func() time.Time
}

func NewWorker(
	docs DocumentStore,
	templates TemplateStore,
	designs *DesignResolver,
	provider ContentGenerator,
	renderers Renderers,
	files storage.Storage,
	usage UsageStore,
	opts WorkerOptions,
	logger *zap.Logger,
) *Worker {
	if opts.Timeout <= 0 {
		opts.Timeout = 3 * time.Minute
	}
	return &Worker{
		docs:      docs,
		templates: templates,
		designs:   designs,
		provider:  provider,
		renderers: renderers,
		files:     files,
		usage:     usage,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Process runs the generation for one document id. Documents that are gone
// or already terminal are skipped, so redelivery is harmless.
func (w *Worker) Process(ctx context.Context, id uuid.UUID) error {
	log := w.logger.With(zap.String("document_id", id.String()))

	doc, err := w.docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("Skipping generation for missing document")
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		return fmt.Errorf("failed to load document: %w", err)
	}
	if doc.Status.IsTerminal() {
		log.Info("Skipping generation for finished document", zap.String("status", string(doc.Status)))
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, w.opts.Timeout)
	defer cancel()

	start := w.now()
	completion, err := w.generate(runCtx, doc, log)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			log.Warn("Generation interrupted, leaving document for redelivery", zap.Error(err))
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}
		reason := "generation failed"
		var se *stepError
		if errors.As(err, &se) {
			reason = se.reason
		}
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "generation timed out"
		}
		log.Error("Generation failed", zap.String("reason", reason), zap.Error(err))
		w.markFailed(ctx, doc.ID, reason, log)
		return err
	}
	if completion == nil {
		return nil
	}

	w.recordUsage(ctx, doc, completion, log)
	log.Info("Generation completed",
		zap.String("provider", completion.Provider),
		zap.Int("tokens", completion.TokensUsed),
		zap.Duration("elapsed", w.now().Sub(start)),
	)
	return nil
}

// generate covers everything up to the terminal update. A nil completion
// with a nil error means another run already finished the document.
func (w *Worker) generate(ctx context.Context, doc *models.Document, log *zap.Logger) (*ai.Completion, error) {
	tmpl, err := w.templates.GetByID(ctx, doc.TemplateID)
	if err != nil {
		return nil, fail("template unavailable", err)
	}

	var design *models.DesignTokens
	if doc.Format.Paginated() {
		resolved, err := w.designs.Resolve(ctx, doc.DesignTemplateID, doc.Format)
		if err != nil {
			return nil, fail("design unavailable", err)
		}
		log.Debug("Design resolved", zap.String("source", string(resolved.Source)))
		design = &resolved.Tokens
	}

	system, user, err := BuildPrompt(tmpl, doc.UserInput, doc.Tone, doc.Title)
	if err != nil {
		return nil, fail("invalid input", err)
	}

	completion, err := w.provider.GenerateContent(ctx, ai.Prompt{
		System:    system,
		User:      user,
		MaxTokens: w.opts.MaxTokens,
	})
	if err != nil {
		return nil, fail("AI provider error", err)
	}

	content, err := ai.ExtractJSONObject(completion.Content)
	if err != nil {
		return nil, fail("AI response is not a JSON object", err)
	}
	content = sanitizeMap(content)
	contentJSON, err := json.Marshal(content)
	if err != nil {
		return nil, fail("AI response is not a JSON object", err)
	}

	data, err := w.renderers.Render(doc.Format, content, tmpl.Type, design)
	if err != nil {
		return nil, fail("render failed", err)
	}

	name := storage.GenerateFilename(doc.UserID, string(tmpl.Type), doc.Format.Extension(), w.now())
	fileURL, err := w.files.Save(ctx, data, name)
	if err != nil {
		return nil, fail("storage failed", err)
	}

	updated, err := w.docs.MarkCompleted(ctx, doc.ID, string(contentJSON), fileURL)
	if err != nil {
		// The update may have committed before the error surfaced, so the
		// file is only removed once the row is known not to reference it.
		stored, rerr := w.storedFile(ctx, doc.ID)
		switch {
		case rerr == nil && stored == fileURL:
			log.Warn("Completion reported an error after commit", zap.Error(err))
			return completion, nil
		case rerr != nil:
			log.Error("Failed to re-read document, keeping file", zap.String("file", fileURL), zap.Error(rerr))
		default:
			w.discard(fileURL, log)
		}
		return nil, fail("failed to record result", err)
	}
	if !updated {
		log.Warn("Document was finished by another run, discarding output", zap.String("file", fileURL))
		w.discard(fileURL, log)
		return nil, nil
	}
	return completion, nil
}

func (w *Worker) storedFile(ctx context.Context, id uuid.UUID) (string, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	doc, err := w.docs.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return doc.FileURL, nil
}

func (w *Worker) discard(fileURL string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := w.files.Delete(ctx, fileURL); err != nil {
		log.Error("Failed to delete orphaned file", zap.String("file", fileURL), zap.Error(err))
	}
}

// markFailed is best effort and outlives a cancelled or timed out run.
func (w *Worker) markFailed(ctx context.Context, id uuid.UUID, reason string, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if _, err := w.docs.MarkFailed(ctx, id, reason); err != nil {
		log.Error("Failed to mark document as failed", zap.Error(err))
	}
}

func (w *Worker) recordUsage(ctx context.Context, doc *models.Document, c *ai.Completion, log *zap.Logger) {
	docID := doc.ID
	entry := &models.Usage{
		ID:         uuid.New(),
		UserID:     doc.UserID,
		DocumentID: &docID,
		Provider:   c.Provider,
		TokensUsed: c.TokensUsed,
		CreatedAt:  w.now(),
	}
	if entry.Provider == "" {
		entry.Provider = w.provider.Name()
	}
	if err := w.usage.Create(ctx, entry); err != nil {
		log.Error("Failed to record usage", zap.Error(err))
	}
}
