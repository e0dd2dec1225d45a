package repository

import (
	"context"
	"time"

	"docuai/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var documentColumns = []string{
	"id", "user_id", "template_id", "design_template_id", "format", "status", "title", "tone",
	"user_input", "content", "file_url", "failure_reason", "is_favorite", "tags", "created_at", "updated_at",
}

const defaultListLimit = 50

type DocumentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDocumentRepository(db *pgxpool.Pool, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	tags := doc.Tags
	if tags == nil {
		tags = []string{}
	}
	query := squirrel.Insert("documents").
		Columns(documentColumns...).
		Values(doc.ID, doc.UserID, doc.TemplateID, doc.DesignTemplateID, doc.Format, doc.Status, doc.Title, doc.Tone,
			doc.UserInput, doc.Content, doc.FileURL, doc.FailureReason, doc.IsFavorite, tags, doc.CreatedAt, doc.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return translate(err)
}

func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByFileURL finds the document owning a stored file.
func (r *DocumentRepository) GetByFileURL(ctx context.Context, fileURL string) (*models.Document, error) {
	return r.getOne(ctx, squirrel.Eq{"file_url": fileURL})
}

func (r *DocumentRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Document, error) {
	query := squirrel.Select(documentColumns...).
		From("documents").
		Where(where).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	doc, err := scanDocument(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}
	return doc, nil
}

func documentListQuery(f models.DocumentFilter) squirrel.SelectBuilder {
	query := squirrel.Select(documentColumns...).
		From("documents").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if f.UserID != nil {
		query = query.Where(squirrel.Eq{"user_id": *f.UserID})
	}
	if f.Status != "" {
		query = query.Where(squirrel.Eq{"status": f.Status})
	}
	if f.TemplateID != nil {
		query = query.Where(squirrel.Eq{"template_id": *f.TemplateID})
	}
	if f.Favorite {
		query = query.Where(squirrel.Eq{"is_favorite": true})
	}
	if f.Tag != "" {
		query = query.Where(squirrel.Expr("? = ANY(tags)", f.Tag))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query = query.Limit(uint64(limit))
	if f.Offset > 0 {
		query = query.Offset(uint64(f.Offset))
	}
	return query
}

func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]*models.Document, error) {
	return r.query(ctx, documentListQuery(filter))
}

func (r *DocumentRepository) query(ctx context.Context, query squirrel.SelectBuilder) ([]*models.Document, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		documents = append(documents, doc)
	}
	return documents, rows.Err()
}

func markCompletedQuery(id uuid.UUID, content, fileURL string) squirrel.UpdateBuilder {
	return squirrel.Update("documents").
		Set("status", models.StatusCompleted).
		Set("content", content).
		Set("file_url", fileURL).
		Set("failure_reason", "").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": models.StatusProcessing}).
		PlaceholderFormat(squirrel.Dollar)
}

// MarkCompleted writes content, file and status in one statement. It
// reports false when the document was no longer PROCESSING.
func (r *DocumentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, content, fileURL string) (bool, error) {
	return r.transition(ctx, markCompletedQuery(id, content, fileURL))
}

// MarkFailed reports false when the document already reached a terminal state.
func (r *DocumentRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) (bool, error) {
	query := squirrel.Update("documents").
		Set("status", models.StatusFailed).
		Set("failure_reason", reason).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": models.StatusProcessing}).
		PlaceholderFormat(squirrel.Dollar)

	return r.transition(ctx, query)
}

func (r *DocumentRepository) transition(ctx context.Context, query squirrel.UpdateBuilder) (bool, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, translate(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("documents").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execOne(ctx, r.db, query)
}

func (r *DocumentRepository) SetFavorite(ctx context.Context, id uuid.UUID, favorite bool) error {
	query := squirrel.Update("documents").
		Set("is_favorite", favorite).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execOne(ctx, r.db, query)
}

func (r *DocumentRepository) SetTags(ctx context.Context, id uuid.UUID, tags []string) error {
	if tags == nil {
		tags = []string{}
	}
	query := squirrel.Update("documents").
		Set("tags", tags).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execOne(ctx, r.db, query)
}

func countCompletedQuery(userID *uuid.UUID, start, end time.Time) squirrel.SelectBuilder {
	query := squirrel.Select("COUNT(*)").
		From("documents").
		Where(squirrel.Eq{"status": models.StatusCompleted}).
		Where(squirrel.GtOrEq{"created_at": start}).
		Where(squirrel.Lt{"created_at": end}).
		PlaceholderFormat(squirrel.Dollar)
	if userID != nil {
		query = query.Where(squirrel.Eq{"user_id": *userID})
	}
	return query
}

// CountCompletedBetween counts COMPLETED documents created in [start, end).
// A nil userID counts across all users.
func (r *DocumentRepository) CountCompletedBetween(ctx context.Context, userID *uuid.UUID, start, end time.Time) (int, error) {
	sql, args, err := countCompletedQuery(userID, start, end).ToSql()
	if err != nil {
		return 0, err
	}

	var n int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// ListStuck returns PROCESSING documents last touched before cutoff.
func (r *DocumentRepository) ListStuck(ctx context.Context, cutoff time.Time, limit int) ([]*models.Document, error) {
	query := squirrel.Select(documentColumns...).
		From("documents").
		Where(squirrel.Eq{"status": models.StatusProcessing}).
		Where(squirrel.Lt{"updated_at": cutoff}).
		OrderBy("updated_at").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	return r.query(ctx, query)
}

func (r *DocumentRepository) CountByStatus(ctx context.Context) (map[models.DocumentStatus]int, error) {
	query := squirrel.Select("status", "COUNT(*)").
		From("documents").
		GroupBy("status").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.DocumentStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.DocumentStatus(status)] = n
	}
	return counts, rows.Err()
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var doc models.Document
	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.TemplateID, &doc.DesignTemplateID, &doc.Format, &doc.Status, &doc.Title, &doc.Tone,
		&doc.UserInput, &doc.Content, &doc.FileURL, &doc.FailureReason, &doc.IsFavorite, &doc.Tags, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
