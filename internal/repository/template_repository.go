package repository

import (
	"context"

	"docuai/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var templateColumns = []string{
	"id", "name", "type", "description", "system_prompt", "fields", "supported_formats",
	"required_tier", "is_active", "created_at", "updated_at",
}

type TemplateRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTemplateRepository(db *pgxpool.Pool, logger *zap.Logger) *TemplateRepository {
	return &TemplateRepository{
		db:     db,
		logger: logger,
	}
}

func (r *TemplateRepository) Create(ctx context.Context, t *models.Template) error {
	query := squirrel.Insert("templates").
		Columns(templateColumns...).
		Values(t.ID, t.Name, t.Type, t.Description, t.SystemPrompt, fieldsOrEmpty(t.Fields), models.FormatsToStrings(t.SupportedFormats),
			t.RequiredTier, t.IsActive, t.CreatedAt, t.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return translate(err)
}

// Update overwrites every editable column.
func (r *TemplateRepository) Update(ctx context.Context, t *models.Template) error {
	query := squirrel.Update("templates").
		Set("name", t.Name).
		Set("type", t.Type).
		Set("description", t.Description).
		Set("system_prompt", t.SystemPrompt).
		Set("fields", fieldsOrEmpty(t.Fields)).
		Set("supported_formats", models.FormatsToStrings(t.SupportedFormats)).
		Set("required_tier", t.RequiredTier).
		Set("is_active", t.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": t.ID}).
		PlaceholderFormat(squirrel.Dollar)

	return execOne(ctx, r.db, query)
}

func (r *TemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Template, error) {
	query := squirrel.Select(templateColumns...).
		From("templates").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	t, err := scanTemplate(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (r *TemplateRepository) List(ctx context.Context, activeOnly bool) ([]*models.Template, error) {
	query := squirrel.Select(templateColumns...).
		From("templates").
		OrderBy("name").
		PlaceholderFormat(squirrel.Dollar)
	if activeOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := squirrel.Update("templates").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execOne(ctx, r.db, query)
}

// Delete fails with ErrInUse while documents still reference the template.
func (r *TemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("templates").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execOne(ctx, r.db, query)
}

func scanTemplate(row pgx.Row) (*models.Template, error) {
	var (
		t       models.Template
		formats []string
	)
	err := row.Scan(
		&t.ID, &t.Name, &t.Type, &t.Description, &t.SystemPrompt, &t.Fields, &formats,
		&t.RequiredTier, &t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.SupportedFormats = toFormats(formats)
	return &t, nil
}

// fieldsOrEmpty avoids writing SQL NULL into the NOT NULL jsonb column.
func fieldsOrEmpty(f []models.TemplateField) []models.TemplateField {
	if f == nil {
		return []models.TemplateField{}
	}
	return f
}

// toFormats keeps whatever the database holds, the write path validates.
func toFormats(values []string) []models.Format {
	out := make([]models.Format, len(values))
	for i, v := range values {
		out[i] = models.Format(v)
	}
	return out
}

// execOne runs a statement that must touch exactly one row.
func execOne(ctx context.Context, db *pgxpool.Pool, query squirrel.Sqlizer) error {
	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
