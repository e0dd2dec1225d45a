package repository

import (
	"context"
	"fmt"

	"docuai/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var designColumns = []string{
	"id", "name", "description", "tokens", "supported_formats", "is_active", "is_default", "created_at", "updated_at",
}

type DesignTemplateRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewDesignTemplateRepository(db *pgxpool.Pool, logger *zap.Logger) *DesignTemplateRepository {
	return &DesignTemplateRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a design. A design created as default is inserted with the
// flag cleared and then promoted through SetDefault.
func (r *DesignTemplateRepository) Create(ctx context.Context, d *models.DesignTemplate) error {
	query := squirrel.Insert("design_templates").
		Columns(designColumns...).
		Values(d.ID, d.Name, d.Description, d.Tokens, models.FormatsToStrings(d.SupportedFormats), d.IsActive, false, d.CreatedAt, d.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return translate(err)
	}
	if d.IsDefault {
		return r.SetDefault(ctx, d.ID)
	}
	return nil
}

func (r *DesignTemplateRepository) Update(ctx context.Context, d *models.DesignTemplate) error {
	query := squirrel.Update("design_templates").
		Set("name", d.Name).
		Set("description", d.Description).
		Set("tokens", d.Tokens).
		Set("supported_formats", models.FormatsToStrings(d.SupportedFormats)).
		Set("is_active", d.IsActive).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": d.ID}).
		PlaceholderFormat(squirrel.Dollar)

	return execOne(ctx, r.db, query)
}

func (r *DesignTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DesignTemplate, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetDefault returns the design flagged as default, active or not.
func (r *DesignTemplateRepository) GetDefault(ctx context.Context) (*models.DesignTemplate, error) {
	return r.getOne(ctx, squirrel.Eq{"is_default": true})
}

func (r *DesignTemplateRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.DesignTemplate, error) {
	query := squirrel.Select(designColumns...).
		From("design_templates").
		Where(where).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	d, err := scanDesign(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, translate(err)
	}
	return d, nil
}

func designListQuery(activeOnly bool, format models.Format) squirrel.SelectBuilder {
	query := squirrel.Select(designColumns...).
		From("design_templates").
		OrderBy("is_default DESC", "name").
		PlaceholderFormat(squirrel.Dollar)
	if activeOnly {
		query = query.Where(squirrel.Eq{"is_active": true})
	}
	if format != "" {
		query = query.Where(squirrel.Expr("? = ANY(supported_formats)", string(format)))
	}
	return query
}

// List returns designs, optionally only active ones supporting format.
func (r *DesignTemplateRepository) List(ctx context.Context, activeOnly bool, format models.Format) ([]*models.DesignTemplate, error) {
	sql, args, err := designListQuery(activeOnly, format).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var designs []*models.DesignTemplate
	for rows.Next() {
		d, err := scanDesign(rows)
		if err != nil {
			return nil, err
		}
		designs = append(designs, d)
	}
	return designs, rows.Err()
}

func (r *DesignTemplateRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := squirrel.Update("design_templates").
		Set("is_active", active).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execOne(ctx, r.db, query)
}

// SetDefault clears the previous default and flags id in one transaction so
// readers never observe two defaults.
func (r *DesignTemplateRepository) SetDefault(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	unset := squirrel.Update("design_templates").
		Set("is_default", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.And{squirrel.Eq{"is_default": true}, squirrel.NotEq{"id": id}}).
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err := unset.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return translate(err)
	}

	set := squirrel.Update("design_templates").
		Set("is_default", true).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)
	sql, args, err = set.ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (r *DesignTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := squirrel.Delete("design_templates").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar)

	return execOne(ctx, r.db, query)
}

func scanDesign(row pgx.Row) (*models.DesignTemplate, error) {
	var (
		d       models.DesignTemplate
		formats []string
	)
	err := row.Scan(
		&d.ID, &d.Name, &d.Description, &d.Tokens, &formats, &d.IsActive, &d.IsDefault, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.SupportedFormats = toFormats(formats)
	return &d, nil
}
