package repository

import (
	"context"

	"docuai/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const brandRowID = 1

type BrandSettingsRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewBrandSettingsRepository(db *pgxpool.Pool, logger *zap.Logger) *BrandSettingsRepository {
	return &BrandSettingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get returns ErrNotFound until branding has been saved once.
func (r *BrandSettingsRepository) Get(ctx context.Context) (*models.BrandSettings, error) {
	query := squirrel.Select("company_name", "logo_url", "primary_color", "secondary_color", "heading_font", "body_font", "updated_at").
		From("brand_settings").
		Where(squirrel.Eq{"id": brandRowID}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var b models.BrandSettings
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&b.CompanyName, &b.LogoURL, &b.PrimaryColor, &b.SecondaryColor, &b.HeadingFont, &b.BodyFont, &b.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// Put overwrites the singleton row wholesale; the last writer wins.
func (r *BrandSettingsRepository) Put(ctx context.Context, b *models.BrandSettings) error {
	query := squirrel.Insert("brand_settings").
		Columns("id", "company_name", "logo_url", "primary_color", "secondary_color", "heading_font", "body_font", "updated_at").
		Values(brandRowID, b.CompanyName, b.LogoURL, b.PrimaryColor, b.SecondaryColor, b.HeadingFont, b.BodyFont, squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			logo_url = EXCLUDED.logo_url,
			primary_color = EXCLUDED.primary_color,
			secondary_color = EXCLUDED.secondary_color,
			heading_font = EXCLUDED.heading_font,
			body_font = EXCLUDED.body_font,
			updated_at = EXCLUDED.updated_at`).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}
