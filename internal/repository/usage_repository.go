package repository

import (
	"context"
	"time"

	"docuai/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UsageRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewUsageRepository(db *pgxpool.Pool, logger *zap.Logger) *UsageRepository {
	return &UsageRepository{
		db:     db,
		logger: logger,
	}
}

func (r *UsageRepository) Create(ctx context.Context, u *models.Usage) error {
	query := squirrel.Insert("usage").
		Columns("id", "user_id", "document_id", "provider", "tokens_used", "created_at").
		Values(u.ID, u.UserID, u.DocumentID, u.Provider, u.TokensUsed, u.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return translate(err)
}

// TokensBetween sums provider tokens recorded in [start, end).
func (r *UsageRepository) TokensBetween(ctx context.Context, start, end time.Time) (int64, error) {
	query := squirrel.Select("COALESCE(SUM(tokens_used), 0)").
		From("usage").
		Where(squirrel.GtOrEq{"created_at": start}).
		Where(squirrel.Lt{"created_at": end}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
