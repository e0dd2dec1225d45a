package repository

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"docuai/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountCompletedQuery(t *testing.T) {
	userID := uuid.New()
	start := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	sql, args, err := countCompletedQuery(&userID, start, end).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COUNT(*) FROM documents WHERE status = $1 AND created_at >= $2 AND created_at < $3 AND user_id = $4",
		sql)
	require.Len(t, args, 4)
	assert.Equal(t, models.StatusCompleted, args[0])
	assert.Equal(t, start, args[1])
	assert.Equal(t, end, args[2])

	sql, args, err = countCompletedQuery(nil, start, end).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "user_id")
	assert.Len(t, args, 3)
}

func TestMarkCompletedIsConditional(t *testing.T) {
	id := uuid.New()
	sql, args, err := markCompletedQuery(id, `{"title":"x"}`, "f.pdf").ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "UPDATE documents SET status = $1, content = $2, file_url = $3")
	assert.Contains(t, sql, "WHERE id = $5 AND status = $6")
	assert.Equal(t, models.StatusCompleted, args[0])
	assert.Equal(t, models.StatusProcessing, args[len(args)-1])
}

func TestDocumentListQuery(t *testing.T) {
	userID := uuid.New()
	sql, args, err := documentListQuery(models.DocumentFilter{
		UserID:   &userID,
		Status:   models.StatusFailed,
		Favorite: true,
		Tag:      "q3",
		Offset:   20,
	}).ToSql()
	require.NoError(t, err)

	assert.Contains(t, sql, "WHERE user_id = $1 AND status = $2 AND is_favorite = $3 AND $4 = ANY(tags)")
	assert.Contains(t, sql, "ORDER BY created_at DESC LIMIT 50 OFFSET 20")
	assert.Len(t, args, 4)
}

func TestDesignListQuery(t *testing.T) {
	sql, args, err := designListQuery(true, models.FormatPDF).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE is_active = $1 AND $2 = ANY(supported_formats)")
	assert.Equal(t, []interface{}{true, "PDF"}, args)

	sql, args, err = designListQuery(false, "").ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "WHERE")
	assert.Empty(t, args)
}

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(fmt.Errorf("scan: %w", pgx.ErrNoRows)), ErrNotFound)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23505"}), ErrDuplicate)
	assert.ErrorIs(t, translate(&pgconn.PgError{Code: "23503"}), ErrInUse)

	other := errors.New("boom")
	assert.Equal(t, other, translate(other))
}
