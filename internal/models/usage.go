package models

import (
	"time"

	"github.com/google/uuid"
)

// Usage is one billing ledger entry written after a successful generation.
type Usage struct {
	ID         uuid.UUID  `db:"id"`
	UserID     uuid.UUID  `db:"user_id"`
	DocumentID *uuid.UUID `db:"document_id"`
	Provider   string     `db:"provider"`
	TokensUsed int        `db:"tokens_used"`
	CreatedAt  time.Time  `db:"created_at"`
}

// MonthBounds returns the UTC calendar month containing t as [start, end).
func MonthBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
