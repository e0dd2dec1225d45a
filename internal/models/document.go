package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "PROCESSING"
	StatusCompleted  DocumentStatus = "COMPLETED"
	StatusFailed     DocumentStatus = "FAILED"
)

// IsTerminal reports whether no further transition can happen.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func ParseStatus(s string) (DocumentStatus, error) {
	switch st := DocumentStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusProcessing, StatusCompleted, StatusFailed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

type Format string

const (
	FormatDOCX Format = "DOCX"
	FormatPDF  Format = "PDF"
	FormatXLSX Format = "XLSX"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToUpper(strings.TrimSpace(s))); f {
	case FormatDOCX, FormatPDF, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

func (f Format) Extension() string {
	return "." + strings.ToLower(string(f))
}

func (f Format) ContentType() string {
	switch f {
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Paginated formats carry visual theming; spreadsheets do not.
func (f Format) Paginated() bool {
	return f == FormatDOCX || f == FormatPDF
}

// FormatFromExtension maps a file name back to its format.
func FormatFromExtension(name string) (Format, bool) {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return "", false
	}
	f, err := ParseFormat(name[i+1:])
	if err != nil {
		return "", false
	}
	return f, true
}

type Document struct {
	ID               uuid.UUID      `db:"id"`
	UserID           uuid.UUID      `db:"user_id"`
	TemplateID       uuid.UUID      `db:"template_id"`
	DesignTemplateID *uuid.UUID     `db:"design_template_id"`
	Format           Format         `db:"format"`
	Status           DocumentStatus `db:"status"`
	Title            string         `db:"title"`
	Tone             string         `db:"tone"`
	UserInput        string         `db:"user_input"` // JSON object
	Content          string         `db:"content"`    // JSON object produced by the AI provider
	FileURL          string         `db:"file_url"`
	FailureReason    string         `db:"failure_reason"`
	IsFavorite       bool           `db:"is_favorite"`
	Tags             []string       `db:"tags"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// DocumentFilter narrows document listings. Zero values mean "any".
type DocumentFilter struct {
	UserID     *uuid.UUID
	Status     DocumentStatus
	TemplateID *uuid.UUID
	Favorite   bool
	Tag        string
	Limit      int
	Offset     int
}
