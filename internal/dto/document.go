package dto

import "time"

type GenerateRequest struct {
	TemplateID       string         `json:"templateId"`
	DesignTemplateID string         `json:"designTemplateId,omitempty"`
	Format           string         `json:"format"`
	UserInput        map[string]any `json:"userInput"`
	Tone             string         `json:"tone,omitempty"`
	Title            string         `json:"title,omitempty"`
	Tags             []string       `json:"tags,omitempty"`
}

// GenerateResponse is the synchronous result of a generation trigger.
type GenerateResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"documentId,omitempty"`
	Error      string `json:"error,omitempty"`
}

type DocumentStatusResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	FileURL       string `json:"fileUrl"`
	Format        string `json:"format"`
	FailureReason string `json:"failureReason,omitempty"`
}

type DocumentResponse struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	TemplateID       string         `json:"templateId"`
	DesignTemplateID string         `json:"designTemplateId,omitempty"`
	Format           string         `json:"format"`
	Status           string         `json:"status"`
	Title            string         `json:"title"`
	Tone             string         `json:"tone"`
	UserInput        map[string]any `json:"userInput,omitempty"`
	Content          map[string]any `json:"content,omitempty"`
	FileURL          string         `json:"fileUrl"`
	FailureReason    string         `json:"failureReason,omitempty"`
	IsFavorite       bool           `json:"isFavorite"`
	Tags             []string       `json:"tags"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

type FavoriteRequest struct {
	Favorite bool `json:"favorite"`
}

type TagsRequest struct {
	Tags []string `json:"tags"`
}
