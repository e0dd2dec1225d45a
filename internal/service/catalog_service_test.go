package service

import (
	"context"
	"testing"

	"docuai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogTemplatesFlagsLocked(t *testing.T) {
	templates := testTemplates()
	templates.items[templateID].SystemPrompt = "secret instructions"
	svc := NewCatalogService(templates, newFakeDesigns())

	list, err := svc.Templates(context.Background(), testUser(models.TierStarter))
	require.NoError(t, err)
	require.Len(t, list, 2)

	byName := map[string]bool{}
	for _, tmpl := range list {
		byName[tmpl.Name] = tmpl.Locked
		assert.Empty(t, tmpl.SystemPrompt)
	}
	assert.False(t, byName["Invoice"])
	assert.True(t, byName["Contract"])

	_, err = svc.Templates(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCatalogDesignsByFormat(t *testing.T) {
	pdf := preset("Alpha", false, true, models.FormatPDF)
	both := preset("Bravo", true, true, models.FormatPDF, models.FormatDOCX)
	off := preset("Charlie", false, false, models.FormatDOCX)
	svc := NewCatalogService(testTemplates(), newFakeDesigns(pdf, both, off))

	docx, err := svc.Designs(context.Background(), "docx")
	require.NoError(t, err)
	require.Len(t, docx, 1)
	assert.Equal(t, "Bravo", docx[0].Name)

	all, err := svc.Designs(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Designs(context.Background(), "odt")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
