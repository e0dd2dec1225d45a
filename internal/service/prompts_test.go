package service

import (
	"strings"
	"testing"

	"docuai/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTone(t *testing.T) {
	tone, err := NormalizeTone("")
	require.NoError(t, err)
	assert.Equal(t, "formal", tone)

	tone, err = NormalizeTone(" Persuasive ")
	require.NoError(t, err)
	assert.Equal(t, "persuasive", tone)

	_, err = NormalizeTone("sarcastic")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, []string{"concise", "formal", "friendly", "neutral", "persuasive"}, Tones())
}

func TestBuildPrompt(t *testing.T) {
	tmpl := &models.Template{
		Name:   "Invoice",
		Type:   models.TemplateInvoice,
		Fields: []models.TemplateField{{Name: "client", Label: "Client name"}},
	}

	system, user, err := BuildPrompt(tmpl, `{"client":"Acme","amount":1200}`, "concise", "March invoice")
	require.NoError(t, err)
	assert.Contains(t, system, "commercial invoices")
	assert.Contains(t, system, "Be brief")
	assert.Contains(t, system, `"sections"`)
	assert.Contains(t, user, `Use the title "March invoice".`)
	assert.Contains(t, user, "- Client name: \"Acme\"")
	assert.Contains(t, user, "- amount: 1200")
	assert.Less(t, strings.Index(user, "amount"), strings.Index(user, "Client name"))
}

func TestBuildPromptSystemOverride(t *testing.T) {
	tmpl := &models.Template{Name: "Custom", Type: models.TemplateReport, SystemPrompt: "You write haiku reports."}

	system, _, err := BuildPrompt(tmpl, `{}`, "", "")
	require.NoError(t, err)
	assert.Contains(t, system, "You write haiku reports.")
	assert.NotContains(t, system, "executive summary")
	assert.Contains(t, system, "formal")
}

func TestBuildPromptRejectsNonObject(t *testing.T) {
	_, _, err := BuildPrompt(&models.Template{Type: models.TemplateMemo}, `[1,2]`, "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
