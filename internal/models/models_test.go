package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTierLimits(t *testing.T) {
	assert.Equal(t, 3, TierFree.MonthlyLimit())
	assert.Equal(t, 25, TierStarter.MonthlyLimit())
	assert.Equal(t, 100, TierPro.MonthlyLimit())
	assert.Equal(t, 1000, TierEnterprise.MonthlyLimit())
	assert.Equal(t, 3, Tier("bogus").MonthlyLimit())

	assert.True(t, TierPro.Includes(TierStarter))
	assert.False(t, TierFree.Includes(TierPro))

	tier, err := ParseTier(" pro ")
	require.NoError(t, err)
	assert.Equal(t, TierPro, tier)
	_, err = ParseTier("platinum")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	f, err := ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, ".pdf", f.Extension())
	assert.True(t, f.Paginated())
	assert.False(t, FormatXLSX.Paginated())

	got, ok := FormatFromExtension("abc_invoice_1_x.docx")
	assert.True(t, ok)
	assert.Equal(t, FormatDOCX, got)
	_, ok = FormatFromExtension("noext")
	assert.False(t, ok)

	_, err = ParseFormat("odt")
	assert.Error(t, err)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestParseFormatsDeduplicates(t *testing.T) {
	formats, err := ParseFormats([]string{"docx", "PDF", "DOCX"})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatDOCX, FormatPDF}, formats)
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC), end)
}
