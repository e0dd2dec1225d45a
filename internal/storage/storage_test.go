package storage

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestValidFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "generated", in: "0f8e_invoice_1700000000000_ab12cd34.pdf", want: true},
		{name: "dash and dot", in: "report-v2.final.docx", want: true},
		{name: "empty", in: "", want: false},
		{name: "parent traversal", in: "..", want: false},
		{name: "embedded traversal", in: "a..b.pdf", want: false},
		{name: "slash", in: "dir/file.pdf", want: false},
		{name: "backslash", in: `dir\file.pdf`, want: false},
		{name: "space", in: "my file.pdf", want: false},
		{name: "percent", in: "file%2e.pdf", want: false},
		{name: "unicode", in: "résumé.pdf", want: false},
		{name: "max length", in: strings.Repeat("a", 251) + ".pdf", want: true},
		{name: "too long", in: strings.Repeat("a", 252) + ".pdf", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidFilename(tt.in))
		})
	}
}

func TestGenerateFilename(t *testing.T) {
	owner := uuid.MustParse("6f1c2a9e-8d3b-4c1e-9a77-0e5b2d4f6a81")
	now := time.UnixMilli(1760000000123)

	name := GenerateFilename(owner, "Invoice", ".pdf", now)
	assert.True(t, ValidFilename(name), name)
	assert.Regexp(t, regexp.MustCompile(`^6f1c2a9e-8d3b-4c1e-9a77-0e5b2d4f6a81_invoice_1760000000123_[0-9a-f]{8}\.pdf$`), name)

	other := GenerateFilename(owner, "Invoice", "pdf", now)
	assert.NotEqual(t, name, other, "random suffix must differ")
}

func TestLocalStorage(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	name, err := s.Save(ctx, []byte("hello"), "a_memo_1_abc.docx")
	require.NoError(t, err)
	assert.Equal(t, "a_memo_1_abc.docx", name)

	_, err = s.Save(ctx, []byte("again"), name)
	assert.ErrorIs(t, err, ErrExists)

	data, err := s.Read(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	require.NoError(t, s.Delete(ctx, name))
	require.NoError(t, s.Delete(ctx, name), "delete is idempotent")

	_, err = s.Read(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Read(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidFilename)
	_, err = s.Save(ctx, []byte("x"), "../escape.pdf")
	assert.ErrorIs(t, err, ErrInvalidFilename)
}
