package seed

import (
	"context"
	"errors"
	"testing"

	"docuai/internal/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCatalog struct {
	templates []dto.TemplateResponse
	designs   []dto.DesignResponse
	updated   []string
	branding  *dto.BrandingRequest
	createErr error
}

func (f *fakeCatalog) ListTemplates(context.Context) ([]dto.TemplateResponse, error) {
	return f.templates, nil
}

func (f *fakeCatalog) CreateTemplate(_ context.Context, req *dto.TemplateRequest) (*dto.TemplateResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	t := dto.TemplateResponse{ID: uuid.NewString(), Name: req.Name}
	f.templates = append(f.templates, t)
	return &t, nil
}

func (f *fakeCatalog) UpdateTemplate(_ context.Context, id uuid.UUID, req *dto.TemplateRequest) (*dto.TemplateResponse, error) {
	f.updated = append(f.updated, id.String())
	return &dto.TemplateResponse{ID: id.String(), Name: req.Name}, nil
}

func (f *fakeCatalog) ListDesigns(context.Context) ([]dto.DesignResponse, error) {
	return f.designs, nil
}

func (f *fakeCatalog) CreateDesign(_ context.Context, req *dto.DesignRequest) (*dto.DesignResponse, error) {
	d := dto.DesignResponse{ID: uuid.NewString(), Name: req.Name}
	f.designs = append(f.designs, d)
	return &d, nil
}

func (f *fakeCatalog) UpdateDesign(_ context.Context, id uuid.UUID, req *dto.DesignRequest) (*dto.DesignResponse, error) {
	f.updated = append(f.updated, id.String())
	return &dto.DesignResponse{ID: id.String(), Name: req.Name}, nil
}

func (f *fakeCatalog) PutBranding(_ context.Context, req *dto.BrandingRequest) (*dto.BrandingResponse, error) {
	f.branding = req
	return &dto.BrandingResponse{BrandingRequest: *req}, nil
}

const sample = `
templates:
  - name: Invoice
    type: invoice
    supportedFormats: [DOCX, PDF]
    requiredTier: FREE
    fields:
      - { name: company, label: Company, kind: text, required: true }
  - name: Memo
    type: memo
    supportedFormats: [DOCX]
designs:
  - name: Classic
    supportedFormats: [PDF]
    isDefault: true
    tokens:
      primaryColor: "#112233"
      spacing: relaxed
branding:
  companyName: Acme
  primaryColor: "#112233"
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	require.Len(t, f.Templates, 2)
	assert.Equal(t, "invoice", f.Templates[0].Type)
	assert.Equal(t, []string{"DOCX", "PDF"}, f.Templates[0].SupportedFormats)
	require.Len(t, f.Templates[0].Fields, 1)
	assert.True(t, f.Templates[0].Fields[0].Required)

	require.Len(t, f.Designs, 1)
	assert.True(t, f.Designs[0].IsDefault)
	assert.Equal(t, "#112233", f.Designs[0].Tokens.PrimaryColor)
	assert.EqualValues(t, "relaxed", f.Designs[0].Tokens.Spacing)

	require.NotNil(t, f.Branding)
	assert.Equal(t, "Acme", f.Branding.CompanyName)

	_, err = Parse([]byte("templates: [unterminated"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	existing := uuid.NewString()
	catalog := &fakeCatalog{
		templates: []dto.TemplateResponse{{ID: existing, Name: "invoice "}},
	}
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	res, err := Apply(context.Background(), catalog, f, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, &Result{
		TemplatesCreated: 1,
		TemplatesUpdated: 1,
		DesignsCreated:   1,
		Branding:         true,
	}, res)
	assert.Equal(t, []string{existing}, catalog.updated)
	assert.Equal(t, "Acme", catalog.branding.CompanyName)

	// A second run only updates.
	catalog.updated = nil
	res, err = Apply(context.Background(), catalog, f, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 0, res.TemplatesCreated+res.DesignsCreated)
	assert.Equal(t, 2, res.TemplatesUpdated)
	assert.Equal(t, 1, res.DesignsUpdated)
}

func TestApplyStopsOnError(t *testing.T) {
	catalog := &fakeCatalog{createErr: errors.New("invalid input: type")}
	f, err := Parse([]byte(sample))
	require.NoError(t, err)

	_, err = Apply(context.Background(), catalog, f, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `template "Invoice"`)
	assert.Nil(t, catalog.branding)
}
