package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"docuai/internal/ai"
	"docuai/internal/models"
	"docuai/internal/repository"

	"github.com/google/uuid"
)

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*models.User
	order []uuid.UUID
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
		f.order = append(f.order, u.ID)
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
		if u.ExternalID != nil && user.ExternalID != nil && *u.ExternalID == *user.ExternalID {
			return repository.ErrDuplicate
		}
	}
	cp := *user
	f.byID[user.ID] = &cp
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUsers) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if u := f.byID[id]; match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ID == id })
}

func (f *fakeUsers) GetByExternalID(_ context.Context, externalID string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.ExternalID != nil && *u.ExternalID == externalID })
}

func (f *fakeUsers) List(_ context.Context, limit, offset int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for i, id := range f.order {
		if i < offset || len(out) == limit {
			continue
		}
		cp := *f.byID[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUsers) SetTier(_ context.Context, id uuid.UUID, tier models.Tier) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Tier = tier
	return nil
}

func (f *fakeUsers) SetRole(_ context.Context, id uuid.UUID, role models.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

type fakeTemplates struct {
	mu    sync.Mutex
	items map[uuid.UUID]*models.Template
	inUse map[uuid.UUID]bool
}

func newFakeTemplates(ts ...*models.Template) *fakeTemplates {
	f := &fakeTemplates{items: map[uuid.UUID]*models.Template{}, inUse: map[uuid.UUID]bool{}}
	for _, t := range ts {
		f.items[t.ID] = t
	}
	return f
}

func (f *fakeTemplates) Create(_ context.Context, t *models.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTemplates) Update(_ context.Context, t *models.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[t.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *t
	f.items[t.ID] = &cp
	return nil
}

func (f *fakeTemplates) GetByID(_ context.Context, id uuid.UUID) (*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTemplates) List(_ context.Context, activeOnly bool) ([]*models.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Template
	for _, t := range f.items {
		if activeOnly && !t.IsActive {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTemplates) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.IsActive = active
	return nil
}

func (f *fakeTemplates) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	if f.inUse[id] {
		return repository.ErrInUse
	}
	delete(f.items, id)
	return nil
}

type fakeDesigns struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*models.DesignTemplate
	gets    int
	failGet error
}

func newFakeDesigns(ds ...*models.DesignTemplate) *fakeDesigns {
	f := &fakeDesigns{items: map[uuid.UUID]*models.DesignTemplate{}}
	for _, d := range ds {
		f.items[d.ID] = d
	}
	return f
}

func (f *fakeDesigns) Create(ctx context.Context, d *models.DesignTemplate) error {
	f.mu.Lock()
	cp := *d
	cp.IsDefault = false
	f.items[d.ID] = &cp
	f.mu.Unlock()
	if d.IsDefault {
		return f.SetDefault(ctx, d.ID)
	}
	return nil
}

func (f *fakeDesigns) Update(_ context.Context, d *models.DesignTemplate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.items[d.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *d
	cp.IsDefault = old.IsDefault
	f.items[d.ID] = &cp
	return nil
}

func (f *fakeDesigns) GetByID(_ context.Context, id uuid.UUID) (*models.DesignTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failGet != nil {
		return nil, f.failGet
	}
	d, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDesigns) GetDefault(_ context.Context) (*models.DesignTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.failGet != nil {
		return nil, f.failGet
	}
	for _, d := range f.items {
		if d.IsDefault {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDesigns) List(_ context.Context, activeOnly bool, format models.Format) ([]*models.DesignTemplate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.DesignTemplate
	for _, d := range f.items {
		if activeOnly && !d.IsActive {
			continue
		}
		if format != "" && !d.Supports(format) {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeDesigns) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.IsActive = active
	return nil
}

func (f *fakeDesigns) SetDefault(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	for _, d := range f.items {
		d.IsDefault = d.ID == id
	}
	return nil
}

func (f *fakeDesigns) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeDesigns) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets
}

type fakeBrand struct {
	mu sync.Mutex
	b  *models.BrandSettings
}

func (f *fakeBrand) Get(context.Context) (*models.BrandSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.b == nil {
		return nil, repository.ErrNotFound
	}
	cp := *f.b
	return &cp, nil
}

func (f *fakeBrand) Put(_ context.Context, b *models.BrandSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.b = &cp
	return nil
}

type fakeDocs struct {
	mu       sync.Mutex
	items    map[uuid.UUID]*models.Document
	failList error
	// beforeComplete runs inside MarkCompleted so tests can simulate a
	// concurrent terminal update.
	beforeComplete func(doc *models.Document)
	// completeErr is returned by MarkCompleted; completeCommits decides
	// whether the row changed before the error.
	completeErr     error
	completeCommits bool
}

func newFakeDocs(docs ...*models.Document) *fakeDocs {
	f := &fakeDocs{items: map[uuid.UUID]*models.Document{}}
	for _, d := range docs {
		f.items[d.ID] = d
	}
	return f
}

func (f *fakeDocs) Create(_ context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *doc
	f.items[doc.ID] = &cp
	return nil
}

func (f *fakeDocs) GetByID(_ context.Context, id uuid.UUID) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDocs) GetByFileURL(_ context.Context, fileURL string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.items {
		if d.FileURL == fileURL {
			cp := *d
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDocs) List(_ context.Context, filter models.DocumentFilter) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	var out []*models.Document
	for _, d := range f.items {
		if filter.UserID != nil && d.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		cp := *d
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeDocs) MarkCompleted(_ context.Context, id uuid.UUID, content, fileURL string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok {
		return false, nil
	}
	if f.beforeComplete != nil {
		f.beforeComplete(d)
	}
	if d.Status != models.StatusProcessing {
		return false, nil
	}
	if f.completeErr != nil {
		if f.completeCommits {
			d.Status = models.StatusCompleted
			d.Content = content
			d.FileURL = fileURL
		}
		return false, f.completeErr
	}
	d.Status = models.StatusCompleted
	d.Content = content
	d.FileURL = fileURL
	d.FailureReason = ""
	return true, nil
}

func (f *fakeDocs) MarkFailed(_ context.Context, id uuid.UUID, reason string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok || d.Status != models.StatusProcessing {
		return false, nil
	}
	d.Status = models.StatusFailed
	d.FailureReason = reason
	return true, nil
}

func (f *fakeDocs) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeDocs) SetFavorite(_ context.Context, id uuid.UUID, favorite bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.IsFavorite = favorite
	return nil
}

func (f *fakeDocs) SetTags(_ context.Context, id uuid.UUID, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	d.Tags = tags
	return nil
}

func (f *fakeDocs) CountCompletedBetween(_ context.Context, userID *uuid.UUID, start, end time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, d := range f.items {
		if userID != nil && d.UserID != *userID {
			continue
		}
		if d.Status == models.StatusCompleted && !d.CreatedAt.Before(start) && d.CreatedAt.Before(end) {
			n++
		}
	}
	return n, nil
}

func (f *fakeDocs) ListStuck(_ context.Context, cutoff time.Time, limit int) ([]*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Document
	for _, d := range f.items {
		if d.Status == models.StatusProcessing && d.UpdatedAt.Before(cutoff) && len(out) < limit {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeDocs) CountByStatus(context.Context) (map[models.DocumentStatus]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[models.DocumentStatus]int{}
	for _, d := range f.items {
		out[d.Status]++
	}
	return out, nil
}

func (f *fakeDocs) get(id uuid.UUID) *models.Document {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.items[id]
	if !ok {
		return nil
	}
	cp := *d
	return &cp
}

func (f *fakeDocs) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeUsage struct {
	mu      sync.Mutex
	entries []*models.Usage
	err     error
}

func (f *fakeUsage) Create(_ context.Context, u *models.Usage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, u)
	return nil
}

func (f *fakeUsage) TokensBetween(_ context.Context, start, end time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.entries {
		if !u.CreatedAt.Before(start) && u.CreatedAt.Before(end) {
			n += int64(u.TokensUsed)
		}
	}
	return n, nil
}

type fakeQueue struct {
	mu  sync.Mutex
	ids []uuid.UUID
	err error
}

func (f *fakeQueue) Enqueue(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, id)
	return nil
}

type fakeProvider struct {
	mu      sync.Mutex
	content string
	err     error
	prompts []ai.Prompt
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) GenerateContent(_ context.Context, p ai.Prompt) (*ai.Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Completion{Content: f.content, TokensUsed: 42, Provider: "fake"}, nil
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

type renderCall struct {
	format models.Format
	kind   models.TemplateType
	design *models.DesignTokens
}

type fakeRenderers struct {
	mu    sync.Mutex
	calls []renderCall
	err   error
}

func (f *fakeRenderers) Render(format models.Format, _ map[string]any, kind models.TemplateType, design *models.DesignTokens) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, renderCall{format: format, kind: kind, design: design})
	if f.err != nil {
		return nil, f.err
	}
	return []byte("rendered " + string(format)), nil
}

var errBoom = errors.New("boom")

var (
	templateID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	proID      = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func testUser(tier models.Tier) *models.User {
	return &models.User{
		ID:    uuid.New(),
		Name:  "Ada",
		Email: uuid.NewString() + "@example.com",
		Role:  models.RoleUser,
		Tier:  tier,
	}
}

func testTemplates() *fakeTemplates {
	return newFakeTemplates(
		&models.Template{
			ID:               templateID,
			Name:             "Invoice",
			Type:             models.TemplateInvoice,
			Fields:           []models.TemplateField{{Name: "client", Label: "Client", Required: true}},
			SupportedFormats: []models.Format{models.FormatDOCX, models.FormatPDF, models.FormatXLSX},
			RequiredTier:     models.TierFree,
			IsActive:         true,
		},
		&models.Template{
			ID:               proID,
			Name:             "Contract",
			Type:             models.TemplateContract,
			SupportedFormats: []models.Format{models.FormatDOCX},
			RequiredTier:     models.TierPro,
			IsActive:         true,
		},
	)
}

// completedDocs returns n COMPLETED documents owned by user inside the
// fixedNow month.
func completedDocs(user *models.User, n int) []*models.Document {
	out := make([]*models.Document, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, &models.Document{
			ID:         uuid.New(),
			UserID:     user.ID,
			TemplateID: templateID,
			Format:     models.FormatPDF,
			Status:     models.StatusCompleted,
			CreatedAt:  fixedNow().Add(-time.Duration(i+1) * time.Hour),
		})
	}
	return out
}
