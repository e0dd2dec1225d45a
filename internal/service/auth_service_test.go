package service

import (
	"context"
	"testing"
	"time"

	"docuai/internal/dto"
	"docuai/internal/models"
	"docuai/pkg/auth"
	"docuai/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService() (*AuthService, *fakeUsers) {
	users := newFakeUsers()
	jwt := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	return NewAuthService(users, jwt, zap.NewNop()), users
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestAuthService()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{Name: " Ada ", Email: "Ada@Example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, "Ada", resp.User.Name)
	assert.Equal(t, "FREE", resp.User.Tier)
	assert.Equal(t, "USER", resp.User.Role)

	stored, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.Password)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "ada@example.com", Password: "another pass"})
	assert.ErrorIs(t, err, ErrUserExists)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "ADA@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Email: "not-an-email", Password: "long enough"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Register(context.Background(), &dto.RegisterRequest{Email: "a@b.c", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRefreshToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuthService()

	resp, err := svc.Register(ctx, &dto.RegisterRequest{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)

	// an access token is not a refresh token
	_, err = svc.RefreshToken(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolvePrincipal(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestAuthService()
	local := testUser(models.TierPro)
	require.NoError(t, users.Create(ctx, local))

	got, err := svc.ResolvePrincipal(ctx, &auth.Principal{Provider: config.AuthStrategyLocal, Subject: local.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, local.ID, got.ID)

	_, err = svc.ResolvePrincipal(ctx, &auth.Principal{Provider: config.AuthStrategyLocal, Subject: "garbage"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	hosted := &auth.Principal{Provider: config.AuthStrategyHosted, Subject: "idp|123", Email: "Grace@Example.com", Name: "Grace"}
	first, err := svc.ResolvePrincipal(ctx, hosted)
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, first.Tier)
	assert.Equal(t, models.RoleUser, first.Role)
	assert.Equal(t, "grace@example.com", first.Email)
	require.NotNil(t, first.ExternalID)
	assert.Equal(t, "idp|123", *first.ExternalID)

	second, err := svc.ResolvePrincipal(ctx, hosted)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID, "provisioned once")

	// hosted accounts cannot use password login
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "grace@example.com", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
