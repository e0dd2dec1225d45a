package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"docuai/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, 24*time.Hour)

	access, err := m.GenerateToken("user-1", "a@b.c")
	require.NoError(t, err)
	claims, err := m.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)

	refresh, err := m.GenerateRefreshToken("user-1")
	require.NoError(t, err)

	_, err = m.ValidateToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken, "refresh token must not authenticate requests")
	_, err = m.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	rc, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rc.UserID)
}

func TestJWTManagerRejectsExpiredAndForeign(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	expired, err := m.GenerateToken("user-1", "")
	require.NoError(t, err)
	m.now = time.Now
	_, err = m.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewJWTManager("other-secret", time.Hour, time.Hour)
	foreign, err := other.GenerateToken("user-1", "")
	require.NoError(t, err)
	_, err = m.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
}

func signHosted(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestHostedStrategy(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	s := NewHostedStrategy(&key.PublicKey, "https://id.example.com", "docuai")

	valid := jwt.MapClaims{
		"sub":   "idp|42",
		"email": "Jane@Example.com",
		"name":  "Jane",
		"iss":   "https://id.example.com",
		"aud":   "docuai",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}

	p, err := s.Authenticate(context.Background(), signHosted(t, key, valid))
	require.NoError(t, err)
	assert.Equal(t, "idp|42", p.Subject)
	assert.Equal(t, "jane@example.com", p.Email)
	assert.False(t, p.IsLocal())

	tests := []struct {
		name   string
		mutate func(c jwt.MapClaims)
	}{
		{name: "wrong issuer", mutate: func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }},
		{name: "wrong audience", mutate: func(c jwt.MapClaims) { c["aud"] = "other" }},
		{name: "expired", mutate: func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }},
		{name: "no expiry", mutate: func(c jwt.MapClaims) { delete(c, "exp") }},
		{name: "no subject", mutate: func(c jwt.MapClaims) { delete(c, "sub") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := jwt.MapClaims{}
			for k, v := range valid {
				claims[k] = v
			}
			tt.mutate(claims)
			_, err := s.Authenticate(context.Background(), signHosted(t, key, claims))
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	t.Run("hs256 token rejected", func(t *testing.T) {
		local := NewJWTManager("secret", time.Hour, time.Hour)
		token, err := local.GenerateToken("user-1", "")
		require.NoError(t, err)
		_, err = s.Authenticate(context.Background(), token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewStrategy(t *testing.T) {
	m := NewJWTManager("secret", time.Hour, time.Hour)

	s, err := NewStrategy(&config.AuthConfig{Strategy: config.AuthStrategyLocal}, m)
	require.NoError(t, err)
	assert.Equal(t, config.AuthStrategyLocal, s.Name())

	token, err := m.GenerateToken("user-7", "x@y.z")
	require.NoError(t, err)
	p, err := s.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, p.IsLocal())
	assert.Equal(t, "user-7", p.Subject)

	_, err = NewStrategy(&config.AuthConfig{Strategy: config.AuthStrategyHosted, HostedPublicKey: "not a pem"}, m)
	assert.Error(t, err)
}
