package auth

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"docuai/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

// Principal is the verified identity behind a bearer token.
type Principal struct {
	Provider string // "local" or "hosted"
	Subject  string // local user id, or the identity provider's subject
	Email    string
	Name     string
}

func (p *Principal) IsLocal() bool {
	return p.Provider == config.AuthStrategyLocal
}

// Strategy verifies bearer tokens. Exactly one is chosen at startup.
type Strategy interface {
	Name() string
	Authenticate(ctx context.Context, token string) (*Principal, error)
}

// NewStrategy builds the strategy selected by cfg.Strategy.
func NewStrategy(cfg *config.AuthConfig, jwtManager *JWTManager) (Strategy, error) {
	switch cfg.Strategy {
	case config.AuthStrategyLocal:
		return NewLocalStrategy(jwtManager), nil
	case config.AuthStrategyHosted:
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.HostedPublicKey))
		if err != nil {
			return nil, fmt.Errorf("failed to parse hosted identity public key: %w", err)
		}
		return NewHostedStrategy(key, cfg.HostedIssuer, cfg.HostedAudience), nil
	default:
		return nil, fmt.Errorf("unknown auth strategy %q", cfg.Strategy)
	}
}

type LocalStrategy struct {
	jwt *JWTManager
}

func NewLocalStrategy(jwtManager *JWTManager) *LocalStrategy {
	return &LocalStrategy{jwt: jwtManager}
}

func (s *LocalStrategy) Name() string { return config.AuthStrategyLocal }

func (s *LocalStrategy) Authenticate(_ context.Context, token string) (*Principal, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &Principal{
		Provider: config.AuthStrategyLocal,
		Subject:  claims.UserID,
		Email:    claims.Email,
	}, nil
}

type hostedClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// HostedStrategy verifies RS256 tokens minted by an external identity provider.
type HostedStrategy struct {
	key      *rsa.PublicKey
	issuer   string
	audience string
	now      func() time.Time
}

func NewHostedStrategy(key *rsa.PublicKey, issuer, audience string) *HostedStrategy {
	return &HostedStrategy{key: key, issuer: issuer, audience: audience, now: time.Now}
}

func (s *HostedStrategy) Name() string { return config.AuthStrategyHosted }

func (s *HostedStrategy) Authenticate(_ context.Context, token string) (*Principal, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := &hostedClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.key, nil
	}, opts...)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}

	return &Principal{
		Provider: config.AuthStrategyHosted,
		Subject:  claims.Subject,
		Email:    strings.ToLower(strings.TrimSpace(claims.Email)),
		Name:     claims.Name,
	}, nil
}
