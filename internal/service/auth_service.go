package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"docuai/internal/dto"
	"docuai/internal/models"
	"docuai/internal/repository"
	"docuai/pkg/auth"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type AuthService struct {
	userRepo   UserStore
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

func NewAuthService(userRepo UserStore, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if !strings.Contains(email, "@") {
		return nil, invalidInput("email is not valid")
	}
	if len(req.Password) < minPasswordLength {
		return nil, invalidInput("password must be at least %d characters", minPasswordLength)
	}

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existingUser != nil {
		return nil, ErrUserExists
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Password:  hashedPassword,
		Role:      models.RoleUser,
		Tier:      models.TierFree,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	// Hosted accounts have no password and cannot log in here.
	if user.Password == "" || !auth.CheckPasswordHash(req.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return s.issue(user)
}

// ResolvePrincipal maps a verified token identity to a local user. Local
// principals must already exist; hosted ones are provisioned on first sight
// as FREE users.
func (s *AuthService) ResolvePrincipal(ctx context.Context, p *auth.Principal) (*models.User, error) {
	if p == nil {
		return nil, ErrUnauthorized
	}

	if p.IsLocal() {
		id, err := uuid.Parse(p.Subject)
		if err != nil {
			return nil, ErrUnauthorized
		}
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		return user, nil
	}

	user, err := s.userRepo.GetByExternalID(ctx, p.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return s.provision(ctx, p)
}

func (s *AuthService) provision(ctx context.Context, p *auth.Principal) (*models.User, error) {
	email := normalizeEmail(p.Email)
	if email == "" {
		email = p.Subject + "@users.invalid"
	}
	subject := p.Subject

	now := time.Now()
	user := &models.User{
		ID:         uuid.New(),
		Name:       strings.TrimSpace(p.Name),
		Email:      email,
		Role:       models.RoleUser,
		Tier:       models.TierFree,
		ExternalID: &subject,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("failed to provision user: %w", err)
		}
		// A concurrent request may have provisioned the same subject.
		existing, gerr := s.userRepo.GetByExternalID(ctx, subject)
		if gerr != nil {
			return nil, ErrUserExists
		}
		return existing, nil
	}

	s.logger.Info("Provisioned hosted user", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID.String())
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.jwtManager.GetTokenDuration().Seconds()),
		User:         ToUserResponse(user),
	}, nil
}

func ToUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
		Tier:  string(user.Tier),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
