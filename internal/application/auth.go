package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tattzy25/real-code-homie/internal/domain"
	"github.com/Tattzy25/real-code-homie/internal/security"
)

type AuthService struct {
	users  domain.UserRepository
	hasher *security.BcryptService
	tokens *security.JWTService
}

func NewAuthService(users domain.UserRepository, hasher *security.BcryptService, tokens *security.JWTService) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

type AuthResult struct {
	UserID    string
	Username  string
	Tier      domain.Tier
	Token     string
	ExpiresAt time.Time
}

func (s *AuthService) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if email == "" || username == "" || len(password) < 8 {
		return nil, fmt.Errorf("%w: email, username and a password of at least 8 characters are required", domain.ErrInvalidRequest)
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrInvalidRequest)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Tier:         domain.TierFree,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	// Same failure for a missing user and a wrong password.
	if user == nil || !s.hasher.Compare(user.PasswordHash, password) {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrUnauthenticated)
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{
		UserID:    user.ID,
		Username:  user.Username,
		Tier:      user.Tier,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
