package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/saurabh-eg/Tasksync/internal/auth"
	apperrors "github.com/saurabh-eg/Tasksync/internal/errors"
	"github.com/saurabh-eg/Tasksync/internal/model"
	"github.com/saurabh-eg/Tasksync/internal/repository"
)

// AuthService handles registration and login.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (token string, user *model.User, err error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	passwords  *auth.PasswordService
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, passwords *auth.PasswordService) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		passwords:  passwords,
	}
}

// Register creates a new user with hashed password and issues an access token.
func (s *authService) Register(ctx context.Context, email, password, name string) (string, *model.User, error) {
	// Check if the email is taken. The unique index is the real guarantee; this
	// pre-check just gives the common case a clean error without an insert.
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return "", nil, apperrors.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the pre-check; the index
		// makes the second insert fail and we report it as the same conflict.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", nil, apperrors.ErrEmailTaken
		}
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateAccessToken(user.ID.String())
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}

	return token, user, nil
}

// Login authenticates by email and password and issues an access token.
// An unknown email and a wrong password produce the same error.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperrors.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}

	if !s.passwords.Verify(user.PasswordHash, password) {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateAccessToken(user.ID.String())
	if err != nil {
		return "", nil, fmt.Errorf("generate access token: %w", err)
	}

	return token, user, nil
}
