package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// Service coordinates registration and login.
type Service struct {
	store  *Store
	tokens *TokenManager
	logger *slog.Logger
}

// NewService constructs the auth service.
func NewService(store *Store, tokens *TokenManager, logger *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, logger: logger}
}

// LoginResult carries the issued token and display username.
type LoginResult struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

// Register creates a new account and logs it in.
func (s *Service) Register(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" {
		return nil, fmt.Errorf("username required")
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, string(hashed))
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Generate(user.ID.String(), user.Username)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", slog.String("username", username))
	return &LoginResult{Username: user.Username, AccessToken: token}, nil
}

// Login authenticates stored credentials and issues a token.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID.String(), user.Username)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Username: user.Username, AccessToken: token}, nil
}

// Validate verifies an access token.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	return s.tokens.Validate(tokenString)
}
