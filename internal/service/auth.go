// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carnet/carnet/internal/auth"
	"github.com/carnet/carnet/internal/metrics"
	"github.com/carnet/carnet/internal/model"
	"github.com/carnet/carnet/internal/repository"
)

// Auth service errors.
var (
	ErrUsernameTaken  = errors.New("username already taken")
	ErrEmailTaken     = errors.New("email already taken")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrMissingField   = errors.New("missing required field")
)

// UserStore is the slice of the record store the auth service needs.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthService handles registration, login and token issuance.
type AuthService struct {
	store      UserStore
	issuer     *auth.TokenIssuer
	bcryptCost int
	metrics    metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, issuer *auth.TokenIssuer, bcryptCost int, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		store:      store,
		issuer:     issuer,
		bcryptCost: bcryptCost,
		metrics:    recorder,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new account and issues its first token.
// Username and email availability are pre-checked to give distinct friendly
// errors; the unique indexes catch the remaining create races.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, "", ErrMissingField
	}

	if _, err := s.store.GetUserByUsername(ctx, input.Username); err == nil {
		return nil, "", ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.store.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, "", ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.issuer.Issue(user.ID, time.Now().UTC())
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, token, nil
}

// Login verifies credentials and issues a token.
// An unknown username and a wrong password both return ErrBadCredentials so
// callers cannot probe for account existence.
func (s *AuthService) Login(ctx context.Context, username, password string) (*model.User, string, error) {
	if username == "" || password == "" {
		s.metrics.IncLoginFailure()
		return nil, "", ErrBadCredentials
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return nil, "", ErrBadCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.metrics.IncLoginFailure()
		return nil, "", ErrBadCredentials
	}

	token, err := s.issuer.Issue(user.ID, time.Now().UTC())
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()

	return user, token, nil
}
