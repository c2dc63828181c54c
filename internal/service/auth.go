// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/smartbill/smartbill/internal/auth"
	"github.com/smartbill/smartbill/internal/metrics"
	"github.com/smartbill/smartbill/internal/model"
	"github.com/smartbill/smartbill/internal/repository"
)

// Account service errors.
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const minPasswordLength = 8

// AuthService handles registration and login.
type AuthService struct {
	repo    *repository.Repository
	tokens  *auth.TokenService
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *repository.Repository, tokens *auth.TokenService, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		repo:    repo,
		tokens:  tokens,
		metrics: recorder,
	}
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	AccessToken string
	UserID      string
}

// Register creates a new active user with a hashed password.
// The unique index on users.email decides duplicate registrations;
// there is no check-then-insert race.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.metrics.IncUserRegistered()
	return user, nil
}

// Login verifies the credentials and issues a session token.
// An unknown email and a wrong password both return
// ErrInvalidCredentials so the response never reveals which one it
// was.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Parse failures on a corrupted stored hash deny the login the
	// same way a mismatch does; the cause is recoverable from logs
	// upstream, never from the response.
	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailure()
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()
	return &LoginResult{
		AccessToken: token,
		UserID:      user.ID,
	}, nil
}

// validateEmail performs a light shape check: something@something,
// no spaces. Deliverability is not our problem.
func validateEmail(email string) error {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	if strings.ContainsAny(email, " \t") {
		return ErrInvalidEmail
	}
	return nil
}
