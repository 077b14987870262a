package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/code-gritt/klientel/pkg/auth"
	"github.com/code-gritt/klientel/pkg/logger"
	"github.com/code-gritt/klientel/pkg/metrics"
	"github.com/code-gritt/klientel/pkg/store"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string, credits int) (store.User, error)
	GetUserByEmail(ctx context.Context, email string) (store.User, error)
	GetUserByID(ctx context.Context, id int) (store.User, error)
}

// Service owns account registration, login and the session token pair.
type Service struct {
	store           Store
	jwtSecret       string
	jwtExpiryHours  int
	startingCredits int
	log             logger.Logger
	metrics         *metrics.Metrics
}

func NewService(s Store, jwtSecret string, jwtExpiryHours, startingCredits int, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:           s,
		jwtSecret:       jwtSecret,
		jwtExpiryHours:  jwtExpiryHours,
		startingCredits: startingCredits,
		log:             log,
		metrics:         m,
	}
}

// Register creates an account with the starting credit balance and returns
// the user plus a signed access token.
func (s *Service) Register(ctx context.Context, email, password string) (store.User, string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return store.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, email, hash, s.startingCredits)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return store.User{}, "", ErrEmailTaken
		}
		return store.User{}, "", fmt.Errorf("create user: %w", err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, s.jwtSecret, s.jwtExpiryHours)
	if err != nil {
		return store.User{}, "", fmt.Errorf("generate token: %w", err)
	}

	s.metrics.RecordUserRegistered()
	s.log.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies credentials and returns the user plus a signed access
// token. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, email, password string) (store.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.metrics.RecordLoginAttempt(false)
			return store.User{}, "", ErrInvalidCredentials
		}
		return store.User{}, "", fmt.Errorf("get user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		s.metrics.RecordLoginAttempt(false)
		return store.User{}, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateJWT(user.ID, user.Email, s.jwtSecret, s.jwtExpiryHours)
	if err != nil {
		return store.User{}, "", fmt.Errorf("generate token: %w", err)
	}

	s.metrics.RecordLoginAttempt(true)
	s.log.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID int) (store.User, error) {
	return s.store.GetUserByID(ctx, userID)
}
