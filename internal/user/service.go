package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Service interface {
	Register(ctx context.Context, u *User, password string) (*User, error)
	Authenticate(ctx context.Context, username, password string) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Register(ctx context.Context, u *User, password string) (*User, error) {
	if password == "" {
		return nil, errors.New("service: password cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to hash password")
		return nil, fmt.Errorf("service: failed to hash password: %w", err)
	}

	u.PasswordHash = string(hash)
	u.Email = strings.ToLower(u.Email)
	u.Role = "user"

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailExists) || errors.Is(err, ErrPhoneExists) {
			return nil, err
		}
		log.Error().Err(err).Str("username", u.Username).Msg("service: failed to create user in repository")
		return nil, fmt.Errorf("service: failed to create user: %w", err)
	}

	log.Info().Stringer("user_id", u.ID).Str("username", u.Username).Msg("service: user registered")
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Same error for unknown user and bad password.
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Str("username", username).Msg("service: failed to fetch user for login")
		return nil, fmt.Errorf("service: failed to fetch user for login: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("user_id", id).Msg("service: failed to fetch user by id")
		return nil, fmt.Errorf("service: failed to fetch user by id: %w", err)
	}
	return u, nil
}
