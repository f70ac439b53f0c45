package category

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	Create(ctx context.Context, c *Category) (*Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, c *Category) (*Category, error) {
	if c.Name == "" {
		return nil, errors.New("service: category name is required")
	}

	c.ID = uuid.Nil

	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, ErrNameTaken) {
			return nil, ErrNameTaken
		}
		log.Error().Err(err).Str("name", c.Name).Msg("service: failed to create category in repository")
		return nil, fmt.Errorf("service: failed to create category: %w", err)
	}

	log.Info().Stringer("category_id", c.ID).Str("name", c.Name).Msg("service: category created")
	return c, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("category_id", id).Msg("service: failed to fetch category by id")
		return nil, fmt.Errorf("service: failed to fetch category by id: %w", err)
	}
	return c, nil
}

func (s *service) List(ctx context.Context) ([]Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list categories")
		return nil, fmt.Errorf("service: failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("category_id", id).Msg("service: failed to delete category in repository")
		return fmt.Errorf("service: failed to delete category: %w", err)
	}

	log.Info().Stringer("category_id", id).Msg("service: category deleted, products keep a nulled reference")
	return nil
}
