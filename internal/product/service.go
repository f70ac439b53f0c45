package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	Create(ctx context.Context, p *Product) (*Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	Update(ctx context.Context, p *Product) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Like(ctx context.Context, id uuid.UUID) (*Product, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func validate(p *Product) error {
	if p.Name == "" {
		return errors.New("service: product name is required")
	}
	if p.Price.IsNegative() {
		return errors.New("service: product price cannot be negative")
	}
	if p.Stock < 0 {
		return errors.New("service: product stock cannot be negative")
	}
	if !p.CategoryID.Valid {
		return errors.New("service: product category is required")
	}
	return nil
}

func (s *service) Create(ctx context.Context, p *Product) (*Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if len(p.Images) == 0 {
		return nil, errors.New("service: at least one product image is required")
	}

	p.ID = uuid.Nil
	p.Likes = 0

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		log.Error().Err(err).Str("name", p.Name).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Stringer("product_id", p.ID).Str("name", p.Name).Msg("service: product created")
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to fetch product by id")
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}
	return p, nil
}

func (s *service) List(ctx context.Context) ([]Product, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list products")
		return nil, fmt.Errorf("service: failed to list products: %w", err)
	}
	return products, nil
}

func (s *service) Update(ctx context.Context, p *Product) (*Product, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		log.Error().Err(err).Stringer("product_id", p.ID).Msg("service: failed to update product in repository")
		return nil, fmt.Errorf("service: failed to update product: %w", err)
	}

	return s.GetByID(ctx, p.ID)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to delete product in repository")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}

	log.Info().Stringer("product_id", id).Msg("service: product deleted, existing orders keep a nulled reference")
	return nil
}

func (s *service) Like(ctx context.Context, id uuid.UUID) (*Product, error) {
	p, err := s.repo.Like(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Stringer("product_id", id).Msg("service: failed to like product")
		return nil, fmt.Errorf("service: failed to like product: %w", err)
	}
	return p, nil
}
