package dashboard

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

const defaultLimit = 10

type Service interface {
	TopSelling(ctx context.Context, limit int) ([]TopSellingProduct, error)
	RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error)
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) TopSelling(ctx context.Context, limit int) ([]TopSellingProduct, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	products, err := s.repo.TopSelling(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch top-selling products")
		return nil, fmt.Errorf("service: failed to fetch top-selling products: %w", err)
	}
	return products, nil
}

func (s *service) RecentOrders(ctx context.Context, limit int) ([]RecentOrder, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	orders, err := s.repo.RecentOrders(ctx, limit)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch recent orders")
		return nil, fmt.Errorf("service: failed to fetch recent orders: %w", err)
	}
	return orders, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	summary, err := s.repo.Summary(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch dashboard summary")
		return nil, fmt.Errorf("service: failed to fetch dashboard summary: %w", err)
	}
	return summary, nil
}
