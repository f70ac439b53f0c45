package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Service interface {
	// PlaceOrder validates the request, then atomically decrements the
	// product's stock and records the order. The user id comes from the
	// resolved identity, never from the request body.
	PlaceOrder(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Order, error)
	ChangeStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (*Order, error)
	ListAll(ctx context.Context) ([]AdminView, error)
	HistoryByUser(ctx context.Context, userID uuid.UUID) ([]HistoryEntry, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) PlaceOrder(ctx context.Context, userID, productID uuid.UUID, quantity int) (*Order, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidOrder)
	}
	if productID == uuid.Nil {
		return nil, fmt.Errorf("%w: product id is required", ErrInvalidOrder)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidOrder)
	}

	o := &Order{
		UserID:    uuid.NullUUID{UUID: userID, Valid: true},
		ProductID: uuid.NullUUID{UUID: productID, Valid: true},
		Quantity:  quantity,
	}

	if err := s.repo.PlaceOrder(ctx, o); err != nil {
		switch {
		case errors.Is(err, ErrProductNotFound):
			log.Warn().Stringer("product_id", productID).Msg("service: order for unknown product")
			return nil, ErrProductNotFound
		case errors.Is(err, ErrInsufficientStock):
			log.Warn().Stringer("product_id", productID).Int("quantity", quantity).
				Msg("service: order rejected, insufficient stock")
			return nil, err
		default:
			log.Error().Err(err).Stringer("product_id", productID).Msg("service: failed to place order")
			return nil, fmt.Errorf("service: failed to place order: %w", err)
		}
	}

	log.Info().Stringer("order_id", o.ID).Stringer("user_id", userID).
		Stringer("product_id", productID).Int("quantity", quantity).
		Msg("service: order placed")
	return o, nil
}

func (s *service) ChangeStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (*Order, error) {
	// The status value is checked before any read so a malformed request
	// never touches storage.
	newStatus, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Stringer("order_id", orderID).Str("new_status", rawStatus).
				Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for status update")
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	if current.Status == newStatus {
		log.Info().Stringer("order_id", orderID).Stringer("status", newStatus).
			Msg("service: order status is already the same, no update needed")
		return current, nil
	}

	if !current.Status.CanTransitionTo(newStatus) {
		log.Warn().Stringer("order_id", orderID).
			Stringer("current_status", current.Status).Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: from %s to %s", ErrInvalidTransition, current.Status, newStatus)
	}

	updatedAt, err := s.repo.UpdateStatus(ctx, orderID, current.Status, newStatus)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrInvalidTransition) {
			return nil, err
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).
			Msg("service: failed to update order status")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Stringer("order_id", orderID).
		Stringer("old_status", current.Status).Stringer("new_status", newStatus).
		Msg("service: order status updated")

	updated := *current
	updated.Status = newStatus
	updated.UpdatedAt = updatedAt
	return &updated, nil
}

func (s *service) ListAll(ctx context.Context) ([]AdminView, error) {
	views, err := s.repo.ListAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}
	return views, nil
}

func (s *service) HistoryByUser(ctx context.Context, userID uuid.UUID) ([]HistoryEntry, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidOrder)
	}

	entries, err := s.repo.HistoryByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch order history")
		return nil, fmt.Errorf("service: failed to fetch order history: %w", err)
	}
	return entries, nil
}
