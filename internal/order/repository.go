package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type Repository interface {
	// PlaceOrder decrements the product's stock and inserts the order as one
	// atomic unit. It fails with ErrProductNotFound or an
	// InsufficientStockError without any partial effect.
	PlaceOrder(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// UpdateStatus persists newStatus only if the row still carries
	// fromStatus, so two concurrent admin updates cannot skip a step. It
	// returns the updated_at written to the row.
	UpdateStatus(ctx context.Context, orderID uuid.UUID, fromStatus, newStatus Status) (time.Time, error)
	ListAll(ctx context.Context) ([]AdminView, error)
	HistoryByUser(ctx context.Context, userID uuid.UUID) ([]HistoryEntry, error)
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

// One transparent retry on serialization/deadlock aborts, then the failure
// is surfaced. Never more: the caller must see either the order or an error,
// not a silent drop.
const maxPlaceOrderRetries = 1

func (r *postgresRepository) PlaceOrder(ctx context.Context, o *Order) error {
	var lastErr error
	for attempt := 0; attempt <= maxPlaceOrderRetries; attempt++ {
		lastErr = r.placeOrderOnce(ctx, o)
		if lastErr == nil || !isTransient(lastErr) {
			return lastErr
		}
		log.Warn().Err(lastErr).Stringer("product_id", o.ProductID.UUID).Int("attempt", attempt+1).
			Msg("repository: transient failure placing order, retrying")
	}
	return fmt.Errorf("repository: failed to place order after retry: %w", lastErr)
}

func (r *postgresRepository) placeOrderOnce(ctx context.Context, o *Order) (err error) {
	if o.ID == uuid.Nil {
		id, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order ID: %w", genErr)
		}
		o.ID = id
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("repository: failed to rollback place-order transaction")
			}
		}
	}()

	// Conditional decrement: the row lock serializes concurrent orders for
	// the same product, and the predicate refuses to drive stock negative.
	decrement := `
		UPDATE products
		SET stock = stock - $1, updated_at = $2
		WHERE id = $3 AND stock >= $1
	`
	cmdTag, err := tx.Exec(ctx, decrement, o.Quantity, time.Now().UTC(), o.ProductID.UUID)
	if err != nil {
		return fmt.Errorf("repository: failed to decrement stock for product %s: %w", o.ProductID.UUID, err)
	}

	if cmdTag.RowsAffected() == 0 {
		var remaining int
		scanErr := tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, o.ProductID.UUID).Scan(&remaining)
		if scanErr != nil {
			if errors.Is(scanErr, pgx.ErrNoRows) {
				err = ErrProductNotFound
				return err
			}
			err = fmt.Errorf("repository: failed to read remaining stock for product %s: %w", o.ProductID.UUID, scanErr)
			return err
		}
		err = &InsufficientStockError{Remaining: remaining}
		return err
	}

	now := time.Now().UTC()
	o.Status = StatusPending
	o.CreatedAt = now
	o.UpdatedAt = now

	insert := `
		INSERT INTO orders (id, user_id, product_id, quantity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(ctx, insert, o.ID, o.UserID, o.ProductID, o.Quantity, string(o.Status), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository: failed to commit place-order transaction: %w", err)
	}
	return nil
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return false
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `
		SELECT id, user_id, product_id, quantity, status, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}
	return &o, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, fromStatus, newStatus Status) (time.Time, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING updated_at
	`

	var updatedAt time.Time
	err := r.db.QueryRow(ctx, query, string(newStatus), time.Now().UTC(), orderID, string(fromStatus)).Scan(&updatedAt)
	if err == nil {
		return updatedAt, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, fmt.Errorf("repository: failed to update status of order %s: %w", orderID, err)
	}

	// Either the order is gone or another update won the race.
	var current string
	scanErr := r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, orderID).Scan(&current)
	if scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return time.Time{}, ErrOrderNotFound
		}
		return time.Time{}, fmt.Errorf("repository: failed to re-read order %s after status update miss: %w", orderID, scanErr)
	}
	return time.Time{}, fmt.Errorf("%w: order %s is now %s", ErrInvalidTransition, orderID, current)
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]AdminView, error) {
	// Inner joins drop orders whose product or user reference has been
	// nulled by a catalog deletion; those stay visible in the owner's
	// history only.
	query := `
		SELECT o.id, o.quantity, o.status, o.created_at,
		       u.id, u.full_name, u.email, u.phone,
		       p.id, p.name, p.price
		FROM orders o
		JOIN users u ON u.id = o.user_id
		JOIN products p ON p.id = o.product_id
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query all orders: %w", err)
	}
	defer rows.Close()

	views := make([]AdminView, 0)
	for rows.Next() {
		var v AdminView
		err := rows.Scan(
			&v.OrderID, &v.Quantity, &v.Status, &v.CreatedAt,
			&v.UserID, &v.UserFullName, &v.UserEmail, &v.UserPhone,
			&v.ProductID, &v.ProductName, &v.ProductPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order view: %w", err)
		}
		views = append(views, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order views: %w", err)
	}
	return views, nil
}

func (r *postgresRepository) HistoryByUser(ctx context.Context, userID uuid.UUID) ([]HistoryEntry, error) {
	query := `
		SELECT o.id, COALESCE(p.name, ''), COALESCE(p.price, 0), o.quantity, o.status, o.created_at
		FROM orders o
		LEFT JOIN products p ON p.id = o.product_id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order history for user %s: %w", userID, err)
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var e HistoryEntry
		err := rows.Scan(&e.OrderID, &e.ProductName, &e.Price, &e.Quantity, &e.Status, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan history entry for user %s: %w", userID, err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating history for user %s: %w", userID, err)
	}
	return entries, nil
}
