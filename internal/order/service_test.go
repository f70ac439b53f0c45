package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ekeyboard/backend/internal/order"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrderRepository struct {
	placeOrderFunc   func(ctx context.Context, o *order.Order) error
	getByIDFunc      func(ctx context.Context, id uuid.UUID) (*order.Order, error)
	updateStatusFunc func(ctx context.Context, orderID uuid.UUID, fromStatus, newStatus order.Status) (time.Time, error)
	listAllFunc      func(ctx context.Context) ([]order.AdminView, error)
	historyFunc      func(ctx context.Context, userID uuid.UUID) ([]order.HistoryEntry, error)
}

func (m *mockOrderRepository) PlaceOrder(ctx context.Context, o *order.Order) error {
	return m.placeOrderFunc(ctx, o)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, fromStatus, newStatus order.Status) (time.Time, error) {
	return m.updateStatusFunc(ctx, orderID, fromStatus, newStatus)
}

func (m *mockOrderRepository) ListAll(ctx context.Context) ([]order.AdminView, error) {
	return m.listAllFunc(ctx)
}

func (m *mockOrderRepository) HistoryByUser(ctx context.Context, userID uuid.UUID) ([]order.HistoryEntry, error) {
	return m.historyFunc(ctx, userID)
}

// memStockRepository behaves like the real repository's conditional
// decrement: placement succeeds only while stock covers the quantity, and
// check plus decrement happen as one unit.
type memStockRepository struct {
	mockOrderRepository

	mu     sync.Mutex
	stock  int
	placed []order.Order
}

func (m *memStockRepository) PlaceOrder(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stock < o.Quantity {
		return &order.InsufficientStockError{Remaining: m.stock}
	}
	m.stock -= o.Quantity

	id, err := uuid.NewV4()
	if err != nil {
		return err
	}
	o.ID = id
	o.Status = order.StatusPending
	m.placed = append(m.placed, *o)
	return nil
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV4()
	require.NoError(t, err)
	return id
}

func TestOrderService_PlaceOrder_Validation(t *testing.T) {
	userID := mustUUID(t)
	productID := mustUUID(t)

	tests := []struct {
		name      string
		userID    uuid.UUID
		productID uuid.UUID
		quantity  int
	}{
		{name: "nil_user", userID: uuid.Nil, productID: productID, quantity: 1},
		{name: "nil_product", userID: userID, productID: uuid.Nil, quantity: 1},
		{name: "zero_quantity", userID: userID, productID: productID, quantity: 0},
		{name: "negative_quantity", userID: userID, productID: productID, quantity: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repoCalled := false
			repo := &mockOrderRepository{
				placeOrderFunc: func(ctx context.Context, o *order.Order) error {
					repoCalled = true
					return nil
				},
			}
			svc := order.NewService(repo)

			_, err := svc.PlaceOrder(context.Background(), tt.userID, tt.productID, tt.quantity)

			assert.ErrorIs(t, err, order.ErrInvalidOrder)
			assert.False(t, repoCalled, "validation failure must not reach the repository")
		})
	}
}

func TestOrderService_PlaceOrder_ProductNotFound(t *testing.T) {
	repo := &mockOrderRepository{
		placeOrderFunc: func(ctx context.Context, o *order.Order) error {
			return order.ErrProductNotFound
		},
	}
	svc := order.NewService(repo)

	_, err := svc.PlaceOrder(context.Background(), mustUUID(t), mustUUID(t), 1)
	assert.ErrorIs(t, err, order.ErrProductNotFound)
}

func TestOrderService_PlaceOrder_Scenario(t *testing.T) {
	// Product P1 starts with stock 5. U1 orders 3 and succeeds; U2 then
	// orders 3 and is refused with the remaining count in the message.
	repo := &memStockRepository{stock: 5}
	svc := order.NewService(repo)

	u1 := mustUUID(t)
	u2 := mustUUID(t)
	p1 := mustUUID(t)

	placed, err := svc.PlaceOrder(context.Background(), u1, p1, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, placed.Quantity)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, u1, placed.UserID.UUID)
	assert.Equal(t, p1, placed.ProductID.UUID)
	assert.Equal(t, 2, repo.stock)

	_, err = svc.PlaceOrder(context.Background(), u2, p1, 3)
	require.ErrorIs(t, err, order.ErrInsufficientStock)
	assert.Equal(t, "Insufficient stock. Only 2 items left.", err.Error())
	assert.Equal(t, 2, repo.stock, "a rejected order must not touch stock")
	assert.Len(t, repo.placed, 1)
}

func TestOrderService_PlaceOrder_StockConservation(t *testing.T) {
	const initialStock = 20
	repo := &memStockRepository{stock: initialStock}
	svc := order.NewService(repo)

	userID := mustUUID(t)
	productID := mustUUID(t)

	succeeded := 0
	for _, q := range []int{3, 7, 5, 9, 4, 2} {
		if _, err := svc.PlaceOrder(context.Background(), userID, productID, q); err == nil {
			succeeded += q
		} else {
			assert.ErrorIs(t, err, order.ErrInsufficientStock)
		}
	}

	assert.Equal(t, initialStock-succeeded, repo.stock)
	assert.GreaterOrEqual(t, repo.stock, 0, "stock must never go negative")
}

func TestOrderService_PlaceOrder_ConcurrentLastUnit(t *testing.T) {
	repo := &memStockRepository{stock: 1}
	svc := order.NewService(repo)

	productID := mustUUID(t)
	u1 := mustUUID(t)
	u2 := mustUUID(t)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, userID := range []uuid.UUID{u1, u2} {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), id, productID, 1)
			results <- err
		}(userID)
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, order.ErrInsufficientStock)
			losses++
		}
	}

	assert.Equal(t, 1, wins, "exactly one of two concurrent orders for the last unit may succeed")
	assert.Equal(t, 1, losses)
	assert.Equal(t, 0, repo.stock)
}

func TestOrderService_ChangeStatus(t *testing.T) {
	orderID := mustUUID(t)

	current := func(status order.Status) *order.Order {
		return &order.Order{ID: orderID, Quantity: 1, Status: status}
	}

	tests := []struct {
		name          string
		rawStatus     string
		getByIDFunc   func(ctx context.Context, id uuid.UUID) (*order.Order, error)
		wantErrIs     error
		wantStatus    order.Status
		wantRepoWrite bool
	}{
		{
			name:      "unknown_status_rejected_before_read",
			rawStatus: "not-a-status",
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				t.Fatal("repository must not be read for an unknown status")
				return nil, nil
			},
			wantErrIs: order.ErrInvalidStatus,
		},
		{
			name:      "order_not_found",
			rawStatus: "delivered",
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
			wantErrIs: order.ErrOrderNotFound,
		},
		{
			name:      "forward_transition_succeeds",
			rawStatus: "delivered",
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return current(order.StatusPending), nil
			},
			wantStatus:    order.StatusDelivered,
			wantRepoWrite: true,
		},
		{
			name:      "skip_ahead_rejected",
			rawStatus: "completed",
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return current(order.StatusPending), nil
			},
			wantErrIs: order.ErrInvalidTransition,
		},
		{
			name:      "backward_rejected",
			rawStatus: "pending",
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return current(order.StatusCompleted), nil
			},
			wantErrIs: order.ErrInvalidTransition,
		},
		{
			name:      "same_status_is_noop",
			rawStatus: "pending",
			getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
				return current(order.StatusPending), nil
			},
			wantStatus: order.StatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repoWrote := false
			repo := &mockOrderRepository{
				getByIDFunc: tt.getByIDFunc,
				updateStatusFunc: func(ctx context.Context, id uuid.UUID, from, to order.Status) (time.Time, error) {
					repoWrote = true
					assert.Equal(t, orderID, id)
					return time.Now().UTC(), nil
				},
			}
			svc := order.NewService(repo)

			updated, err := svc.ChangeStatus(context.Background(), orderID, tt.rawStatus)

			if tt.wantErrIs != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErrIs))
				assert.False(t, repoWrote, "a rejected status change must leave the order untouched")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, updated.Status)
			assert.Equal(t, tt.wantRepoWrite, repoWrote)
		})
	}
}

func TestOrderService_ChangeStatus_EchoesPersistedTimestamp(t *testing.T) {
	orderID := mustUUID(t)
	staleTime := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	writtenTime := time.Date(2026, 6, 1, 12, 30, 0, 0, time.UTC)

	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: order.StatusPending, UpdatedAt: staleTime}, nil
		},
		updateStatusFunc: func(ctx context.Context, id uuid.UUID, from, to order.Status) (time.Time, error) {
			return writtenTime, nil
		},
	}
	svc := order.NewService(repo)

	updated, err := svc.ChangeStatus(context.Background(), orderID, "delivered")
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, updated.Status)
	assert.True(t, updated.UpdatedAt.Equal(writtenTime), "returned order must carry the timestamp the repository wrote")
}

func TestOrderService_ChangeStatus_LostRace(t *testing.T) {
	orderID := mustUUID(t)

	repo := &mockOrderRepository{
		getByIDFunc: func(ctx context.Context, id uuid.UUID) (*order.Order, error) {
			return &order.Order{ID: orderID, Status: order.StatusPending}, nil
		},
		updateStatusFunc: func(ctx context.Context, id uuid.UUID, from, to order.Status) (time.Time, error) {
			// Another admin moved the order between the read and the write.
			return time.Time{}, order.ErrInvalidTransition
		},
	}
	svc := order.NewService(repo)

	_, err := svc.ChangeStatus(context.Background(), orderID, "delivered")
	assert.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestOrderService_HistoryByUser_RequiresUser(t *testing.T) {
	repo := &mockOrderRepository{
		historyFunc: func(ctx context.Context, userID uuid.UUID) ([]order.HistoryEntry, error) {
			return []order.HistoryEntry{}, nil
		},
	}
	svc := order.NewService(repo)

	_, err := svc.HistoryByUser(context.Background(), uuid.Nil)
	assert.ErrorIs(t, err, order.ErrInvalidOrder)

	entries, err := svc.HistoryByUser(context.Background(), mustUUID(t))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
