package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekeyboard/backend/internal/auth"
	handler "github.com/ekeyboard/backend/internal/handler/http"
	"github.com/ekeyboard/backend/internal/order"
)

type mockOrderService struct {
	placeOrderFunc   func(ctx context.Context, userID, productID uuid.UUID, quantity int) (*order.Order, error)
	changeStatusFunc func(ctx context.Context, orderID uuid.UUID, rawStatus string) (*order.Order, error)
	listAllFunc      func(ctx context.Context) ([]order.AdminView, error)
	historyFunc      func(ctx context.Context, userID uuid.UUID) ([]order.HistoryEntry, error)
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, userID, productID uuid.UUID, quantity int) (*order.Order, error) {
	return m.placeOrderFunc(ctx, userID, productID, quantity)
}

func (m *mockOrderService) ChangeStatus(ctx context.Context, orderID uuid.UUID, rawStatus string) (*order.Order, error) {
	return m.changeStatusFunc(ctx, orderID, rawStatus)
}

func (m *mockOrderService) ListAll(ctx context.Context) ([]order.AdminView, error) {
	return m.listAllFunc(ctx)
}

func (m *mockOrderService) HistoryByUser(ctx context.Context, userID uuid.UUID) ([]order.HistoryEntry, error) {
	return m.historyFunc(ctx, userID)
}

// apiResponse mirrors the wire envelope every endpoint answers with.
type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Payload json.RawMessage `json:"payload"`
}

func decodeResponse(t *testing.T, body *bytes.Buffer) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(body.Bytes(), &resp))
	return resp
}

// newOrderRouter mounts the handler exactly as the real server does,
// token middleware and role gate included.
func newOrderRouter(t *testing.T, svc order.Service) (*chi.Mux, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	router := chi.NewRouter()
	handler.NewOrderHandler(svc).RegisterRoutes(router, tokens.Authenticate)
	return router, tokens
}

func bearerFor(t *testing.T, tokens *auth.TokenManager, userID uuid.UUID, role string) string {
	t.Helper()
	token, err := tokens.Issue(userID, role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestOrderHandler_PlaceOrder(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())
	productID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name           string
		body           string
		withToken      bool
		placeOrder     func(ctx context.Context, userID, productID uuid.UUID, quantity int) (*order.Order, error)
		expectedStatus int
		expectedMsg    string
		expectSuccess  bool
	}{
		{
			name:      "success",
			body:      `{"quantity": 3, "productId": "` + productID.String() + `"}`,
			withToken: true,
			placeOrder: func(ctx context.Context, uid, pid uuid.UUID, quantity int) (*order.Order, error) {
				assert.Equal(t, userID, uid, "handler must pass the token's user id to the service")
				assert.Equal(t, productID, pid)
				assert.Equal(t, 3, quantity)
				return &order.Order{
					ID:        orderID,
					UserID:    uuid.NullUUID{UUID: uid, Valid: true},
					ProductID: uuid.NullUUID{UUID: pid, Valid: true},
					Quantity:  quantity,
					Status:    order.StatusPending,
				}, nil
			},
			expectedStatus: http.StatusCreated,
			expectedMsg:    "Ordered successfully.",
			expectSuccess:  true,
		},
		{
			name:      "insufficient_stock",
			body:      `{"quantity": 3, "productId": "` + productID.String() + `"}`,
			withToken: true,
			placeOrder: func(ctx context.Context, uid, pid uuid.UUID, quantity int) (*order.Order, error) {
				return nil, &order.InsufficientStockError{Remaining: 2}
			},
			expectedStatus: http.StatusConflict,
			expectedMsg:    "Insufficient stock. Only 2 items left.",
		},
		{
			name:      "product_not_found",
			body:      `{"quantity": 1, "productId": "` + productID.String() + `"}`,
			withToken: true,
			placeOrder: func(ctx context.Context, uid, pid uuid.UUID, quantity int) (*order.Order, error) {
				return nil, order.ErrProductNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedMsg:    "Product not found.",
		},
		{
			name:           "invalid_json",
			body:           `{invalid json}`,
			withToken:      true,
			placeOrder:     nil,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "All fields are required.",
		},
		{
			name:           "missing_quantity",
			body:           `{"productId": "` + productID.String() + `"}`,
			withToken:      true,
			placeOrder:     nil,
			expectedStatus: http.StatusBadRequest,
			expectedMsg:    "Validation failed",
		},
		{
			name:           "no_token",
			body:           `{"quantity": 1, "productId": "` + productID.String() + `"}`,
			withToken:      false,
			placeOrder:     nil,
			expectedStatus: http.StatusUnauthorized,
			expectedMsg:    "You are not logged in. Please log in.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &mockOrderService{placeOrderFunc: tt.placeOrder}
			router, tokens := newOrderRouter(t, mockSvc)

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tt.body))
			if tt.withToken {
				req.Header.Set("Authorization", bearerFor(t, tokens, userID, auth.RoleUser))
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			resp := decodeResponse(t, w.Body)
			assert.Equal(t, tt.expectSuccess, resp.Success)
			assert.Equal(t, tt.expectedMsg, resp.Message)
			if tt.expectSuccess {
				assert.NotEmpty(t, resp.Payload)
			}
		})
	}
}

func TestOrderHandler_ListAll_AdminOnly(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	mockSvc := &mockOrderService{
		listAllFunc: func(ctx context.Context) ([]order.AdminView, error) {
			return []order.AdminView{}, nil
		},
	}
	router, tokens := newOrderRouter(t, mockSvc)

	t.Run("user_role_forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", bearerFor(t, tokens, userID, auth.RoleUser))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		resp := decodeResponse(t, w.Body)
		assert.False(t, resp.Success)
	})

	t.Run("admin_allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/orders", nil)
		req.Header.Set("Authorization", bearerFor(t, tokens, userID, auth.RoleAdmin))
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestOrderHandler_ChangeStatus(t *testing.T) {
	adminID := uuid.Must(uuid.NewV4())
	orderID := uuid.Must(uuid.NewV4())

	tests := []struct {
		name           string
		url            string
		body           string
		role           string
		changeStatus   func(ctx context.Context, id uuid.UUID, rawStatus string) (*order.Order, error)
		expectedStatus int
	}{
		{
			name: "success",
			url:  "/orders/" + orderID.String() + "/status",
			body: `{"status": "delivered"}`,
			role: auth.RoleAdmin,
			changeStatus: func(ctx context.Context, id uuid.UUID, rawStatus string) (*order.Order, error) {
				assert.Equal(t, orderID, id)
				assert.Equal(t, "delivered", rawStatus)
				return &order.Order{ID: id, Status: order.StatusDelivered}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unknown_status",
			url:  "/orders/" + orderID.String() + "/status",
			body: `{"status": "not-a-status"}`,
			role: auth.RoleAdmin,
			changeStatus: func(ctx context.Context, id uuid.UUID, rawStatus string) (*order.Order, error) {
				return nil, order.ErrInvalidStatus
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "order_not_found",
			url:  "/orders/" + orderID.String() + "/status",
			body: `{"status": "delivered"}`,
			role: auth.RoleAdmin,
			changeStatus: func(ctx context.Context, id uuid.UUID, rawStatus string) (*order.Order, error) {
				return nil, order.ErrOrderNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "illegal_transition",
			url:  "/orders/" + orderID.String() + "/status",
			body: `{"status": "completed"}`,
			role: auth.RoleAdmin,
			changeStatus: func(ctx context.Context, id uuid.UUID, rawStatus string) (*order.Order, error) {
				return nil, order.ErrInvalidTransition
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "bad_id_param",
			url:            "/orders/not-a-uuid/status",
			body:           `{"status": "delivered"}`,
			role:           auth.RoleAdmin,
			changeStatus:   nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "user_role_forbidden",
			url:            "/orders/" + orderID.String() + "/status",
			body:           `{"status": "delivered"}`,
			role:           auth.RoleUser,
			changeStatus:   nil,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := &mockOrderService{changeStatusFunc: tt.changeStatus}
			router, tokens := newOrderRouter(t, mockSvc)

			req := httptest.NewRequest(http.MethodPatch, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Authorization", bearerFor(t, tokens, adminID, tt.role))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_History(t *testing.T) {
	userID := uuid.Must(uuid.NewV4())

	mockSvc := &mockOrderService{
		historyFunc: func(ctx context.Context, uid uuid.UUID) ([]order.HistoryEntry, error) {
			assert.Equal(t, userID, uid)
			return []order.HistoryEntry{
				{OrderID: uuid.Must(uuid.NewV4()), ProductName: "Test Keyboard", Quantity: 2, Status: order.StatusPending},
			}, nil
		},
	}
	router, tokens := newOrderRouter(t, mockSvc)

	req := httptest.NewRequest(http.MethodGet, "/orders/history", nil)
	req.Header.Set("Authorization", bearerFor(t, tokens, userID, auth.RoleUser))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w.Body)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Payload)
}
