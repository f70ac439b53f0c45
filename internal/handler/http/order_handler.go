package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ekeyboard/backend/internal/auth"
	"github.com/ekeyboard/backend/internal/order"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type PlaceOrderRequest struct {
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	ProductID string `json:"productId" validate:"required,uuid4"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderHandler struct {
	service  order.Service
	validate *validator.Validate
}

func NewOrderHandler(service order.Service) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *OrderHandler) RegisterRoutes(router chi.Router, authenticate func(http.Handler) http.Handler) {
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/orders", h.handlePlaceOrder)
		r.Get("/orders/history", h.handleHistory)

		r.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole(auth.RoleAdmin))
			admin.Get("/orders", h.handleListAll)
			admin.Patch("/orders/{id}/status", h.handleChangeStatus)
		})
	})
}

func (h *OrderHandler) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "You are not logged in. Please log in.")
		return
	}

	var requestPayload PlaceOrderRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode order request")
		respondWithError(w, http.StatusBadRequest, "All fields are required.")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	productID, err := uuid.FromString(requestPayload.ProductID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid productId")
		return
	}

	placed, err := h.service.PlaceOrder(r.Context(), identity.UserID, productID, requestPayload.Quantity)
	if err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, order.ErrProductNotFound):
			clientMessage = "Product not found."
		case errors.Is(err, order.ErrInsufficientStock):
			// The message carries the remaining count read inside the
			// transaction that refused the decrement.
			clientMessage = err.Error()
		case errors.Is(err, order.ErrInvalidOrder):
			clientMessage = "All fields are required."
		default:
			log.Error().Err(err).Stringer("user_id", identity.UserID).Msg("Failed to place order via service")
			clientMessage = "Failed to place order"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithSuccess(w, http.StatusCreated, "Ordered successfully.", placed)
}

func (h *OrderHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list orders via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to list orders")
		return
	}

	respondWithSuccess(w, http.StatusOK, "", views)
}

func (h *OrderHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "You are not logged in. Please log in.")
		return
	}

	entries, err := h.service.HistoryByUser(r.Context(), identity.UserID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", identity.UserID).Msg("Failed to fetch order history via service")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to fetch order history")
		return
	}

	respondWithSuccess(w, http.StatusOK, "", entries)
}

func (h *OrderHandler) handleChangeStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var requestPayload ChangeStatusRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode status request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	updated, err := h.service.ChangeStatus(r.Context(), orderID, requestPayload.Status)
	if err != nil {
		var clientMessage string
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			clientMessage = "Order not found"
		case errors.Is(err, order.ErrInvalidStatus),
			errors.Is(err, order.ErrInvalidTransition):
			clientMessage = err.Error()
		default:
			log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to change order status via service")
			clientMessage = "Failed to change order status"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithSuccess(w, http.StatusOK, "Order status updated to "+requestPayload.Status, updated)
}
