package http

import (
	"net/http"
	"strconv"

	"github.com/ekeyboard/backend/internal/auth"
	"github.com/ekeyboard/backend/internal/dashboard"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type DashboardHandler struct {
	service dashboard.Service
}

func NewDashboardHandler(service dashboard.Service) *DashboardHandler {
	return &DashboardHandler{service: service}
}

func (h *DashboardHandler) RegisterRoutes(router chi.Router, authenticate func(http.Handler) http.Handler) {
	router.Group(func(r chi.Router) {
		r.Use(authenticate, auth.RequireRole(auth.RoleAdmin))
		r.Get("/dashboard/top-selling", h.handleTopSelling)
		r.Get("/dashboard/recent-orders", h.handleRecentOrders)
		r.Get("/dashboard/summary", h.handleSummary)
	})
}

func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func (h *DashboardHandler) handleTopSelling(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.TopSelling(r.Context(), limitParam(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch top-selling products via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch top selling products")
		return
	}

	respondWithSuccess(w, http.StatusOK, "Top selling products fetched successfully", products)
}

func (h *DashboardHandler) handleRecentOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.RecentOrders(r.Context(), limitParam(r))
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch recent orders via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch recent orders")
		return
	}

	respondWithSuccess(w, http.StatusOK, "Recent orders fetched successfully", orders)
}

func (h *DashboardHandler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch summary via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch summary")
		return
	}

	respondWithSuccess(w, http.StatusOK, "Summary fetched successfully", summary)
}
