package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ekeyboard/backend/internal/auth"
	"github.com/ekeyboard/backend/internal/category"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

type CategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type CategoryHandler struct {
	service  category.Service
	validate *validator.Validate
}

func NewCategoryHandler(service category.Service) *CategoryHandler {
	return &CategoryHandler{
		service:  service,
		validate: validator.New(),
	}
}

// Category management is an admin concern end to end, reads included;
// customers only ever see categories through the product payloads.
func (h *CategoryHandler) RegisterRoutes(router chi.Router, authenticate func(http.Handler) http.Handler) {
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(auth.RequireRole(auth.RoleAdmin))
		r.Get("/categories", h.handleList)
		r.Get("/categories/{id}", h.handleGetByID)
		r.Post("/categories", h.handleCreate)
		r.Delete("/categories/{id}", h.handleDelete)
	})
}

func (h *CategoryHandler) handleList(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	respondWithSuccess(w, http.StatusOK, "", categories)
}

func (h *CategoryHandler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetByID(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, category.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		log.Error().Err(err).Stringer("category_id", categoryID).Msg("Failed to get category via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to get category")
		return
	}

	respondWithSuccess(w, http.StatusOK, "", found)
}

func (h *CategoryHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var requestPayload CategoryRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode category request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	created, err := h.service.Create(r.Context(), &category.Category{Name: requestPayload.Name})
	if err != nil {
		if errors.Is(err, category.ErrNameTaken) {
			respondWithError(w, http.StatusConflict, "Category name already exists")
			return
		}
		log.Error().Err(err).Str("name", requestPayload.Name).Msg("Failed to create category via service")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithSuccess(w, http.StatusCreated, "Category created successfully", created)
}

func (h *CategoryHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), categoryID); err != nil {
		if errors.Is(err, category.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		log.Error().Err(err).Stringer("category_id", categoryID).Msg("Failed to delete category via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	respondWithSuccess(w, http.StatusOK, "Category deleted successfully", nil)
}
