package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ekeyboard/backend/internal/auth"
	"github.com/ekeyboard/backend/internal/product"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	ProductName        string          `json:"productName" validate:"required"`
	ProductPrice       decimal.Decimal `json:"productPrice" validate:"required"`
	ProductDescription string          `json:"productDescription" validate:"required"`
	ProductStock       int             `json:"productStock" validate:"gte=0"`
	ProductImage       []string        `json:"productImage" validate:"required,min=1,dive,url"`
	CategoryID         string          `json:"categoryId" validate:"required,uuid4"`
}

type ProductHandler struct {
	service  product.Service
	validate *validator.Validate
}

func NewProductHandler(service product.Service) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *ProductHandler) RegisterRoutes(router chi.Router, authenticate func(http.Handler) http.Handler) {
	router.Get("/products", h.handleList)
	router.Get("/products/{id}", h.handleGetByID)

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Post("/products/{id}/like", h.handleLike)

		r.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole(auth.RoleAdmin))
			admin.Post("/products", h.handleCreate)
			admin.Put("/products/{id}", h.handleUpdate)
			admin.Delete("/products/{id}", h.handleDelete)
		})
	})
}

func (h *ProductHandler) handleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list products via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondWithSuccess(w, http.StatusOK, "", products)
}

func (h *ProductHandler) handleGetByID(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	found, err := h.service.GetByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Stringer("product_id", productID).Msg("Failed to get product via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to get product")
		return
	}

	respondWithSuccess(w, http.StatusOK, "", found)
}

func (h *ProductHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	requestPayload, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	categoryID, err := uuid.FromString(requestPayload.CategoryID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid categoryId")
		return
	}

	domainProduct := product.Product{
		Name:        requestPayload.ProductName,
		Description: requestPayload.ProductDescription,
		Price:       requestPayload.ProductPrice,
		Stock:       requestPayload.ProductStock,
		CategoryID:  uuid.NullUUID{UUID: categoryID, Valid: true},
		Images:      requestPayload.ProductImage,
	}

	created, err := h.service.Create(r.Context(), &domainProduct)
	if err != nil {
		if errors.Is(err, product.ErrCategoryNotFound) {
			respondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		log.Error().Err(err).Msg("Failed to create product via service")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithSuccess(w, http.StatusCreated, "Product created successfully", created)
}

func (h *ProductHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	requestPayload, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	categoryID, err := uuid.FromString(requestPayload.CategoryID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid categoryId")
		return
	}

	domainProduct := product.Product{
		ID:          productID,
		Name:        requestPayload.ProductName,
		Description: requestPayload.ProductDescription,
		Price:       requestPayload.ProductPrice,
		Stock:       requestPayload.ProductStock,
		CategoryID:  uuid.NullUUID{UUID: categoryID, Valid: true},
		Images:      requestPayload.ProductImage,
	}

	updated, err := h.service.Update(r.Context(), &domainProduct)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		if errors.Is(err, product.ErrCategoryNotFound) {
			respondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		log.Error().Err(err).Stringer("product_id", productID).Msg("Failed to update product via service")
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondWithSuccess(w, http.StatusOK, "Product updated successfully", updated)
}

func (h *ProductHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Stringer("product_id", productID).Msg("Failed to delete product via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	respondWithSuccess(w, http.StatusOK, "Product deleted successfully", nil)
}

func (h *ProductHandler) handleLike(w http.ResponseWriter, r *http.Request) {
	productID, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	liked, err := h.service.Like(r.Context(), productID)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		log.Error().Err(err).Stringer("product_id", productID).Msg("Failed to like product via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to like product")
		return
	}

	respondWithSuccess(w, http.StatusOK, "Product liked", liked)
}

func (h *ProductHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (ProductRequest, bool) {
	var requestPayload ProductRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode product request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return ProductRequest{}, false
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return ProductRequest{}, false
	}

	return requestPayload, true
}

func parseIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("id", idParam).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid id parameter")
		return uuid.Nil, false
	}
	return id, true
}
