package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ekeyboard/backend/internal/category"
	"github.com/ekeyboard/backend/internal/order"
	"github.com/ekeyboard/backend/internal/product"
	"github.com/ekeyboard/backend/internal/user"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// envelope is the shape of every response: a success flag, a human-readable
// message, and an optional payload.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Payload interface{} `json:"payload,omitempty"`
}

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"message":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondWithSuccess(w http.ResponseWriter, code int, message string, payload interface{}) {
	respondWithJSON(w, code, envelope{Success: true, Message: message, Payload: payload})
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, envelope{Success: false, Message: message})
}

func respondWithValidationError(w http.ResponseWriter, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		respondWithJSON(w, http.StatusBadRequest, envelope{
			Success: false,
			Message: "Validation failed",
			Payload: ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			},
		})
		return
	}
	log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
	respondWithError(w, http.StatusInternalServerError, "Internal validation error")
}

func formatValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = "failed on '" + fieldErr.Tag() + "' validation"
	}
	return details
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, product.ErrCategoryNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidOrder),
		errors.Is(err, order.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, category.ErrNameTaken),
		errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, user.ErrPhoneExists):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
