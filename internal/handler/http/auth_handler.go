package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ekeyboard/backend/internal/auth"
	"github.com/ekeyboard/backend/internal/user"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type RegisterRequest struct {
	FullName string `json:"full_name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,min=5"`
	Address  string `json:"address" validate:"required"`
	Age      int    `json:"age" validate:"required,gte=13"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token    string    `json:"token"`
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Age       int       `json:"age"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthHandler struct {
	service  user.Service
	tokens   *auth.TokenManager
	validate *validator.Validate
}

func NewAuthHandler(service user.Service, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		service:  service,
		tokens:   tokens,
		validate: validator.New(),
	}
}

func (h *AuthHandler) RegisterRoutes(router chi.Router, authenticate func(http.Handler) http.Handler) {
	router.Post("/auth/register", h.handleRegister)
	router.Post("/auth/login", h.handleLogin)
	router.With(authenticate).Get("/auth/me", h.handleMe)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var requestPayload RegisterRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode register request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	domainUser := user.User{
		FullName: requestPayload.FullName,
		Email:    requestPayload.Email,
		Phone:    requestPayload.Phone,
		Address:  requestPayload.Address,
		Age:      requestPayload.Age,
		Username: requestPayload.Username,
	}

	created, err := h.service.Register(r.Context(), &domainUser, requestPayload.Password)
	if err != nil {
		log.Error().Err(err).Msg("Failed to register user via service")

		var clientMessage string
		switch {
		case errors.Is(err, user.ErrUsernameTaken):
			clientMessage = "Username already taken. Please choose a different username"
		case errors.Is(err, user.ErrEmailExists):
			clientMessage = "Email already taken. Please choose a different email"
		case errors.Is(err, user.ErrPhoneExists):
			clientMessage = "Phone already taken. Please choose a different phone"
		default:
			clientMessage = "Failed to register user"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	token, err := h.tokens.Issue(created.ID, created.Role)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", created.ID).Msg("Failed to issue token after registration")
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondWithSuccess(w, http.StatusCreated, "Registered successfully.", AuthResponse{
		Token:    token,
		UserID:   created.ID,
		Username: created.Username,
	})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var requestPayload LoginRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&requestPayload); err != nil {
		log.Error().Err(err).Msg("Failed to decode login request")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(requestPayload); err != nil {
		respondWithValidationError(w, err)
		return
	}

	authenticated, err := h.service.Authenticate(r.Context(), requestPayload.Username, requestPayload.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid username or password")
			return
		}
		log.Error().Err(err).Msg("Failed to authenticate user via service")
		respondWithError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	token, err := h.tokens.Issue(authenticated.ID, authenticated.Role)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", authenticated.ID).Msg("Failed to issue token on login")
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	respondWithSuccess(w, http.StatusOK, "Logged in successfully.", AuthResponse{
		Token:    token,
		UserID:   authenticated.ID,
		Username: authenticated.Username,
	})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "You are not logged in. Please log in.")
		return
	}

	found, err := h.service.GetByID(r.Context(), identity.UserID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", identity.UserID).Msg("Failed to get authenticated user")
		respondWithError(w, mapErrorToStatusCode(err), "Failed to get user")
		return
	}

	respondWithSuccess(w, http.StatusOK, "", ProfileResponse{
		ID:        found.ID,
		FullName:  found.FullName,
		Email:     found.Email,
		Phone:     found.Phone,
		Address:   found.Address,
		Age:       found.Age,
		Username:  found.Username,
		Role:      found.Role,
		CreatedAt: found.CreatedAt,
	})
}
