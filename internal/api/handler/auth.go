package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/api/middleware"
	"github.com/breezyday/breezyday/internal/api/models"
	"github.com/breezyday/breezyday/internal/api/response"
	"github.com/breezyday/breezyday/internal/auth"
)

// AuthHandler handles account and session endpoints.
type AuthHandler struct {
	authService *auth.Service
	logger      zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func authFieldErrors(errs []auth.FieldError) []models.FieldError {
	out := make([]models.FieldError, len(errs))
	for i, e := range errs {
		out[i] = models.FieldError(e)
	}
	return out
}

// decodeCredentials reads and validates a register or login body. It writes
// the error response and returns false on failure.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (auth.CredentialsRequest, bool) {
	var req auth.CredentialsRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return req, false
	}
	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "missing email or password", authFieldErrors(errs))
		return req, false
	}
	return req, true
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			response.Conflict(w, r, "email already registered")
		case errors.Is(err, auth.ErrInvalidCredentials):
			response.BadRequest(w, r, "missing email or password", nil)
		default:
			h.logger.Error().Err(err).Msg("registration failed")
			response.InternalError(w, r, "registration failed")
		}
		return
	}

	response.Created(w, r, "", models.Registered{
		Message: "registered",
		User:    models.NewAccount(user),
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	tokens, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			response.Unauthorized(w, r, "invalid email or password")
			return
		}
		h.logger.Error().Err(err).Msg("login failed")
		response.InternalError(w, r, "login failed")
		return
	}

	response.JSON(w, r, http.StatusOK, tokens)
}

// RefreshToken handles POST /api/auth/refresh.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req auth.RefreshTokenRequest
	if err := response.Decode(r, &req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		response.BadRequest(w, r, "validation error", authFieldErrors(errs))
		return
	}

	tokens, err := h.authService.RefreshAccessToken(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrRefreshTokenExpired):
			response.Unauthorized(w, r, "refresh token has expired")
		case errors.Is(err, auth.ErrInvalidRefreshToken), errors.Is(err, auth.ErrUserNotFound):
			response.Unauthorized(w, r, "invalid refresh token")
		default:
			h.logger.Error().Err(err).Msg("token refresh failed")
			response.InternalError(w, r, "token refresh failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, tokens)
}

// Logout handles POST /api/auth/logout. With a refresh token in the body only
// that session is revoked; with {"all": true} every session of the user is.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req struct {
		RefreshToken string `json:"refreshToken"`
		All          bool   `json:"all"`
	}
	if err := response.Decode(r, &req); err != nil && !errors.Is(err, response.ErrEmptyBody) {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var err error
	switch {
	case req.All:
		err = h.authService.LogoutAll(r.Context(), userID)
	case req.RefreshToken != "":
		err = h.authService.Logout(r.Context(), userID, req.RefreshToken)
	default:
		response.BadRequest(w, r, "refreshToken is required", []models.FieldError{{
			Field:   "refreshToken",
			Message: "refresh token is required",
			Code:    "REQUIRED",
		}})
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("logout failed")
		response.InternalError(w, r, "logout failed")
		return
	}

	response.NoContent(w, r)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			response.NotFound(w, r, "user not found")
			return
		}
		response.InternalError(w, r, "internal server error")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewAccount(user))
}
