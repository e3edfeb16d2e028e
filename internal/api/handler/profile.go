package handler

import (
	"errors"
	"net/http"

	"github.com/breezyday/breezyday/internal/api/middleware"
	"github.com/breezyday/breezyday/internal/api/models"
	"github.com/breezyday/breezyday/internal/api/response"
	"github.com/breezyday/breezyday/internal/auth"
	"github.com/breezyday/breezyday/internal/user"
)

// ProfileHandler handles user profile endpoints.
type ProfileHandler struct {
	userService *user.Service
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userService *user.Service) *ProfileHandler {
	return &ProfileHandler{userService: userService}
}

// GetProfile handles GET /api/profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "user not authenticated")
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		writeProfileError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/profile.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "user not authenticated")
		return
	}

	var input user.ProfileInput
	if err := response.Decode(r, &input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), userID, input)
	if err != nil {
		writeProfileError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.ProfileUpdated{
		Message: "profile updated",
		Profile: profile,
	})
}

func writeProfileError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *user.ValidationError
	switch {
	case errors.As(err, &verr):
		errs := make([]models.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			errs[i] = models.FieldError(f)
		}
		response.BadRequest(w, r, "validation failed", errs)
	case errors.Is(err, auth.ErrUserNotFound):
		response.NotFound(w, r, "user")
	default:
		response.InternalError(w, r, "internal server error")
	}
}
