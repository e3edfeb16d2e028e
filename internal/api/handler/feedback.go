package handler

import (
	"errors"
	"net/http"

	"github.com/breezyday/breezyday/internal/api/middleware"
	"github.com/breezyday/breezyday/internal/api/models"
	"github.com/breezyday/breezyday/internal/api/response"
	"github.com/breezyday/breezyday/internal/feedback"
)

// FeedbackHandler handles the daily feedback endpoints.
type FeedbackHandler struct {
	service *feedback.Service
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(service *feedback.Service) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// Submit handles POST /api/feedback.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "user not authenticated")
		return
	}

	var input feedback.Input
	if err := response.Decode(r, &input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	entry, err := h.service.Submit(r.Context(), userID, input)
	if err != nil {
		var verr *feedback.ValidationError
		if errors.As(err, &verr) {
			errs := make([]models.FieldError, len(verr.Fields))
			for i, f := range verr.Fields {
				errs[i] = models.FieldError(f)
			}
			response.BadRequest(w, r, "validation failed", errs)
			return
		}
		response.InternalError(w, r, "internal server error")
		return
	}

	response.Created(w, r, "/api/feedback/"+entry.ID, models.FeedbackCreated{
		Success: true,
		ID:      entry.ID,
	})
}

// List handles GET /api/feedback?limit=, newest first.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "user not authenticated")
		return
	}

	limit, ferr := limitQuery(r, feedback.DefaultListCap, feedback.DefaultListCap)
	if ferr != nil {
		response.BadRequest(w, r, "invalid query parameters", []models.FieldError{*ferr})
		return
	}

	entries, err := h.service.List(r.Context(), userID, limit)
	if err != nil {
		response.InternalError(w, r, "internal server error")
		return
	}

	response.JSON(w, r, http.StatusOK, models.Envelope{Success: true, Data: entries})
}

// Summary handles GET /api/feedback/summary.
func (h *FeedbackHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "user not authenticated")
		return
	}

	summary, err := h.service.Summary(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "internal server error")
		return
	}

	response.JSON(w, r, http.StatusOK, models.Envelope{Success: true, Data: summary})
}
