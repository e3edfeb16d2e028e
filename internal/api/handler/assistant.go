package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/api/middleware"
	"github.com/breezyday/breezyday/internal/api/models"
	"github.com/breezyday/breezyday/internal/api/response"
	"github.com/breezyday/breezyday/internal/assistant"
)

// APIKeyHeader carries a caller-supplied generative model key.
const APIKeyHeader = "X-Gemini-Api-Key"

// AssistantHandler handles the generated advice endpoints.
type AssistantHandler struct {
	service *assistant.Service
	logger  zerolog.Logger
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(service *assistant.Service, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{service: service, logger: logger}
}

// AllergyTips handles POST /api/ai/allergy-tips. The key may be sent in the
// body or the X-Gemini-Api-Key header; the body wins.
func (h *AssistantHandler) AllergyTips(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, r, "user not authenticated")
		return
	}

	var req models.AllergyTipsRequest
	if err := response.Decode(r, &req); err != nil && !errors.Is(err, response.ErrEmptyBody) {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	key := req.GeminiAPIKey
	if key == "" {
		key = r.Header.Get(APIKeyHeader)
	}

	tips, err := h.service.AllergyTips(r.Context(), userID, key, req.Env)
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrMissingAPIKey):
			response.ServiceUnavailable(w, r, "Gemini API key not configured")
		case errors.Is(err, assistant.ErrUnavailable):
			response.BadGateway(w, r, "failed to generate allergy tips")
		default:
			h.logger.Error().Err(err).Str("user_id", userID).Msg("allergy tips failed")
			response.InternalError(w, r, "internal server error")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.AllergyTips{Success: true, Tips: tips.Tips})
}
