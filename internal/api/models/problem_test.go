package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breezyday/breezyday/internal/api/models"
)

func TestForStatus(t *testing.T) {
	p := models.ForStatus(http.StatusUnsupportedMediaType, "req_test123", "use application/json")
	assert.Equal(t, models.ProblemTypeUnsupportedMedia, p.Type)
	assert.Equal(t, "Unsupported media type", p.Title)
	assert.Equal(t, "use application/json", p.Detail)
	assert.Equal(t, "req_test123", p.TraceID)

	teapot := models.ForStatus(http.StatusTeapot, "req_1", "")
	assert.Equal(t, "about:blank", teapot.Type)
	assert.Equal(t, "I'm a teapot", teapot.Title)
	assert.Equal(t, http.StatusTeapot, teapot.Status)
}

func TestProblem_Constructors(t *testing.T) {
	tests := []struct {
		name       string
		problem    *models.Problem
		wantType   string
		wantTitle  string
		wantStatus int
	}{
		{"bad request", models.NewBadRequest("req_1", "d", nil), models.ProblemTypeValidation, "Validation error", http.StatusBadRequest},
		{"unauthorized", models.NewUnauthorized("req_1", "d"), models.ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized},
		{"not found", models.NewNotFound("req_1", "d"), models.ProblemTypeNotFound, "Not found", http.StatusNotFound},
		{"conflict", models.NewConflict("req_1", "d"), models.ProblemTypeConflict, "Conflict", http.StatusConflict},
		{"too many requests", models.NewTooManyRequests("req_1", "d"), models.ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests},
		{"internal", models.NewInternalError("req_1", "d"), models.ProblemTypeInternal, "Internal server error", http.StatusInternalServerError},
		{"bad gateway", models.NewBadGateway("req_1", "d"), models.ProblemTypeBadGateway, "Bad gateway", http.StatusBadGateway},
		{"unavailable", models.NewServiceUnavailable("req_1", "d"), models.ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.problem.Type)
			assert.Equal(t, tt.wantTitle, tt.problem.Title)
			assert.Equal(t, tt.wantStatus, tt.problem.Status)
			assert.Equal(t, "d", tt.problem.Detail)
			assert.Equal(t, "req_1", tt.problem.TraceID)
		})
	}
}

func TestProblem_Write(t *testing.T) {
	p := models.NewBadRequest("req_test123", "invalid input", []models.FieldError{
		{Field: "email", Message: "email is required", Code: "REQUIRED"},
	})
	p.Instance = "/api/auth/register"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var result models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "/api/auth/register", result.Instance)
	assert.Equal(t, "req_test123", result.TraceID)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "email", result.Errors[0].Field)
}

func TestTimestamp_JSON(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2025-06-15T12:00:00Z"`), &ts))
	assert.Equal(t, 2025, ts.Time().Year())

	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-15T12:00:00Z"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`12`), &ts))
	assert.NoError(t, json.Unmarshal([]byte(`null`), &ts))
}
