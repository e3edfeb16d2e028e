package handler

import (
	"net/http"

	"github.com/breezyday/breezyday/internal/api/models"
	"github.com/breezyday/breezyday/internal/api/response"
	"github.com/breezyday/breezyday/internal/weather"
)

// WeatherHandler handles the forecast endpoints.
type WeatherHandler struct {
	service *weather.Service
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(service *weather.Service) *WeatherHandler {
	return &WeatherHandler{service: service}
}

// TodayRange handles GET /api/weather/today-range?locationName=.
func (h *WeatherHandler) TodayRange(w http.ResponseWriter, r *http.Request) {
	rng, err := h.service.TodayRange(r.Context(), r.URL.Query().Get("locationName"))
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewTodayRange(rng))
}

// Nearest handles GET /api/weather/nearest?lat=&lon=.
func (h *WeatherHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	coord, present, errs := coordinateQuery(r)
	if !present {
		errs = append(errs,
			models.FieldError{Field: "lat", Message: "lat is required", Code: "REQUIRED"},
			models.FieldError{Field: "lon", Message: "lon is required", Code: "REQUIRED"},
		)
	}
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", errs)
		return
	}

	summary, err := h.service.NearestForecast(r.Context(), coord)
	if err != nil {
		writeWeatherError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewNearestForecast(summary))
}
