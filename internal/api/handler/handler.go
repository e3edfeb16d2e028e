// Package handler provides HTTP handlers for the BreezyDay API.
package handler

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/breezyday/breezyday/internal/airquality"
	"github.com/breezyday/breezyday/internal/api/models"
	"github.com/breezyday/breezyday/internal/api/response"
	"github.com/breezyday/breezyday/internal/weather"
	"github.com/breezyday/breezyday/pkg/geo"
)

// coordinateQuery reads lat and lon from the query string. present is false
// when neither is given. Field errors are returned for a half-given pair,
// non-numeric values and out-of-range values.
func coordinateQuery(r *http.Request) (coord geo.Coordinate, present bool, errs []models.FieldError) {
	q := r.URL.Query()
	latStr, lonStr := strings.TrimSpace(q.Get("lat")), strings.TrimSpace(q.Get("lon"))
	if latStr == "" && lonStr == "" {
		return geo.Coordinate{}, false, nil
	}

	lat, errs := parseDegrees("lat", latStr, 90, errs)
	lon, errs := parseDegrees("lon", lonStr, 180, errs)
	if len(errs) > 0 {
		return geo.Coordinate{}, true, errs
	}
	return geo.Coordinate{Lat: lat, Lon: lon}, true, nil
}

func parseDegrees(field, raw string, limit float64, errs []models.FieldError) (float64, []models.FieldError) {
	if raw == "" {
		return 0, append(errs, models.FieldError{
			Field:   field,
			Message: field + " is required when a coordinate is given",
			Code:    "REQUIRED",
		})
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, append(errs, models.FieldError{
			Field:   field,
			Message: field + " must be a number",
			Code:    "INVALID_FORMAT",
		})
	}
	if v < -limit || v > limit {
		return 0, append(errs, models.FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be between %g and %g", field, -limit, limit),
			Code:    "OUT_OF_RANGE",
		})
	}
	return v, errs
}

// writeAirQualityError maps air quality service errors to problems.
func writeAirQualityError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, airquality.ErrMissingAPIKey):
		response.ServiceUnavailable(w, r, "AQI API key not configured")
	case errors.Is(err, airquality.ErrNoStations), errors.Is(err, airquality.ErrNoCoordinates):
		response.ServiceUnavailable(w, r, "no air quality stations available")
	case errors.Is(err, airquality.ErrProviderUnavailable):
		response.BadGateway(w, r, "failed to fetch AQI data")
	default:
		response.InternalError(w, r, "internal server error")
	}
}

// writeWeatherError maps weather service errors to problems.
func writeWeatherError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, weather.ErrMissingAPIKey):
		response.ServiceUnavailable(w, r, "weather API key not configured")
	case errors.Is(err, weather.ErrInvalidLocation):
		response.BadRequest(w, r, "invalid location name", []models.FieldError{{
			Field:   "locationName",
			Message: "location name is too long",
			Code:    "INVALID_VALUE",
		}})
	case errors.Is(err, weather.ErrInvalidCoordinates):
		response.BadRequest(w, r, "invalid coordinates", nil)
	case errors.Is(err, weather.ErrLocationNotFound):
		response.NotFound(w, r, "location not found in forecast")
	case errors.Is(err, weather.ErrNoForecastPoints):
		response.ServiceUnavailable(w, r, "no forecast points available")
	case errors.Is(err, weather.ErrProviderUnavailable):
		response.BadGateway(w, r, "failed to fetch weather data")
	default:
		response.InternalError(w, r, "internal server error")
	}
}
