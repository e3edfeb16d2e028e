package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/breezyday/breezyday/internal/airquality"
	"github.com/breezyday/breezyday/internal/api/models"
	"github.com/breezyday/breezyday/internal/api/response"
	"github.com/breezyday/breezyday/pkg/geo"
)

// AQIHandler handles the air quality endpoints.
type AQIHandler struct {
	service *airquality.Service
}

// NewAQIHandler creates a new AQIHandler.
func NewAQIHandler(service *airquality.Service) *AQIHandler {
	return &AQIHandler{service: service}
}

// Catalog handles GET /api/aqi - the normalized station feed.
func (h *AQIHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.GetCatalog(r.Context())
	if err != nil {
		writeAirQualityError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewCatalog(catalog))
}

// Stations handles GET /api/aqi/stations?q=&level=&sort=&order=.
func (h *AQIHandler) Stations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var errs []models.FieldError
	sortKey, err := airquality.ParseSortKey(q.Get("sort"))
	if errors.Is(err, airquality.ErrInvalidSort) {
		errs = append(errs, models.FieldError{
			Field:   "sort",
			Message: "sort must be one of aqi, pm25, pm10, site",
			Code:    "INVALID_VALUE",
		})
	}

	level := airquality.CoarseCategory(strings.ToLower(strings.TrimSpace(q.Get("level"))))
	switch level {
	case "", airquality.CoarseGood, airquality.CoarseModerate, airquality.CoarseUnhealthy, airquality.CoarseUnknown:
	default:
		errs = append(errs, models.FieldError{
			Field:   "level",
			Message: "level must be one of good, moderate, unhealthy, unknown",
			Code:    "INVALID_VALUE",
		})
	}

	desc := false
	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		errs = append(errs, models.FieldError{
			Field:   "order",
			Message: "order must be asc or desc",
			Code:    "INVALID_VALUE",
		})
	}

	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid query parameters", errs)
		return
	}

	results, err := h.service.ListStations(r.Context(), airquality.StationQuery{
		Keyword: q.Get("q"),
		Level:   level,
		Sort:    sortKey,
		Desc:    desc,
	})
	if err != nil {
		writeAirQualityError(w, r, err)
		return
	}

	stations := make([]models.StationReading, len(results))
	for i, res := range results {
		stations[i] = models.NewStationReading(res)
	}
	response.JSON(w, r, http.StatusOK, models.StationList{Count: len(stations), Stations: stations})
}

// Nearest handles GET /api/aqi/nearest?lat=&lon=. Without a coordinate the
// default station is returned with fallback set.
func (h *AQIHandler) Nearest(w http.ResponseWriter, r *http.Request) {
	coord, present, errs := coordinateQuery(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", errs)
		return
	}

	result, fallback, err := nearestOrDefault(r, h.service, coord, present)
	if err != nil {
		writeAirQualityError(w, r, err)
		return
	}

	response.JSON(w, r, http.StatusOK, models.NearestStation{
		StationReading: models.NewStationReading(result),
		Fallback:       fallback,
	})
}

// Classify handles GET /api/aqi/classify?value=. Any input is accepted; a
// non-numeric value classifies as unknown.
func (h *AQIHandler) Classify(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("value")

	var input any = raw
	if raw == "" {
		input = nil
	}
	response.JSON(w, r, http.StatusOK, models.ClassifyResult{
		Input:             raw,
		AQIClassification: models.NewAQIClassification(input),
	})
}

func nearestOrDefault(r *http.Request, service *airquality.Service, coord geo.Coordinate, present bool) (airquality.StationResult, bool, error) {
	if present {
		result, err := service.Nearest(r.Context(), coord)
		if !errors.Is(err, airquality.ErrNoCoordinates) {
			return result, false, err
		}
	}
	result, err := service.DefaultStation(r.Context())
	return result, true, err
}

// limitQuery parses a positive limit parameter, falling back to def.
func limitQuery(r *http.Request, def, limit int) (int, *models.FieldError) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > limit {
		return 0, &models.FieldError{
			Field:   "limit",
			Message: "limit must be between 1 and " + strconv.Itoa(limit),
			Code:    "OUT_OF_RANGE",
		}
	}
	return n, nil
}
