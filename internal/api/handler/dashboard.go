package handler

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/breezyday/breezyday/internal/airquality"
	"github.com/breezyday/breezyday/internal/api/models"
	"github.com/breezyday/breezyday/internal/api/response"
	"github.com/breezyday/breezyday/internal/locate"
	"github.com/breezyday/breezyday/internal/weather"
)

// DashboardHandler serves the district lookup and the aggregated home view.
type DashboardHandler struct {
	airQuality *airquality.Service
	weather    *weather.Service
	logger     zerolog.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(aq *airquality.Service, wx *weather.Service, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{airQuality: aq, weather: wx, logger: logger}
}

// Locate handles GET /api/locate?lat=&lon=. Without a usable coordinate the
// default district is returned with fallback set.
func (h *DashboardHandler) Locate(w http.ResponseWriter, r *http.Request) {
	coord, present, errs := coordinateQuery(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", errs)
		return
	}

	match := locate.Match{Town: locate.Default(), Fallback: true}
	if present {
		match = locate.Locate(coord)
	}
	response.JSON(w, r, http.StatusOK, models.NewDistrict(match))
}

// Dashboard handles GET /api/dashboard?lat=&lon=. The station, county range
// and township forecast are fetched concurrently; a failing section is left
// out and listed in unavailable rather than failing the whole response.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	coord, present, errs := coordinateQuery(r)
	if len(errs) > 0 {
		response.BadRequest(w, r, "invalid coordinates", errs)
		return
	}

	match := locate.Match{Town: locate.Default(), Fallback: true}
	if present {
		match = locate.Locate(coord)
	}

	dash := models.Dashboard{District: models.NewDistrict(match)}

	var (
		wg          sync.WaitGroup
		mu          sync.Mutex
		unavailable []string
	)
	fail := func(section string, err error) {
		h.logger.Warn().Err(err).Str("section", section).Msg("dashboard section unavailable")
		mu.Lock()
		unavailable = append(unavailable, section)
		mu.Unlock()
	}

	if h.airQuality != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, fallback, err := nearestOrDefault(r, h.airQuality, coord, present)
			if err != nil {
				fail("station", err)
				return
			}
			dash.Station = &models.NearestStation{
				StationReading: models.NewStationReading(result),
				Fallback:       fallback,
			}
		}()
	}

	if h.weather != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rng, err := h.weather.TodayRange(r.Context(), match.Town.City)
			if err != nil {
				fail("todayRange", err)
				return
			}
			tr := models.NewTodayRange(rng)
			dash.TodayRange = &tr
		}()

		if present {
			wg.Add(1)
			go func() {
				defer wg.Done()
				summary, err := h.weather.NearestForecast(r.Context(), coord)
				if err != nil {
					fail("forecast", err)
					return
				}
				f := models.NewNearestForecast(summary)
				dash.Forecast = &f
			}()
		}
	}

	wg.Wait()
	dash.Unavailable = sortedSections(unavailable)

	response.JSON(w, r, http.StatusOK, dash)
}

var sectionOrder = map[string]int{"station": 0, "todayRange": 1, "forecast": 2}

func sortedSections(s []string) []string {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && sectionOrder[s[j]] < sectionOrder[s[j-1]]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
	return s
}
