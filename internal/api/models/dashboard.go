package models

import (
	"github.com/breezyday/breezyday/internal/locate"
)

// District is the body of GET /api/locate.
type District struct {
	City       string   `json:"city"`
	Name       string   `json:"name"`
	Lat        float64  `json:"lat"`
	Lon        float64  `json:"lon"`
	DistanceKm *float64 `json:"distanceKm,omitempty"`
	Fallback   bool     `json:"fallback"`
}

// NewDistrict converts a district match.
func NewDistrict(m locate.Match) District {
	d := District{
		City:     m.Town.City,
		Name:     m.Town.Name,
		Lat:      m.Town.Coordinate.Lat,
		Lon:      m.Town.Coordinate.Lon,
		Fallback: m.Fallback,
	}
	if !m.Fallback {
		dist := m.DistanceKm
		d.DistanceKm = &dist
	}
	return d
}

// Dashboard aggregates everything the home screen shows. Sections whose
// upstream failed are omitted and named in Unavailable.
type Dashboard struct {
	District    District         `json:"district"`
	Station     *NearestStation  `json:"station,omitempty"`
	TodayRange  *TodayRange      `json:"todayRange,omitempty"`
	Forecast    *NearestForecast `json:"forecast,omitempty"`
	Unavailable []string         `json:"unavailable,omitempty"`
}
