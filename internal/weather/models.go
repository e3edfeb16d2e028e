// Package weather provides county and township forecasts from the Central
// Weather Administration with caching, plus nearest forecast point lookup.
package weather

import (
	"errors"

	"github.com/breezyday/breezyday/pkg/geo"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrMissingAPIKey       = errors.New("weather API key not configured")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrInvalidLocation     = errors.New("invalid location name")
	ErrLocationNotFound    = errors.New("location not found in forecast")
	ErrNoForecastPoints    = errors.New("no forecast point with usable coordinates")
)

// TodayRange is the current 12-hour county forecast window.
type TodayRange struct {
	LocationName string
	MinTemp      *float64
	MaxTemp      *float64
	TempDiff     *float64
	PoP12h       *float64
	WeatherDesc  string
	StartTime    string
	EndTime      string
}

// NewTodayRange builds a TodayRange and derives TempDiff when both bounds
// are present.
func NewTodayRange(location string, minT, maxT, pop *float64, desc, start, end string) *TodayRange {
	r := &TodayRange{
		LocationName: location,
		MinTemp:      minT,
		MaxTemp:      maxT,
		PoP12h:       pop,
		WeatherDesc:  desc,
		StartTime:    start,
		EndTime:      end,
	}
	if minT != nil && maxT != nil {
		d := *maxT - *minT
		r.TempDiff = &d
	}
	return r
}

// ForecastPoint is one township forecast location.
type ForecastPoint struct {
	County     string
	Town       string
	Coordinate *geo.Coordinate
	Rows       []ForecastRow
}

// Location returns the point coordinate and whether it is usable.
func (p ForecastPoint) Location() (geo.Coordinate, bool) {
	if p.Coordinate == nil {
		return geo.Coordinate{}, false
	}
	return *p.Coordinate, p.Coordinate.Valid()
}

// ForecastRow is one time step of a township forecast.
type ForecastRow struct {
	Start   string
	End     string
	Temp    *float64
	Weather string
}

// maxSummaryRows caps the rows included in a PointSummary.
const maxSummaryRows = 24

// PointSummary condenses a forecast point for display.
type PointSummary struct {
	County     string
	Town       string
	Rows       []ForecastRow
	NowTemp    *float64
	RangeMin   *float64
	RangeMax   *float64
	NowWeather string
	DistanceKm *float64
}

// Summarize returns the first rows of p with the current temperature and
// range computed over them.
func (p ForecastPoint) Summarize() PointSummary {
	rows := p.Rows
	if len(rows) > maxSummaryRows {
		rows = rows[:maxSummaryRows]
	}

	s := PointSummary{
		County:     p.County,
		Town:       p.Town,
		Rows:       append([]ForecastRow(nil), rows...),
		NowWeather: "-",
	}

	for _, r := range rows {
		if r.Temp == nil {
			continue
		}
		t := *r.Temp
		if s.NowTemp == nil {
			s.NowTemp = &t
		}
		if s.RangeMin == nil || t < *s.RangeMin {
			lo := t
			s.RangeMin = &lo
		}
		if s.RangeMax == nil || t > *s.RangeMax {
			hi := t
			s.RangeMax = &hi
		}
	}

	if len(rows) > 0 && rows[0].Weather != "" {
		s.NowWeather = rows[0].Weather
	}
	return s
}

// RainLevel is the rain chance band.
type RainLevel string

// Rain chance bands.
const (
	RainVeryLow RainLevel = "veryLow"
	RainLow     RainLevel = "low"
	RainMedium  RainLevel = "medium"
	RainHigh    RainLevel = "high"
	RainUnknown RainLevel = "unknown"
)

// RainInfo describes a rain chance for display.
type RainInfo struct {
	Level      RainLevel `json:"level"`
	Label      string    `json:"label"`
	Suggestion string    `json:"suggestion"`
}

// RainInfoFor maps a probability of precipitation (percent) to a band.
func RainInfoFor(pop *float64) RainInfo {
	switch {
	case pop == nil:
		return RainInfo{RainUnknown, "N/A", "No rain forecast available."}
	case *pop < 20:
		return RainInfo{RainVeryLow, "Very Low", "Rain is very unlikely today."}
	case *pop < 50:
		return RainInfo{RainLow, "Low", "Light showers are possible; a compact raincoat is enough."}
	case *pop < 80:
		return RainInfo{RainMedium, "Medium", "Showers are likely; bring a folding umbrella."}
	default:
		return RainInfo{RainHigh, "High", "Rain is very likely; bring an umbrella and water-resistant shoes."}
	}
}
