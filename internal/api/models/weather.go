package models

import (
	"github.com/breezyday/breezyday/internal/weather"
)

// TodayRange is the body of GET /api/weather/today-range.
type TodayRange struct {
	LocationName string           `json:"locationName"`
	MinTemp      *float64         `json:"minTemp"`
	MaxTemp      *float64         `json:"maxTemp"`
	TempDiff     *float64         `json:"tempDiff"`
	PoP12h       *float64         `json:"pop12h"`
	WeatherDesc  string           `json:"weatherDesc"`
	StartTime    string           `json:"startTime,omitempty"`
	EndTime      string           `json:"endTime,omitempty"`
	Rain         weather.RainInfo `json:"rain"`
}

// NewTodayRange converts a county forecast range.
func NewTodayRange(r *weather.TodayRange) TodayRange {
	return TodayRange{
		LocationName: r.LocationName,
		MinTemp:      r.MinTemp,
		MaxTemp:      r.MaxTemp,
		TempDiff:     r.TempDiff,
		PoP12h:       r.PoP12h,
		WeatherDesc:  r.WeatherDesc,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		Rain:         weather.RainInfoFor(r.PoP12h),
	}
}

// ForecastRow is one time step of a township forecast.
type ForecastRow struct {
	Start   string   `json:"start"`
	End     string   `json:"end,omitempty"`
	Temp    *float64 `json:"temp"`
	Weather string   `json:"weather,omitempty"`
}

// NearestForecast is the body of GET /api/weather/nearest.
type NearestForecast struct {
	County     string        `json:"county"`
	Town       string        `json:"town"`
	NowTemp    *float64      `json:"nowTemp"`
	RangeMin   *float64      `json:"rangeMin"`
	RangeMax   *float64      `json:"rangeMax"`
	NowWeather string        `json:"nowWeather"`
	DistanceKm *float64      `json:"distanceKm,omitempty"`
	Rows       []ForecastRow `json:"rows"`
}

// NewNearestForecast converts a point summary.
func NewNearestForecast(s weather.PointSummary) NearestForecast {
	rows := make([]ForecastRow, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = ForecastRow{Start: r.Start, End: r.End, Temp: r.Temp, Weather: r.Weather}
	}
	return NearestForecast{
		County:     s.County,
		Town:       s.Town,
		NowTemp:    s.NowTemp,
		RangeMin:   s.RangeMin,
		RangeMax:   s.RangeMax,
		NowWeather: s.NowWeather,
		DistanceKm: s.DistanceKm,
		Rows:       rows,
	}
}
