package models

import (
	"github.com/breezyday/breezyday/internal/airquality"
)

// Station is one monitoring station as returned by the API.
type Station struct {
	SiteID      string   `json:"siteId"`
	SiteName    string   `json:"siteName"`
	County      string   `json:"county"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
	AQI         any      `json:"aqi"`
	PM25        *float64 `json:"pm25"`
	PM10        *float64 `json:"pm10"`
	O3          *float64 `json:"o3"`
	SO2         *float64 `json:"so2"`
	CO          *float64 `json:"co"`
	NO2         *float64 `json:"no2"`
	Status      string   `json:"status,omitempty"`
	PublishTime string   `json:"publishTime,omitempty"`
}

// NewStation converts a station candidate.
func NewStation(s airquality.StationCandidate) Station {
	st := Station{
		SiteID:      s.SiteID,
		SiteName:    s.SiteName,
		County:      s.County,
		AQI:         s.AQI,
		PM25:        s.PM25,
		PM10:        s.PM10,
		O3:          s.O3,
		SO2:         s.SO2,
		CO:          s.CO,
		NO2:         s.NO2,
		Status:      s.Status,
		PublishTime: s.PublishTime,
	}
	if s.Coordinate != nil {
		lat, lon := s.Coordinate.Lat, s.Coordinate.Lon
		st.Lat, st.Lon = &lat, &lon
	}
	return st
}

// Catalog is the body of GET /api/aqi.
type Catalog struct {
	Provider  string    `json:"provider"`
	FetchedAt Timestamp `json:"fetchedAt"`
	Count     int       `json:"count"`
	Stations  []Station `json:"stations"`
}

// NewCatalog converts a catalog.
func NewCatalog(c *airquality.Catalog) Catalog {
	stations := make([]Station, len(c.Stations))
	for i, s := range c.Stations {
		stations[i] = NewStation(s)
	}
	return Catalog{
		Provider:  c.Provider,
		FetchedAt: Timestamp(c.FetchedAt),
		Count:     len(stations),
		Stations:  stations,
	}
}

// AQIClassification is a classified AQI value.
type AQIClassification struct {
	airquality.Classification
	Level       airquality.CoarseCategory `json:"level"`
	AllergyRisk airquality.AllergyRisk    `json:"allergyRisk"`
}

// NewAQIClassification classifies v with both scales and the allergy risk.
func NewAQIClassification(v any) AQIClassification {
	c := airquality.Classify(v)
	return AQIClassification{
		Classification: c,
		Level:          c.Category.Coarse(),
		AllergyRisk:    airquality.AllergyRiskFor(v),
	}
}

// StationReading is a station with its classification.
type StationReading struct {
	Station
	Classification AQIClassification `json:"classification"`
	DistanceKm     *float64          `json:"distanceKm,omitempty"`
}

// NewStationReading converts a station result.
func NewStationReading(r airquality.StationResult) StationReading {
	c := r.Classification
	return StationReading{
		Station: NewStation(r.Station),
		Classification: AQIClassification{
			Classification: c,
			Level:          c.Category.Coarse(),
			AllergyRisk:    airquality.AllergyRiskFor(r.Station.AQI),
		},
		DistanceKm: r.DistanceKm,
	}
}

// StationList is the body of GET /api/aqi/stations.
type StationList struct {
	Count    int              `json:"count"`
	Stations []StationReading `json:"stations"`
}

// NearestStation is the body of GET /api/aqi/nearest.
type NearestStation struct {
	StationReading
	// Fallback is true when no usable coordinate was given and the default
	// station was returned.
	Fallback bool `json:"fallback"`
}

// ClassifyResult is the body of GET /api/aqi/classify.
type ClassifyResult struct {
	Input string `json:"input"`
	AQIClassification
}
