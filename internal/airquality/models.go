// Package airquality provides AQI classification, nearest-station lookup and a
// cached view of the national monitoring station feed.
package airquality

import (
	"errors"
	"time"

	"github.com/breezyday/breezyday/pkg/geo"
)

// Provider errors.
var (
	ErrNoStations          = errors.New("no stations available")
	ErrNoCoordinates       = errors.New("no station with usable coordinates")
	ErrProviderUnavailable = errors.New("air quality provider unavailable")
	ErrMissingAPIKey       = errors.New("air quality API key not configured")
)

// StationCandidate is one monitoring station as read from the upstream feed.
// Values are treated as immutable once constructed.
type StationCandidate struct {
	SiteID   string
	SiteName string
	County   string

	// Coordinate is nil when the feed had no usable latitude/longitude.
	Coordinate *geo.Coordinate

	// AQI holds the value as supplied: a number, a numeric string, or
	// something that classifies as unknown.
	AQI any

	PM25 *float64
	PM10 *float64
	O3   *float64
	SO2  *float64
	CO   *float64
	NO2  *float64

	Status      string
	PublishTime string
}

// Location returns the station coordinate and whether it is usable.
func (s StationCandidate) Location() (geo.Coordinate, bool) {
	if s.Coordinate == nil {
		return geo.Coordinate{}, false
	}
	return *s.Coordinate, s.Coordinate.Valid()
}

// Catalog is a point-in-time list of stations fetched from a provider.
type Catalog struct {
	Stations  []StationCandidate
	FetchedAt time.Time
	Provider  string
}

// Len returns the number of stations.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Stations)
}

// StationResult is a station paired with its classification and, for
// geographic lookups, the distance from the query point.
type StationResult struct {
	Station        StationCandidate
	Classification Classification
	DistanceKm     *float64
}

// NewStationResult classifies s.
func NewStationResult(s StationCandidate) StationResult {
	return StationResult{
		Station:        s,
		Classification: Classify(s.AQI),
	}
}
