// Package locate maps a coordinate onto the built-in list of Taipei City
// districts.
package locate

import (
	"github.com/breezyday/breezyday/pkg/geo"
)

// Town is a district centroid.
type Town struct {
	City       string         `json:"city"`
	Name       string         `json:"name"`
	Coordinate geo.Coordinate `json:"coordinate"`
}

// Match is the district nearest to a query point.
type Match struct {
	Town       Town
	DistanceKm float64
	// Fallback is true when the query was unusable and the default
	// district was returned instead.
	Fallback bool
}

const taipei = "臺北市"

var towns = []Town{
	{taipei, "中正區", geo.Coordinate{Lat: 25.0324, Lon: 121.5191}},
	{taipei, "大同區", geo.Coordinate{Lat: 25.0630, Lon: 121.5135}},
	{taipei, "中山區", geo.Coordinate{Lat: 25.0628, Lon: 121.5334}},
	{taipei, "松山區", geo.Coordinate{Lat: 25.0605, Lon: 121.5636}},
	{taipei, "大安區", geo.Coordinate{Lat: 25.0260, Lon: 121.5435}},
	{taipei, "萬華區", geo.Coordinate{Lat: 25.0271, Lon: 121.4973}},
	{taipei, "信義區", geo.Coordinate{Lat: 25.0306, Lon: 121.5718}},
	{taipei, "士林區", geo.Coordinate{Lat: 25.0910, Lon: 121.5240}},
	{taipei, "北投區", geo.Coordinate{Lat: 25.1322, Lon: 121.5026}},
	{taipei, "內湖區", geo.Coordinate{Lat: 25.0830, Lon: 121.5942}},
	{taipei, "南港區", geo.Coordinate{Lat: 25.0530, Lon: 121.6065}},
	{taipei, "文山區", geo.Coordinate{Lat: 24.9982, Lon: 121.5589}},
}

// Towns returns a copy of the district list.
func Towns() []Town {
	return append([]Town(nil), towns...)
}

// Default returns the district used when no location is available.
func Default() Town {
	return towns[0]
}

func townCoord(t Town) (geo.Coordinate, bool) { return t.Coordinate, true }

// Locate returns the district nearest to coord. An invalid coordinate
// yields the default district with Fallback set.
func Locate(coord geo.Coordinate) Match {
	if !coord.InRange() {
		return Match{Town: Default(), Fallback: true}
	}
	idx, dist, ok := geo.Nearest(coord, towns, townCoord)
	if !ok {
		return Match{Town: Default(), Fallback: true}
	}
	return Match{Town: towns[idx], DistanceKm: dist}
}
