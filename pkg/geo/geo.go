// Package geo provides great-circle distance and nearest-point lookup on a
// spherical Earth model.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by DistanceKm.
const EarthRadiusKm = 6371.0

// Coordinate represents a geographic point in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both components are finite numbers.
// Range is not checked.
func (c Coordinate) Valid() bool {
	return isFinite(c.Lat) && isFinite(c.Lon)
}

// InRange reports whether the coordinate is a valid latitude/longitude pair.
func (c Coordinate) InRange() bool {
	return c.Valid() && c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// DistanceKm returns the haversine great-circle distance between a and b in
// kilometers, using the atan2 form 2R·atan2(√h, √(1−h)).
// Inputs are not range checked.
func DistanceKm(a, b Coordinate) float64 {
	return GreatCircleDistanceKm(a.Lat, a.Lon, b.Lat, b.Lon)
}

// GreatCircleDistanceKm is DistanceKm over raw degree values.
func GreatCircleDistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLon := (lon2 - lon1) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	// Rounding can push h a hair outside [0,1], notably for antipodal
	// points and out-of-range latitudes.
	h = math.Max(0, math.Min(1, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// Nearest scans items once and returns the index of the item closest to
// query, along with its distance in kilometers. The coord func extracts an
// item's coordinate; items for which it returns false, or whose coordinate
// is not finite, are skipped. On equal distances the earlier item wins.
// ok is false when no item has a usable coordinate.
func Nearest[T any](query Coordinate, items []T, coord func(T) (Coordinate, bool)) (index int, distanceKm float64, ok bool) {
	index = -1
	best := math.Inf(1)

	for i, item := range items {
		c, has := coord(item)
		if !has || !c.Valid() {
			continue
		}
		d := DistanceKm(query, c)
		if d < best {
			best = d
			index = i
		}
	}

	if index < 0 {
		return -1, 0, false
	}
	return index, best, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
