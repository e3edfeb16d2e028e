package airquality

import (
	"strings"

	"github.com/breezyday/breezyday/pkg/geo"
)

// FindNearestStation returns the candidate closest to query. Candidates with a
// missing or non-finite coordinate are skipped, and on equal distances the
// earlier candidate wins. ok is false when no candidate qualifies.
func FindNearestStation(query geo.Coordinate, candidates []StationCandidate) (StationCandidate, bool) {
	s, _, ok := FindNearestStationWithDistance(query, candidates)
	return s, ok
}

// FindNearestStationWithDistance is FindNearestStation that also returns the
// distance to the match in kilometers.
func FindNearestStationWithDistance(query geo.Coordinate, candidates []StationCandidate) (StationCandidate, float64, bool) {
	idx, dist, ok := geo.Nearest(query, candidates, StationCandidate.Location)
	if !ok {
		return StationCandidate{}, 0, false
	}
	return candidates[idx], dist, true
}

// defaultCountyMarkers identify Taipei City in the county field. The feed
// mixes the traditional and simplified first character.
var defaultCountyMarkers = []string{"北市", "臺北", "台北"}

// DefaultStation picks the station shown when no location is known: the
// first Taipei station, otherwise the first station in the list.
func DefaultStation(candidates []StationCandidate) (StationCandidate, bool) {
	if len(candidates) == 0 {
		return StationCandidate{}, false
	}
	for _, c := range candidates {
		for _, marker := range defaultCountyMarkers {
			if strings.Contains(c.County, marker) {
				return c, true
			}
		}
	}
	return candidates[0], true
}
