package airquality

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalidSort is returned for an unsupported sort key.
var ErrInvalidSort = errors.New("invalid sort key")

// SortKey selects the ordering of a station listing.
type SortKey string

// Supported sort keys.
const (
	SortNone SortKey = ""
	SortAQI  SortKey = "aqi"
	SortPM25 SortKey = "pm25"
	SortPM10 SortKey = "pm10"
	SortSite SortKey = "site"
)

// ParseSortKey validates a sort key from user input.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortNone, SortAQI, SortPM25, SortPM10, SortSite:
		return k, nil
	default:
		return SortNone, ErrInvalidSort
	}
}

// StationQuery filters and orders a station listing.
type StationQuery struct {
	// Keyword matches county or site name, case-insensitively.
	Keyword string
	// Level keeps only stations in this coarse category when set.
	Level CoarseCategory
	Sort  SortKey
	Desc  bool
}

// FilterStations applies q to stations and returns a new slice.
// Stations with an unknown value for the sort key are placed last
// regardless of direction.
func FilterStations(stations []StationCandidate, q StationQuery) []StationResult {
	keyword := strings.ToLower(strings.TrimSpace(q.Keyword))

	results := make([]StationResult, 0, len(stations))
	for _, s := range stations {
		if keyword != "" &&
			!strings.Contains(strings.ToLower(s.County), keyword) &&
			!strings.Contains(strings.ToLower(s.SiteName), keyword) {
			continue
		}
		r := NewStationResult(s)
		if q.Level != "" && r.Classification.Category.Coarse() != q.Level {
			continue
		}
		results = append(results, r)
	}

	if q.Sort == SortNone {
		return results
	}

	if q.Sort == SortSite {
		sort.SliceStable(results, func(i, j int) bool {
			a, b := results[i].Station.SiteName, results[j].Station.SiteName
			if q.Desc {
				return a > b
			}
			return a < b
		})
		return results
	}

	value := sortValue(q.Sort)
	sort.SliceStable(results, func(i, j int) bool {
		a, aok := value(results[i])
		b, bok := value(results[j])
		switch {
		case !aok && !bok:
			return false
		case !aok:
			return false
		case !bok:
			return true
		case q.Desc:
			return a > b
		default:
			return a < b
		}
	})
	return results
}

func sortValue(k SortKey) func(StationResult) (float64, bool) {
	ptr := func(p *float64) (float64, bool) {
		if p == nil {
			return 0, false
		}
		return *p, true
	}
	switch k {
	case SortPM25:
		return func(r StationResult) (float64, bool) { return ptr(r.Station.PM25) }
	case SortPM10:
		return func(r StationResult) (float64, bool) { return ptr(r.Station.PM10) }
	default:
		return func(r StationResult) (float64, bool) { return ptr(r.Classification.Value) }
	}
}
