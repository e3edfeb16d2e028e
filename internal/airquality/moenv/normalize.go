package moenv

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/breezyday/breezyday/internal/airquality"
	"github.com/breezyday/breezyday/pkg/geo"
)

// Record is one decoded feed row. Key casing and spelling vary between
// dataset revisions, so lookups go through the alias tables below.
type Record map[string]any

var (
	keysCounty    = []string{"county", "County"}
	keysSiteName  = []string{"sitename", "SiteName", "siteName"}
	keysSiteID    = []string{"siteid", "SiteId", "SiteID"}
	keysAQI       = []string{"aqi", "AQI"}
	keysPM25      = []string{"pm2.5", "pm2_5", "PM2.5", "PM25", "pm25"}
	keysPM10      = []string{"pm10", "PM10"}
	keysO3        = []string{"o3", "O3"}
	keysSO2       = []string{"so2", "SO2"}
	keysCO        = []string{"co", "CO"}
	keysNO2       = []string{"no2", "NO2"}
	keysStatus    = []string{"status", "Status"}
	keysPublished = []string{"publishtime", "PublishTime", "publishTime"}
	keysLatitude  = []string{"latitude", "Latitude", "lat"}
	keysLongitude = []string{"longitude", "Longitude", "lon"}
)

// Normalize maps a feed record onto a StationCandidate. Missing or
// unparsable fields are left empty; the AQI is kept as supplied so the
// classifier decides whether it is usable.
func Normalize(r Record) airquality.StationCandidate {
	return airquality.StationCandidate{
		SiteID:      r.text(keysSiteID),
		SiteName:    r.text(keysSiteName),
		County:      r.text(keysCounty),
		Coordinate:  r.coordinate(),
		AQI:         r.first(keysAQI),
		PM25:        r.number(keysPM25),
		PM10:        r.number(keysPM10),
		O3:          r.number(keysO3),
		SO2:         r.number(keysSO2),
		CO:          r.number(keysCO),
		NO2:         r.number(keysNO2),
		Status:      r.text(keysStatus),
		PublishTime: r.text(keysPublished),
	}
}

// NormalizeAll normalizes records in order.
func NormalizeAll(records []Record) []airquality.StationCandidate {
	out := make([]airquality.StationCandidate, len(records))
	for i, r := range records {
		out[i] = Normalize(r)
	}
	return out
}

func (r Record) first(keys []string) any {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func (r Record) text(keys []string) string {
	switch v := r.first(keys).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func (r Record) number(keys []string) *float64 {
	f, ok := toFloat(r.first(keys))
	if !ok {
		return nil
	}
	return &f
}

func (r Record) coordinate() *geo.Coordinate {
	lat, okLat := toFloat(r.first(keysLatitude))
	lon, okLon := toFloat(r.first(keysLongitude))
	if !okLat || !okLon {
		return nil
	}
	return &geo.Coordinate{Lat: lat, Lon: lon}
}

func toFloat(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		f, err = n.Float64()
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		f, err = strconv.ParseFloat(s, 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
