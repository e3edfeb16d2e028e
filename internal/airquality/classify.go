package airquality

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Category is the detailed AQI band.
type Category string

// Detailed AQI categories.
const (
	CategoryGood          Category = "good"
	CategoryModerate      Category = "moderate"
	CategoryUSG           Category = "usg"
	CategoryUnhealthy     Category = "unhealthy"
	CategoryVeryUnhealthy Category = "veryUnhealthy"
	CategoryHazardous     Category = "hazardous"
	CategoryUnknown       Category = "unknown"
)

// CoarseCategory is the three-band AQI badge category.
type CoarseCategory string

// Coarse AQI categories.
const (
	CoarseGood      CoarseCategory = "good"
	CoarseModerate  CoarseCategory = "moderate"
	CoarseUnhealthy CoarseCategory = "unhealthy"
	CoarseUnknown   CoarseCategory = "unknown"
)

// Classification is the result of classifying an AQI value.
type Classification struct {
	Category      Category `json:"category"`
	Label         string   `json:"label"`
	SeverityClass string   `json:"severityClass"`
	// Value is the coerced numeric value, nil when the input was unknown.
	Value *float64 `json:"value"`
}

// Known reports whether the input was numeric.
func (c Classification) Known() bool {
	return c.Category != CategoryUnknown
}

type band struct {
	upper    float64
	category Category
	label    string
	severity string
}

// bands are inclusive upper bounds in ascending order; anything above the
// last bound is hazardous.
var bands = []band{
	{50, CategoryGood, "Good", "level-good"},
	{100, CategoryModerate, "Moderate", "level-moderate"},
	{150, CategoryUSG, "Unhealthy for Sensitive Groups", "level-usg"},
	{200, CategoryUnhealthy, "Unhealthy", "level-unhealthy"},
	{300, CategoryVeryUnhealthy, "Very Unhealthy", "level-very"},
}

var (
	hazardous = band{math.Inf(1), CategoryHazardous, "Hazardous", "level-hazardous"}
	unknown   = band{0, CategoryUnknown, "Unknown", "level-unknown"}
)

// Classify maps an AQI value to its category, label and severity class.
// v may be any Go number, a json.Number, or a numeric string. nil, empty,
// non-numeric and non-finite input yields CategoryUnknown; it is never
// treated as zero.
func Classify(v any) Classification {
	f, ok := ParseAQI(v)
	if !ok {
		return unknown.result(nil)
	}
	for _, b := range bands {
		if f <= b.upper {
			return b.result(&f)
		}
	}
	return hazardous.result(&f)
}

// ClassifyCoarse returns the three-band category for v. It is derived from
// Classify, so both share the same thresholds and input coercion.
func ClassifyCoarse(v any) CoarseCategory {
	return Classify(v).Category.Coarse()
}

// Coarse folds a detailed category into the three-band scale.
func (c Category) Coarse() CoarseCategory {
	switch c {
	case CategoryGood:
		return CoarseGood
	case CategoryModerate:
		return CoarseModerate
	case CategoryUnknown, "":
		return CoarseUnknown
	default:
		return CoarseUnhealthy
	}
}

// Label returns the display label for c.
func (c Category) Label() string {
	for _, b := range bands {
		if b.category == c {
			return b.label
		}
	}
	if c == CategoryHazardous {
		return hazardous.label
	}
	return unknown.label
}

func (b band) result(v *float64) Classification {
	return Classification{
		Category:      b.category,
		Label:         b.label,
		SeverityClass: b.severity,
		Value:         v,
	}
}

// ParseAQI coerces v into a finite float64. The boolean is false for nil,
// empty or non-numeric strings, NaN, infinities and unsupported types.
func ParseAQI(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case *float64:
		if n == nil {
			return 0, false
		}
		f = *n
	case json.Number:
		return parseNumericString(n.String())
	case string:
		return parseNumericString(n)
	case *string:
		if n == nil {
			return 0, false
		}
		return parseNumericString(*n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// AllergyRisk is the allergy warning level shown alongside the AQI.
type AllergyRisk string

// Allergy risk levels.
const (
	AllergyRiskLow       AllergyRisk = "low"
	AllergyRiskModerate  AllergyRisk = "moderate"
	AllergyRiskDangerous AllergyRisk = "dangerous"
	AllergyRiskUnknown   AllergyRisk = "unknown"
)

// AllergyRiskFor maps an AQI value to an allergy risk level.
func AllergyRiskFor(v any) AllergyRisk {
	f, ok := ParseAQI(v)
	switch {
	case !ok:
		return AllergyRiskUnknown
	case f <= 100:
		return AllergyRiskLow
	case f <= 150:
		return AllergyRiskModerate
	default:
		return AllergyRiskDangerous
	}
}
