// Package feedback records how a day's outfit and allergy situation felt,
// together with the environment the recommendation was based on.
package feedback

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// AllergyFeel is the user's self-reported allergy level.
type AllergyFeel string

// Allergy feel values.
const (
	AllergyNone   AllergyFeel = "none"
	AllergyNormal AllergyFeel = "normal"
	AllergySevere AllergyFeel = "severe"
)

// Label returns the summary label for the feel.
func (f AllergyFeel) Label() string {
	switch f {
	case AllergyNone:
		return "Allergy: None"
	case AllergyNormal:
		return "Allergy: Normal"
	case AllergySevere:
		return "Allergy: Severe"
	default:
		return "N/A"
	}
}

func (f AllergyFeel) valid() bool {
	switch f {
	case "", AllergyNone, AllergyNormal, AllergySevere:
		return true
	}
	return false
}

// Limits on submitted values.
const (
	MaxImpact      = 10
	MaxRating      = 10
	MaxTextLength  = 100
	MaxSymptoms    = 10
	DateLayout     = "2006-01-02"
	DefaultListCap = 100
)

// Entry is one stored feedback record.
type Entry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	FeedbackDate string    `json:"feedbackDate"`
	CreatedAt    time.Time `json:"createdAt"`

	OutfitTop         string `json:"outfitTop,omitempty"`
	OutfitBottom      string `json:"outfitBottom,omitempty"`
	OutfitAccessories string `json:"outfitAccessories,omitempty"`
	OutfitShoes       string `json:"outfitShoes,omitempty"`
	TemperatureFeel   string `json:"temperatureFeel,omitempty"`
	ChangeOutfit      string `json:"changeOutfit,omitempty"`

	AllergyFeel     AllergyFeel `json:"allergyFeel,omitempty"`
	AllergyImpact   *int        `json:"allergyImpact,omitempty"`
	AllergySymptoms []string    `json:"allergySymptoms,omitempty"`
	AllergyMed      string      `json:"allergyMed,omitempty"`

	RecommendationRating *int `json:"recommendationRating,omitempty"`

	EnvAQI      *float64 `json:"envAqi"`
	EnvAQISite  string   `json:"envAqiSite,omitempty"`
	EnvMaxTemp  *float64 `json:"envMaxTemp"`
	EnvMinTemp  *float64 `json:"envMinTemp"`
	EnvTempDiff *float64 `json:"envTempDiff"`
}

// Input is the body of a feedback submission.
type Input struct {
	FeedbackDate string `json:"feedbackDate"`

	OutfitTop         string `json:"outfitTop"`
	OutfitBottom      string `json:"outfitBottom"`
	OutfitAccessories string `json:"outfitAccessories"`
	OutfitShoes       string `json:"outfitShoes"`
	TemperatureFeel   string `json:"temperatureFeel"`
	ChangeOutfit      string `json:"changeOutfit"`

	AllergyFeel     AllergyFeel `json:"allergyFeel"`
	AllergyImpact   *int        `json:"allergyImpact"`
	AllergySymptoms []string    `json:"allergySymptoms"`
	AllergyMed      string      `json:"allergyMed"`

	RecommendationRating *int `json:"recommendationRating"`

	EnvAQI      *float64 `json:"envAqi"`
	EnvAQISite  string   `json:"envAqiSite"`
	EnvMaxTemp  *float64 `json:"envMaxTemp"`
	EnvMinTemp  *float64 `json:"envMinTemp"`
	EnvTempDiff *float64 `json:"envTempDiff"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidationError is returned when a submission is rejected.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid feedback"
	}
	return fmt.Sprintf("invalid feedback: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

// Normalize trims text fields and clears the allergy details when the user
// reported no allergy.
func (in *Input) Normalize() {
	in.FeedbackDate = strings.TrimSpace(in.FeedbackDate)
	for _, s := range []*string{
		&in.OutfitTop, &in.OutfitBottom, &in.OutfitAccessories, &in.OutfitShoes,
		&in.TemperatureFeel, &in.ChangeOutfit, &in.AllergyMed, &in.EnvAQISite,
	} {
		*s = strings.TrimSpace(*s)
	}
	in.AllergyFeel = AllergyFeel(strings.ToLower(strings.TrimSpace(string(in.AllergyFeel))))

	symptoms := make([]string, 0, len(in.AllergySymptoms))
	for _, s := range in.AllergySymptoms {
		if s = strings.TrimSpace(s); s != "" {
			symptoms = append(symptoms, s)
		}
	}
	in.AllergySymptoms = symptoms

	if in.AllergyFeel == AllergyNone {
		in.AllergySymptoms = nil
		in.AllergyImpact = nil
		in.AllergyMed = ""
	}
}

// Validate checks a normalized input.
func (in *Input) Validate() []FieldError {
	var errs []FieldError

	if in.FeedbackDate != "" {
		if _, err := time.Parse(DateLayout, in.FeedbackDate); err != nil {
			errs = append(errs, FieldError{
				Field:   "feedbackDate",
				Message: "feedback date must be formatted as YYYY-MM-DD",
				Code:    "INVALID_FORMAT",
			})
		}
	}

	texts := []struct {
		field string
		value string
	}{
		{"outfitTop", in.OutfitTop},
		{"outfitBottom", in.OutfitBottom},
		{"outfitAccessories", in.OutfitAccessories},
		{"outfitShoes", in.OutfitShoes},
		{"temperatureFeel", in.TemperatureFeel},
		{"changeOutfit", in.ChangeOutfit},
		{"allergyMed", in.AllergyMed},
		{"envAqiSite", in.EnvAQISite},
	}
	for _, t := range texts {
		if utf8.RuneCountInString(t.value) > MaxTextLength {
			errs = append(errs, FieldError{
				Field:   t.field,
				Message: fmt.Sprintf("must be at most %d characters", MaxTextLength),
				Code:    "TOO_LONG",
			})
		}
	}

	if !in.AllergyFeel.valid() {
		errs = append(errs, FieldError{
			Field:   "allergyFeel",
			Message: "allergy feel must be one of none, normal, severe",
			Code:    "INVALID_VALUE",
		})
	}

	if in.AllergyImpact != nil && (*in.AllergyImpact < 0 || *in.AllergyImpact > MaxImpact) {
		errs = append(errs, FieldError{
			Field:   "allergyImpact",
			Message: fmt.Sprintf("allergy impact must be between 0 and %d", MaxImpact),
			Code:    "OUT_OF_RANGE",
		})
	}

	if len(in.AllergySymptoms) > MaxSymptoms {
		errs = append(errs, FieldError{
			Field:   "allergySymptoms",
			Message: fmt.Sprintf("at most %d symptoms are allowed", MaxSymptoms),
			Code:    "TOO_MANY",
		})
	}

	if in.RecommendationRating != nil && (*in.RecommendationRating < 0 || *in.RecommendationRating > MaxRating) {
		errs = append(errs, FieldError{
			Field:   "recommendationRating",
			Message: fmt.Sprintf("rating must be between 0 and %d", MaxRating),
			Code:    "OUT_OF_RANGE",
		})
	}

	return errs
}

// Summary aggregates a user's feedback history.
type Summary struct {
	Count              int         `json:"count"`
	AverageRating      float64     `json:"averageRating"`
	MostCommonFeel     AllergyFeel `json:"mostCommonAllergyFeel,omitempty"`
	MostCommonLabel    string      `json:"mostCommonLabel"`
	LatestFeedbackDate string      `json:"latestFeedbackDate,omitempty"`
}
