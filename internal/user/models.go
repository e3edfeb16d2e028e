// Package user stores the personal profile attached to an account.
package user

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Gender values accepted by the profile.
const (
	GenderFemale = "Female"
	GenderMale   = "Male"
	GenderOther  = "Other"
)

// Field limits.
const (
	MaxUsernameLength = 50
	MaxStyles         = 10
	MaxStyleLength    = 40
	DateLayout        = "2006-01-02"
)

// Profile is the user's personal profile.
type Profile struct {
	UserID          string    `json:"-"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Gender          string    `json:"gender"`
	DateOfBirth     string    `json:"dateOfBirth"`
	PreferredStyles []string  `json:"preferredStyles"`
	UpdatedAt       time.Time `json:"-"`
}

// DefaultProfile returns the profile shown before the user saves one.
func DefaultProfile(userID string) *Profile {
	return &Profile{
		UserID:          userID,
		Gender:          GenderFemale,
		PreferredStyles: []string{},
	}
}

// ProfileInput is the body of a profile update.
type ProfileInput struct {
	Username        string   `json:"username"`
	Gender          string   `json:"gender"`
	DateOfBirth     string   `json:"dateOfBirth"`
	PreferredStyles []string `json:"preferredStyles"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ValidationError is returned when a profile update is rejected.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid profile"
	}
	return fmt.Sprintf("invalid profile: %s: %s", e.Fields[0].Field, e.Fields[0].Message)
}

// Normalize trims the input and applies defaults.
func (in *ProfileInput) Normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Gender = strings.TrimSpace(in.Gender)
	if in.Gender == "" {
		in.Gender = GenderFemale
	}
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)

	styles := make([]string, 0, len(in.PreferredStyles))
	for _, s := range in.PreferredStyles {
		if s = strings.TrimSpace(s); s != "" {
			styles = append(styles, s)
		}
	}
	in.PreferredStyles = styles
}

// Validate checks a normalized input against the profile rules.
func (in *ProfileInput) Validate(now time.Time) []FieldError {
	var errs []FieldError

	if utf8.RuneCountInString(in.Username) > MaxUsernameLength {
		errs = append(errs, FieldError{
			Field:   "username",
			Message: fmt.Sprintf("username must be at most %d characters", MaxUsernameLength),
			Code:    "TOO_LONG",
		})
	}

	switch in.Gender {
	case GenderFemale, GenderMale, GenderOther:
	default:
		errs = append(errs, FieldError{
			Field:   "gender",
			Message: "gender must be one of Female, Male, Other",
			Code:    "INVALID_VALUE",
		})
	}

	if in.DateOfBirth != "" {
		dob, err := time.Parse(DateLayout, in.DateOfBirth)
		switch {
		case err != nil:
			errs = append(errs, FieldError{
				Field:   "dateOfBirth",
				Message: "date of birth must be formatted as YYYY-MM-DD",
				Code:    "INVALID_FORMAT",
			})
		case dob.After(now):
			errs = append(errs, FieldError{
				Field:   "dateOfBirth",
				Message: "date of birth cannot be in the future",
				Code:    "OUT_OF_RANGE",
			})
		}
	}

	if len(in.PreferredStyles) > MaxStyles {
		errs = append(errs, FieldError{
			Field:   "preferredStyles",
			Message: fmt.Sprintf("at most %d preferred styles are allowed", MaxStyles),
			Code:    "TOO_MANY",
		})
	}
	for i, s := range in.PreferredStyles {
		if utf8.RuneCountInString(s) > MaxStyleLength {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("preferredStyles[%d]", i),
				Message: fmt.Sprintf("style must be at most %d characters", MaxStyleLength),
				Code:    "TOO_LONG",
			})
		}
	}

	return errs
}
