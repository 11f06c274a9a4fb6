package validate

import (
	"math"
	"strconv"
	"strings"

	"github.com/manvel7/Antd-small-test/internal/user"
)

// Validation messages.
const (
	MsgNameRequired    = "Name is required"
	MsgAgeRequired     = "Age is required"
	MsgAgeNumber       = "Age must be a number"
	MsgAgeInteger      = "Age must be a whole number"
	MsgAgePositive     = "Age must be a positive number"
	MsgAgeMin          = "Age must be at least 1"
	MsgAgeMax          = "Age must be less than 120"
	MsgPhoneRequired   = "Phone number is required"
	MsgPhoneFormat     = "Invalid phone number format"
	MsgCountryRequired = "Country is required"
)

// Age bounds, inclusive.
const (
	MinAge = 1
	MaxAge = 120
)

// FieldResult is the outcome for a single field.
type FieldResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// Result is the outcome of validating a draft.
type Result struct {
	Fields map[user.Field]FieldResult `json:"fields"`
	Valid  bool                       `json:"valid"`
}

// Reason returns the failure reason for f, or "" if f passed.
func (r Result) Reason(f user.Field) string {
	return r.Fields[f].Reason
}

// Errors returns the failing fields and their reasons in display order.
func (r Result) Errors() []FieldError {
	var out []FieldError
	for _, f := range user.Fields {
		if fr, ok := r.Fields[f]; ok && !fr.Valid {
			out = append(out, FieldError{Field: f, Reason: fr.Reason})
		}
	}
	return out
}

// FieldError pairs a field with its failure reason.
type FieldError struct {
	Field  user.Field `json:"field"`
	Reason string     `json:"reason"`
}

// Validate evaluates every field of d. Valid is the AND of all fields.
func Validate(d user.Draft) Result {
	res := Result{
		Fields: map[user.Field]FieldResult{
			user.FieldName:    check(Name(d.Name)),
			user.FieldAge:     check(Age(d.Age)),
			user.FieldPhone:   check(Phone(d.Phone)),
			user.FieldCountry: check(Country(d.Country)),
		},
		Valid: true,
	}
	for _, fr := range res.Fields {
		if !fr.Valid {
			res.Valid = false
		}
	}
	return res
}

// Field validates a single field value. Unknown fields pass.
func Field(f user.Field, value string) FieldResult {
	switch f {
	case user.FieldName:
		return check(Name(value))
	case user.FieldAge:
		return check(Age(value))
	case user.FieldPhone:
		return check(Phone(value))
	case user.FieldCountry:
		return check(Country(value))
	}
	return FieldResult{Valid: true}
}

func check(reason string) FieldResult {
	return FieldResult{Valid: reason == "", Reason: reason}
}

// Name returns the failure reason for a name, or "".
func Name(s string) string {
	if user.Clean(s) == "" {
		return MsgNameRequired
	}
	return ""
}

// Age returns the failure reason for a raw age input, or "".
// An empty input is a missing value and fails the required check; it is
// never read as zero. Checks run in the order required, number, positive,
// whole number, min, max and the first failure wins.
func Age(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return MsgAgeRequired
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return MsgAgeNumber
	}
	if f <= 0 {
		return MsgAgePositive
	}
	if f != math.Trunc(f) {
		return MsgAgeInteger
	}
	if f > MaxAge {
		return MsgAgeMax
	}
	// "1e2" is a whole number but not integer syntax.
	if _, err := strconv.Atoi(s); err != nil {
		return MsgAgeInteger
	}
	if f < MinAge {
		return MsgAgeMin
	}
	return ""
}

// Phone returns the failure reason for a phone number, or "".
func Phone(s string) string {
	if strings.TrimSpace(s) == "" {
		return MsgPhoneRequired
	}
	if !ValidPhone(s) {
		return MsgPhoneFormat
	}
	return ""
}

// Country returns the failure reason for a country code, or "".
func Country(s string) string {
	if strings.TrimSpace(s) == "" {
		return MsgCountryRequired
	}
	return ""
}
