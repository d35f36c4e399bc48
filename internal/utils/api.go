package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FieldErrors collects validation messages keyed by request field.
type FieldErrors map[string][]string

// Add records one message for field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Empty reports whether no field failed.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

func invalidField(key string) string {
	return fmt.Sprintf("Invalid field value for field %q.", key)
}

// ParseFloatParam reads a float from the query. A missing value yields 0 and
// no error; a malformed one is recorded in fieldErrors.
func ParseFloatParam(params url.Values, key string, fieldErrors FieldErrors) float64 {
	val := params.Get(key)
	if val == "" {
		return 0
	}

	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		fieldErrors.Add(key, invalidField(key))
		return 0
	}
	return f
}

// RequiredFloatParam is ParseFloatParam for parameters that must be present.
func RequiredFloatParam(params url.Values, key string, fieldErrors FieldErrors) float64 {
	if params.Get(key) == "" {
		fieldErrors.Add(key, fmt.Sprintf("Missing required field %q.", key))
		return 0
	}
	return ParseFloatParam(params, key, fieldErrors)
}

// RequiredIDParam reads and validates an identifier such as a line key or a
// station id.
func RequiredIDParam(params url.Values, key string, fieldErrors FieldErrors) string {
	val := strings.TrimSpace(params.Get(key))
	if err := ValidateID(val); err != nil {
		fieldErrors.Add(key, err.Error())
		return ""
	}
	return val
}
