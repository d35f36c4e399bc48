package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxIDLength    = 200
	maxTripsPerLog = 10000
)

var (
	// Injection-looking sequences. Line keys and station ids are otherwise
	// free text in any script and contain ':' by construction.
	dangerousPattern = regexp.MustCompile(`[<>]|--|/\*|\*/|;`)

	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
)

// ValidateID checks a line key or station id taken from a request.
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}
	if !utf8.ValidString(id) {
		return errors.New("id is not valid UTF-8")
	}
	if utf8.RuneCountInString(id) > maxIDLength {
		return errors.New("id too long (max 200 characters)")
	}
	if dangerousPattern.MatchString(id) || strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return errors.New("id contains invalid characters")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return errors.New("id contains invalid characters")
		}
	}
	return nil
}

// ValidateLatitude validates latitude values
func ValidateLatitude(lat float64) error {
	if lat < -90.0 || lat > 90.0 {
		return errors.New("latitude must be between -90 and 90")
	}
	return nil
}

// ValidateLongitude validates longitude values
func ValidateLongitude(lon float64) error {
	if lon < -180.0 || lon > 180.0 {
		return errors.New("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateLocationParams validates a coordinate pair.
func ValidateLocationParams(lat, lon float64, fieldErrors FieldErrors) {
	if err := ValidateLatitude(lat); err != nil {
		fieldErrors.Add("lat", err.Error())
	}
	if err := ValidateLongitude(lon); err != nil {
		fieldErrors.Add("lon", err.Error())
	}
}

// ValidateSegment checks the identifiers of one ride. field prefixes the
// keys recorded in fieldErrors, e.g. "segments[2]".
func ValidateSegment(field, lineKey, fromID, toID string, fieldErrors FieldErrors) {
	for name, v := range map[string]string{"lineKey": lineKey, "fromId": fromID, "toId": toID} {
		if err := ValidateID(v); err != nil {
			fieldErrors.Add(field+"."+name, err.Error())
		}
	}
	if fromID != "" && fromID == toID {
		fieldErrors.Add(field, "segment must start and end at different stations")
	}
}

// ValidateTripCount bounds the size of a posted trip log.
func ValidateTripCount(n int) error {
	if n > maxTripsPerLog {
		return errors.New("too many trips (max 10000)")
	}
	return nil
}

// SanitizeInput removes HTML tags and surrounding whitespace.
func SanitizeInput(input string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(input, ""))
}
