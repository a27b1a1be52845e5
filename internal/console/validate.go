package console

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// ValidationError is a user-facing message from editor validation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}

var domainNamePattern = regexp.MustCompile(`^(localhost|(\d{1,3}\.){3}\d{1,3}|([a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z]{2,})(:\d{1,5})?$`)

// ValidDurations are the accepted expiration durations in days, in the order
// the console presents them.
var ValidDurations = []int{7, 30, 60, 90, 180, 365}

const maxNameLength = 100

func validDuration(days int) bool {
	for _, d := range ValidDurations {
		if d == days {
			return true
		}
	}
	return false
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return validationErr("Access key name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return validationErr("Access key name must be at most 100 characters")
	}
	return nil
}

// cleanDomains trims entries and drops blanks, then checks format and
// case-insensitive uniqueness. The checks run in presentation order so the
// first failing rule is what the user sees.
func cleanDomains(names []string) ([]string, error) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	if len(cleaned) == 0 {
		return nil, validationErr("At least one domain name is required")
	}

	seen := make(map[string]bool, len(cleaned))
	for _, name := range cleaned {
		if !domainNamePattern.MatchString(name) {
			return nil, validationErr("Invalid domain name: " + name)
		}
		lower := strings.ToLower(name)
		if seen[lower] {
			return nil, validationErr("Duplicate domain name: " + name)
		}
		seen[lower] = true
	}

	return cleaned, nil
}
