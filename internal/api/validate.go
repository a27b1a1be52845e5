package api

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// domainNamePattern matches a hostname, "localhost", or an IPv4 address, each
// with an optional port suffix.
var domainNamePattern = regexp.MustCompile(`^(localhost|(\d{1,3}\.){3}\d{1,3}|([a-zA-Z0-9]([a-zA-Z0-9-]*[a-zA-Z0-9])?\.)+[a-zA-Z]{2,})(:\d{1,5})?$`)

// validDurations enumerates the accepted expiration durations in days.
var validDurations = map[int]bool{
	7:   true,
	30:  true,
	60:  true,
	90:  true,
	180: true,
	365: true,
}

const maxKeyNameLength = 100

// ValidDomainName reports whether name is an acceptable domain origin.
func ValidDomainName(name string) bool {
	return domainNamePattern.MatchString(name)
}

// ValidDuration reports whether days is one of the accepted durations.
func ValidDuration(days int) bool {
	return validDurations[days]
}

// validateKeyName checks the access key name. Returns an error message or "".
func validateKeyName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Access key name is required"
	}
	if utf8.RuneCountInString(name) > maxKeyNameLength {
		return "Access key name must be at most 100 characters"
	}
	return ""
}

// validateDomainNames trims entries, drops blanks, and checks format and
// uniqueness. Returns the cleaned list, or an error message.
// Rules are applied in order: empty set, invalid format, duplicate.
func validateDomainNames(names []string) ([]string, string) {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	if len(cleaned) == 0 {
		return nil, "At least one domain name is required"
	}

	seen := make(map[string]bool, len(cleaned))
	for _, name := range cleaned {
		if !ValidDomainName(name) {
			return nil, "Invalid domain name: " + name
		}
		lower := strings.ToLower(name)
		if seen[lower] {
			return nil, "Duplicate domain name: " + name
		}
		seen[lower] = true
	}

	return cleaned, ""
}
