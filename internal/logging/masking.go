// Package logging provides masking helpers so credentials never reach logs.
package logging

import (
	"encoding/json"
	"fmt"
	"strings"
)

// secretBodyFields are JSON fields that always get redacted, regardless of
// allowlist. These carry credential material in API payloads.
var secretBodyFields = map[string]bool{
	"secret_access_key": true,
	"client_access_key": true,
	"share_token":       true,
}

// MaskHeader redacts sensitive header values based on header name.
//
// Password and secret headers are fully redacted. Session and API key
// headers keep their last four characters so log lines stay correlatable.
// Everything else passes through unchanged.
func MaskHeader(name, value string) string {
	lowerName := strings.ToLower(name)

	if strings.Contains(lowerName, "password") ||
		strings.Contains(lowerName, "secret") ||
		strings.Contains(lowerName, "private-key") {
		return "[REDACTED]"
	}

	if lowerName == "authorization" ||
		lowerName == "x-api-key" ||
		lowerName == "x-session-token" {
		if len(value) < 4 {
			return "****"
		}
		return "****" + value[len(value)-4:]
	}

	return value
}

// MaskJSONBody redacts non-allowlisted fields in a JSON body.
//
// A nil allowlist means everything is allowed, except the fields in
// secretBodyFields, which are always redacted. With a non-nil allowlist only
// listed fields are preserved; all other primitives become "[REDACTED]".
//
// Returns the masked JSON, or the original bytes if parsing fails.
func MaskJSONBody(body []byte, allowlist []string) []byte {
	if len(body) == 0 {
		return body
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}

	var allowlistMap map[string]bool
	if allowlist != nil {
		allowlistMap = make(map[string]bool, len(allowlist))
		for _, field := range allowlist {
			allowlistMap[field] = true
		}
	}

	masked := maskJSONValue(data, allowlistMap)

	result, err := json.Marshal(masked)
	if err != nil {
		return body
	}

	return result
}

// maskJSONValue walks the decoded JSON. allowlist == nil means allow all
// non-secret fields.
func maskJSONValue(value interface{}, allowlist map[string]bool) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, val := range v {
			if secretBodyFields[key] {
				result[key] = "[REDACTED]"
				continue
			}
			if allowlist == nil || allowlist[key] {
				result[key] = maskJSONValue(val, allowlist)
				continue
			}
			switch val.(type) {
			case map[string]interface{}, []interface{}:
				// Keep structure, recurse into nested fields
				result[key] = maskJSONValue(val, allowlist)
			default:
				result[key] = "[REDACTED]"
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = maskJSONValue(item, allowlist)
		}
		return result
	default:
		return value
	}
}

// FormatBinaryData formats non-text payloads for logging.
func FormatBinaryData(data []byte) string {
	return fmt.Sprintf("[BINARY: %d bytes]", len(data))
}
