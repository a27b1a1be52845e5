// Package gateway provides the HTTP client for the console API.
package gateway

import (
	"errors"
	"fmt"
)

// RequestError represents a structured error response from the console API.
type RequestError struct {
	StatusCode int
	Code       string `json:"error"`
	Message    string `json:"message"`
	Hint       string `json:"hint,omitempty"`
}

// Error implements the error interface for RequestError.
func (e *RequestError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("gateway: %s: %s (%s)", e.Code, e.Message, e.Hint)
	}
	return fmt.Sprintf("gateway: %s: %s", e.Code, e.Message)
}

// Sentinel errors for common API error cases.
var (
	ErrUnauthorized = errors.New("gateway: unauthorized (invalid or expired session)")
	ErrForbidden    = errors.New("gateway: session does not grant this project")
	ErrNotFound     = errors.New("gateway: resource not found")
)
