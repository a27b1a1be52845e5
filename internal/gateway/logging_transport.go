package gateway

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// LoggingTransport wraps an http.RoundTripper and logs all HTTP interactions.
// Session tokens in the Authorization header are redacted.
type LoggingTransport struct {
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	var reqBodyBytes []byte
	if req.Body != nil {
		var err error
		reqBodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		// Restore body for transport
		req.Body = io.NopCloser(bytes.NewReader(reqBodyBytes))
	}

	reqHeaders := make(map[string]string)
	for k, v := range req.Header {
		if strings.EqualFold(k, "Authorization") {
			reqHeaders[k] = redactToken(strings.Join(v, ", "))
		} else {
			reqHeaders[k] = strings.Join(v, ", ")
		}
	}

	t.Logger.Info("HTTP Request",
		"method", req.Method,
		"url", req.URL.String(),
		"headers", reqHeaders,
		"body", string(reqBodyBytes),
	)

	resp, err := t.transport().RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.Logger.Error("HTTP request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	// Restore body for caller
	resp.Body = io.NopCloser(bytes.NewReader(respBodyBytes))

	t.Logger.Info("HTTP Response",
		"status_code", resp.StatusCode,
		"status", resp.Status,
		"duration_ms", duration.Milliseconds(),
		"body", string(respBodyBytes),
	)

	return resp, nil
}

func (t *LoggingTransport) transport() http.RoundTripper {
	if t.Transport != nil {
		return t.Transport
	}
	return http.DefaultTransport
}

// redactToken shows only the first 4 and last 4 characters of a token.
// Values shorter than 12 characters are fully redacted.
func redactToken(token string) string {
	if len(token) < 12 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
