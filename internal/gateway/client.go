package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

const (
	// DefaultBaseURL is the default base URL for the console API.
	DefaultBaseURL = "http://localhost:8080"
)

// Client is an HTTP client for the console API. All console surfaces (the
// credential directory, the editor, the renewal flow) talk to the API through
// it.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (useful for testing with a local server).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a new console API client authenticating with the given
// session token.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// do executes a JSON request against the API. A nil body sends no payload.
// The response body is returned for any 2xx status; other statuses are
// translated by parseError.
func (c *Client) do(ctx context.Context, method, path string, reqBody any) ([]byte, int, error) {
	var bodyReader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return nil, 0, err
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, 0, err
	}

	if c.token != "" {
		// The backend contract expects both header spellings.
		bearer := "Bearer " + c.token
		req.Header.Set("Authorization", bearer)
		req.Header["authorization"] = []string{bearer}
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		//nolint:errcheck
		resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, parseError(resp.StatusCode, body)
	}

	return body, resp.StatusCode, nil
}

// ListAccessKeys retrieves all access keys for a project. A missing project
// yields an empty slice rather than an error, so the directory can render an
// empty state.
func (c *Client) ListAccessKeys(ctx context.Context, projectID int64) ([]AccessKey, error) {
	query := url.Values{}
	query.Set("project_id", strconv.FormatInt(projectID, 10))

	body, _, err := c.do(ctx, http.MethodGet, "/access-keys?"+query.Encode(), nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []AccessKey{}, nil
		}
		return nil, err
	}

	var keys []AccessKey
	if err := json.Unmarshal(body, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode access keys: %w", err)
	}
	if keys == nil {
		keys = []AccessKey{}
	}
	return keys, nil
}

// GetAccessKey retrieves a single access key with its device and domain
// bindings.
func (c *Client) GetAccessKey(ctx context.Context, id int64) (*AccessKey, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/access-keys/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return nil, err
	}

	var key AccessKey
	if err := json.Unmarshal(body, &key); err != nil {
		return nil, fmt.Errorf("failed to decode access key: %w", err)
	}
	return &key, nil
}

// CreateAccessKey creates a new access key. The returned secret is shown once
// and cannot be retrieved again.
func (c *Client) CreateAccessKey(ctx context.Context, req *CreateAccessKeyRequest) (*CreatedAccessKey, error) {
	body, _, err := c.do(ctx, http.MethodPost, "/access-keys", req)
	if err != nil {
		return nil, err
	}

	var created CreatedAccessKey
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to decode created access key: %w", err)
	}
	return &created, nil
}

// UpdateAccessKey applies a partial patch to an access key and returns the
// updated detail.
func (c *Client) UpdateAccessKey(ctx context.Context, id int64, req *UpdateAccessKeyRequest) (*AccessKey, error) {
	body, _, err := c.do(ctx, http.MethodPut, "/access-keys/"+strconv.FormatInt(id, 10), req)
	if err != nil {
		return nil, err
	}

	var key AccessKey
	if err := json.Unmarshal(body, &key); err != nil {
		return nil, fmt.Errorf("failed to decode access key: %w", err)
	}
	return &key, nil
}

// DeleteAccessKey deletes an access key.
func (c *Client) DeleteAccessKey(ctx context.Context, id int64) error {
	_, _, err := c.do(ctx, http.MethodDelete, "/access-keys/"+strconv.FormatInt(id, 10), nil)
	return err
}

// RenewAccessKey re-bases the key's expiration from now by the given duration
// in days.
func (c *Client) RenewAccessKey(ctx context.Context, id int64, durationDays int) (*RenewResult, error) {
	req := struct {
		Duration int `json:"duration"`
	}{Duration: durationDays}

	body, _, err := c.do(ctx, http.MethodPost, "/access-keys/"+strconv.FormatInt(id, 10)+"/renew", req)
	if err != nil {
		return nil, err
	}

	var result RenewResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode renewal result: %w", err)
	}
	return &result, nil
}

// ListDevices retrieves all devices registered under a project. Like
// ListAccessKeys, a missing project yields an empty slice.
func (c *Client) ListDevices(ctx context.Context, projectID int64) ([]Device, error) {
	query := url.Values{}
	query.Set("project_id", strconv.FormatInt(projectID, 10))

	body, _, err := c.do(ctx, http.MethodGet, "/device?"+query.Encode(), nil)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []Device{}, nil
		}
		return nil, err
	}

	var devices []Device
	if err := json.Unmarshal(body, &devices); err != nil {
		return nil, fmt.Errorf("failed to decode devices: %w", err)
	}
	if devices == nil {
		devices = []Device{}
	}
	return devices, nil
}

// GetPublicDashboard resolves a public share token. No session is required.
func (c *Client) GetPublicDashboard(ctx context.Context, token string) (*PublicDashboard, error) {
	body, _, err := c.do(ctx, http.MethodGet, "/public/dashboard/"+url.PathEscape(token), nil)
	if err != nil {
		return nil, err
	}

	var dash PublicDashboard
	if err := json.Unmarshal(body, &dash); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard: %w", err)
	}
	return &dash, nil
}

// parseError translates API error responses into typed errors.
func parseError(statusCode int, body []byte) error {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		var reqErr RequestError
		if err := json.Unmarshal(body, &reqErr); err == nil && reqErr.Message != "" {
			reqErr.StatusCode = statusCode
			return &reqErr
		}
		return fmt.Errorf("gateway: request failed (status %d)", statusCode)
	}
}
