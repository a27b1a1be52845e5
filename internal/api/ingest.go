package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/datacanvas/datacanvas/internal/metrics"
	"github.com/datacanvas/datacanvas/internal/storage"
)

// Header names carrying the credential pair on data-plane requests.
const (
	HeaderClientAccessKey = "X-Client-Access-Key"
	HeaderSecretAccessKey = "X-Secret-Access-Key"
)

// IngestRequest is a device data submission. The payload is opaque to the
// access layer.
type IngestRequest struct {
	DeviceID int64           `json:"device_id"`
	Payload  json.RawMessage `json:"payload"`
}

// IngestResponse acknowledges an accepted submission.
type IngestResponse struct {
	Accepted bool `json:"accepted"`
}

// HandleIngest accepts device data authenticated by an access key pair
// instead of a console session. The secret is checked against the stored
// hash, the request origin against the key's domain bindings, and the
// device against its device bindings. Each accepted request stamps the
// key's last-use time.
// POST /ingest
func (h *Handler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	clientKey := r.Header.Get(HeaderClientAccessKey)
	secret := r.Header.Get(HeaderSecretAccessKey)
	if clientKey == "" || secret == "" {
		metrics.RecordAuthFailure("missing_access_key")
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials,
			"Client and secret access keys are required")
		return
	}

	key, err := h.storage.GetAccessKeyByClientKey(r.Context(), clientKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			metrics.RecordAuthFailure("invalid_access_key")
			WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid access key")
			return
		}
		h.logger.Error("failed to look up access key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	// Same message as an unknown client key, so probing cannot tell a bad
	// secret from a bad key.
	if !storage.VerifySecret(key.SecretHash, secret) {
		metrics.RecordAuthFailure("invalid_access_key")
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Invalid access key")
		return
	}

	if key.Expired(time.Now().UTC()) {
		metrics.RecordAuthFailure("expired_access_key")
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "Access key is expired")
		return
	}

	if !originAllowed(r.Header.Get("Origin"), key.DomainNames) {
		WriteError(w, http.StatusForbidden, ErrCodeForbidden,
			"Origin is not allowed for this access key")
		return
	}

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if !containsDeviceID(key.DeviceIDs, req.DeviceID) {
		WriteError(w, http.StatusForbidden, ErrCodeForbidden,
			"Device is not bound to this access key")
		return
	}

	if err := h.storage.TouchAccessKey(r.Context(), key.ID, time.Now().UTC()); err != nil {
		h.logger.Error("failed to stamp access key last use", "access_key_id", key.ID, "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Debug("ingest accepted", "access_key_id", key.ID, "device_id", req.DeviceID)
	metrics.RecordKeyOperation("use")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	encErr := json.NewEncoder(w).Encode(IngestResponse{Accepted: true})
	if encErr != nil {
		_ = encErr
	}
}

// originAllowed reports whether the request origin's host matches one of the
// key's bound domain names. Bindings are host[:port] strings, so the match is
// on the origin URL's host, case-insensitively.
func originAllowed(origin string, domainNames []string) bool {
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	for _, name := range domainNames {
		if strings.EqualFold(u.Host, name) {
			return true
		}
	}
	return false
}

func containsDeviceID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
