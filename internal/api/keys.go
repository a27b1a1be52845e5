package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/datacanvas/datacanvas/internal/metrics"
	"github.com/datacanvas/datacanvas/internal/storage"
	"github.com/go-chi/chi/v5"
)

// AccessKeyResponse represents an access key in API responses.
type AccessKeyResponse struct {
	AccessKeyID    int64    `json:"access_key_id"`
	AccessKeyName  string   `json:"access_key_name"`
	ProjectID      int64    `json:"project_id"`
	CreatedAt      string   `json:"created_at"`
	ExpirationDate *string  `json:"expiration_date"`
	LastUseTime    *string  `json:"access_key_last_use_time"`
	IsExpired      bool     `json:"is_expired"`
	DeviceIDs      []int64  `json:"device_ids,omitempty"`
	DomainNames    []string `json:"access_key_domain_names,omitempty"`
}

// CreateAccessKeyResponse includes the credential pair, shown only once.
type CreateAccessKeyResponse struct {
	AccessKeyResponse
	ClientAccessKey string `json:"client_access_key"`
	SecretAccessKey string `json:"secret_access_key"`
}

func accessKeyToResponse(key *storage.AccessKey) AccessKeyResponse {
	resp := AccessKeyResponse{
		AccessKeyID:   key.ID,
		AccessKeyName: key.Name,
		ProjectID:     key.ProjectID,
		CreatedAt:     formatTime(key.CreatedAt),
		IsExpired:     key.Expired(time.Now()),
	}
	if key.ExpirationDate != nil {
		s := formatTime(*key.ExpirationDate)
		resp.ExpirationDate = &s
	}
	if key.LastUseTime != nil {
		s := formatTime(*key.LastUseTime)
		resp.LastUseTime = &s
	}
	return resp
}

func accessKeyDetailToResponse(detail *storage.AccessKeyDetail) AccessKeyResponse {
	resp := accessKeyToResponse(&detail.AccessKey)
	resp.DeviceIDs = detail.DeviceIDs
	resp.DomainNames = detail.DomainNames
	if resp.DeviceIDs == nil {
		resp.DeviceIDs = make([]int64, 0)
	}
	if resp.DomainNames == nil {
		resp.DomainNames = make([]string, 0)
	}
	return resp
}

// parseIDParam extracts the {id} URL parameter. Writes a 400 and returns false
// when it is not a valid integer.
func parseIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid ID")
		return 0, false
	}
	return id, true
}

// parseProjectIDQuery extracts the required project_id query parameter.
func parseProjectIDQuery(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("project_id")
	if raw == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "project_id query parameter is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid project_id")
		return 0, false
	}
	return id, true
}

// HandleListAccessKeys returns all access keys for a project
// GET /access-keys?project_id={id}
func (h *Handler) HandleListAccessKeys(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectIDQuery(w, r)
	if !ok {
		return
	}
	if !h.requireProject(w, r, projectID) {
		return
	}

	keys, err := h.storage.ListAccessKeysByProject(r.Context(), projectID)
	if err != nil {
		h.logger.Error("failed to list access keys", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]AccessKeyResponse, len(keys))
	for i, key := range keys {
		response[i] = accessKeyToResponse(key)
	}

	w.Header().Set("Content-Type", "application/json")
	encErr := json.NewEncoder(w).Encode(response)
	if encErr != nil {
		// Encoding errors are not critical for list response
		_ = encErr
	}
}

// HandleGetAccessKey returns a single access key with its bindings
// GET /access-keys/{id}
func (h *Handler) HandleGetAccessKey(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	detail, err := h.storage.GetAccessKey(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Access key not found")
			return
		}
		h.logger.Error("failed to get access key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	if !h.requireProject(w, r, detail.ProjectID) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encErr := json.NewEncoder(w).Encode(accessKeyDetailToResponse(detail))
	if encErr != nil {
		_ = encErr
	}
}

// CreateAccessKeyRequest is the request body for POST /access-keys
type CreateAccessKeyRequest struct {
	AccessKeyName string   `json:"access_key_name"`
	ProjectID     int64    `json:"project_id"`
	DomainNames   []string `json:"domain_name_array"`
	DeviceIDs     []int64  `json:"device_id_array"`
	Duration      int      `json:"valid_duration_for_access_key"`
}

// HandleCreateAccessKey creates a new access key
// POST /access-keys
// The secret access key is returned once and never stored in plaintext.
func (h *Handler) HandleCreateAccessKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAccessKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if !h.requireProject(w, r, req.ProjectID) {
		return
	}

	// Validation order matches the console editor: name, devices, domains.
	if msg := validateKeyName(req.AccessKeyName); msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed, msg)
		return
	}
	if len(req.DeviceIDs) == 0 {
		WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed, "At least one device is required")
		return
	}
	domains, msg := validateDomainNames(req.DomainNames)
	if msg != "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed, msg)
		return
	}
	if !ValidDuration(req.Duration) {
		WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed,
			"Duration must be one of 7, 30, 60, 90, 180, or 365 days")
		return
	}

	clientKey, err := storage.GenerateKeyMaterial(16)
	if err != nil {
		h.logger.Error("failed to generate client key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	secret, err := storage.GenerateKeyMaterial(32)
	if err != nil {
		h.logger.Error("failed to generate secret key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	secretHash, err := storage.HashSecret(secret)
	if err != nil {
		h.logger.Error("failed to hash secret key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	detail, err := h.storage.CreateAccessKey(r.Context(), &storage.NewAccessKey{
		ProjectID:    req.ProjectID,
		Name:         req.AccessKeyName,
		ClientKey:    clientKey,
		SecretHash:   secretHash,
		DeviceIDs:    req.DeviceIDs,
		DomainNames:  domains,
		DurationDays: req.Duration,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Project not found")
		case errors.Is(err, storage.ErrForeignProject):
			WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed,
				"One or more devices do not belong to this project")
		default:
			h.logger.Error("failed to create access key", "error", err)
			WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		}
		return
	}

	h.logger.Info("access key created", "access_key_id", detail.ID, "project_id", detail.ProjectID)
	metrics.RecordKeyOperation("create")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	encErr := json.NewEncoder(w).Encode(CreateAccessKeyResponse{
		AccessKeyResponse: accessKeyDetailToResponse(detail),
		ClientAccessKey:   clientKey,
		SecretAccessKey:   secret, // Return plaintext once
	})
	if encErr != nil {
		_ = encErr
	}
}

// UpdateAccessKeyRequest is the request body for PUT /access-keys/{id}.
// Absent fields are left unchanged.
type UpdateAccessKeyRequest struct {
	AccessKeyName *string  `json:"access_key_name"`
	DomainNames   []string `json:"domain_name_array"`
	DeviceIDs     []int64  `json:"device_id_array"`
}

// HandleUpdateAccessKey applies a partial patch to an access key
// PUT /access-keys/{id}
func (h *Handler) HandleUpdateAccessKey(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateAccessKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	existing, err := h.storage.GetAccessKey(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Access key not found")
			return
		}
		h.logger.Error("failed to get access key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	if !h.requireProject(w, r, existing.ProjectID) {
		return
	}

	patch := &storage.AccessKeyPatch{DeviceIDs: req.DeviceIDs}

	if req.AccessKeyName != nil {
		if msg := validateKeyName(*req.AccessKeyName); msg != "" {
			WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed, msg)
			return
		}
		patch.Name = req.AccessKeyName
	}
	if req.DeviceIDs != nil && len(req.DeviceIDs) == 0 {
		WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed, "At least one device is required")
		return
	}
	if req.DomainNames != nil {
		domains, msg := validateDomainNames(req.DomainNames)
		if msg != "" {
			WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed, msg)
			return
		}
		patch.DomainNames = domains
	}

	detail, err := h.storage.UpdateAccessKey(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Access key not found")
		case errors.Is(err, storage.ErrForeignProject):
			WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed,
				"One or more devices do not belong to this project")
		default:
			h.logger.Error("failed to update access key", "error", err)
			WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		}
		return
	}

	h.logger.Info("access key updated", "access_key_id", id)
	metrics.RecordKeyOperation("update")

	w.Header().Set("Content-Type", "application/json")
	encErr := json.NewEncoder(w).Encode(accessKeyDetailToResponse(detail))
	if encErr != nil {
		_ = encErr
	}
}

// HandleDeleteAccessKey deletes an access key
// DELETE /access-keys/{id}
func (h *Handler) HandleDeleteAccessKey(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	existing, err := h.storage.GetAccessKey(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Access key not found")
			return
		}
		h.logger.Error("failed to get access key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	if !h.requireProject(w, r, existing.ProjectID) {
		return
	}

	if err := h.storage.DeleteAccessKey(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Access key not found")
			return
		}
		h.logger.Error("failed to delete access key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("access key deleted", "access_key_id", id)
	metrics.RecordKeyOperation("delete")
	w.WriteHeader(http.StatusNoContent)
}

// RenewAccessKeyRequest is the request body for POST /access-keys/{id}/renew
type RenewAccessKeyRequest struct {
	Duration int `json:"duration"`
}

// RenewAccessKeyResponse reports the re-based expiration.
type RenewAccessKeyResponse struct {
	Success       bool   `json:"success"`
	NewExpiration string `json:"new_expiration"`
}

// HandleRenewAccessKey re-bases the key's expiration from now
// POST /access-keys/{id}/renew
// Body: {"duration": days}
func (h *Handler) HandleRenewAccessKey(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	var req RenewAccessKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if !ValidDuration(req.Duration) {
		WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed,
			"Duration must be one of 7, 30, 60, 90, 180, or 365 days")
		return
	}

	existing, err := h.storage.GetAccessKey(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Access key not found")
			return
		}
		h.logger.Error("failed to get access key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	if !h.requireProject(w, r, existing.ProjectID) {
		return
	}

	newExpiration, err := h.storage.RenewAccessKey(r.Context(), id, req.Duration)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Access key not found")
			return
		}
		h.logger.Error("failed to renew access key", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("access key renewed", "access_key_id", id, "duration_days", req.Duration)
	metrics.RecordKeyOperation("renew")

	w.Header().Set("Content-Type", "application/json")
	encErr := json.NewEncoder(w).Encode(RenewAccessKeyResponse{
		Success:       true,
		NewExpiration: formatTime(newExpiration),
	})
	if encErr != nil {
		_ = encErr
	}
}
