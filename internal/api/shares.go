package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/datacanvas/datacanvas/internal/storage"
	"github.com/go-chi/chi/v5"
)

// ShareResponse represents a dashboard share in API responses.
type ShareResponse struct {
	ShareID   int64   `json:"share_id"`
	ProjectID int64   `json:"project_id"`
	Token     string  `json:"share_token"`
	ShareName string  `json:"share_name"`
	WidgetIDs []int64 `json:"widget_id_array"`
	IsActive  bool    `json:"is_active"`
	ExpiresAt *string `json:"expires_at"`
	CreatedAt string  `json:"created_at"`
}

func shareToResponse(share *storage.Share) ShareResponse {
	resp := ShareResponse{
		ShareID:   share.ID,
		ProjectID: share.ProjectID,
		Token:     share.Token,
		ShareName: share.Name,
		WidgetIDs: share.WidgetIDs,
		IsActive:  share.Active,
		CreatedAt: formatTime(share.CreatedAt),
	}
	if share.ExpiresAt != nil {
		s := formatTime(*share.ExpiresAt)
		resp.ExpiresAt = &s
	}
	return resp
}

// HandleListShares returns all dashboard shares for a project
// GET /share?project_id={id}
func (h *Handler) HandleListShares(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectIDQuery(w, r)
	if !ok {
		return
	}
	if !h.requireProject(w, r, projectID) {
		return
	}

	shares, err := h.storage.ListSharesByProject(r.Context(), projectID)
	if err != nil {
		h.logger.Error("failed to list shares", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]ShareResponse, len(shares))
	for i, share := range shares {
		response[i] = shareToResponse(share)
	}

	w.Header().Set("Content-Type", "application/json")
	encErr := json.NewEncoder(w).Encode(response)
	if encErr != nil {
		// Encoding errors are not critical for list response
		_ = encErr
	}
}

// CreateShareRequest is the request body for POST /share
type CreateShareRequest struct {
	ProjectID int64   `json:"project_id"`
	ShareName string  `json:"share_name"`
	WidgetIDs []int64 `json:"widget_id_array"`
	ExpiresAt *string `json:"expires_at"`
}

// HandleCreateShare creates a public dashboard share link
// POST /share
func (h *Handler) HandleCreateShare(w http.ResponseWriter, r *http.Request) {
	var req CreateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.ShareName) == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed, "Share name is required")
		return
	}

	if !h.requireProject(w, r, req.ProjectID) {
		return
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid expires_at timestamp")
			return
		}
		expiresAt = &t
	}

	token, err := storage.GenerateKeyMaterial(16)
	if err != nil {
		h.logger.Error("failed to generate share token", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	share, err := h.storage.CreateShare(r.Context(), req.ProjectID, token, req.ShareName, req.WidgetIDs, expiresAt)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Project not found")
			return
		}
		h.logger.Error("failed to create share", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("share created", "share_id", share.ID, "project_id", share.ProjectID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	encErr := json.NewEncoder(w).Encode(shareToResponse(share))
	if encErr != nil {
		_ = encErr
	}
}

// UpdateShareRequest is the request body for PUT /share.
// Absent fields are left unchanged.
type UpdateShareRequest struct {
	ShareID   int64   `json:"share_id"`
	ShareName *string `json:"share_name"`
	WidgetIDs []int64 `json:"widget_id_array"`
	IsActive  *bool   `json:"is_active"`
	ExpiresAt *string `json:"expires_at"`
}

// HandleUpdateShare applies a partial patch to a share
// PUT /share
func (h *Handler) HandleUpdateShare(w http.ResponseWriter, r *http.Request) {
	var req UpdateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if req.ShareID <= 0 {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "share_id is required")
		return
	}

	existing, err := h.storage.GetShare(r.Context(), req.ShareID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Share not found")
			return
		}
		h.logger.Error("failed to get share", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	if !h.requireProject(w, r, existing.ProjectID) {
		return
	}

	patch := &storage.SharePatch{
		Name:      req.ShareName,
		WidgetIDs: req.WidgetIDs,
		Active:    req.IsActive,
	}
	if req.ExpiresAt != nil {
		t, err := time.Parse(time.RFC3339, *req.ExpiresAt)
		if err != nil {
			WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid expires_at timestamp")
			return
		}
		patch.ExpiresAt = &t
	}

	share, err := h.storage.UpdateShare(r.Context(), req.ShareID, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Share not found")
			return
		}
		h.logger.Error("failed to update share", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("share updated", "share_id", share.ID)

	w.Header().Set("Content-Type", "application/json")
	encErr := json.NewEncoder(w).Encode(shareToResponse(share))
	if encErr != nil {
		_ = encErr
	}
}

// HandleDeleteShare deletes a share
// DELETE /share/{id}
func (h *Handler) HandleDeleteShare(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(w, r)
	if !ok {
		return
	}

	existing, err := h.storage.GetShare(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Share not found")
			return
		}
		h.logger.Error("failed to get share", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	if !h.requireProject(w, r, existing.ProjectID) {
		return
	}

	if err := h.storage.DeleteShare(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Share not found")
			return
		}
		h.logger.Error("failed to delete share", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("share deleted", "share_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// PublicDashboardResponse is the unauthenticated view of a shared dashboard.
type PublicDashboardResponse struct {
	ShareName string  `json:"share_name"`
	ProjectID int64   `json:"project_id"`
	WidgetIDs []int64 `json:"widget_id_array"`
	CreatedAt string  `json:"created_at"`
}

// HandlePublicDashboard resolves a public share token
// GET /public/dashboard/{token}
// Inactive or expired shares are indistinguishable from missing ones.
func (h *Handler) HandlePublicDashboard(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Dashboard not found")
		return
	}

	share, err := h.storage.GetShareByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Dashboard not found")
			return
		}
		h.logger.Error("failed to get share by token", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	if !share.Active || (share.ExpiresAt != nil && share.ExpiresAt.Before(time.Now())) {
		WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Dashboard not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	encErr := json.NewEncoder(w).Encode(PublicDashboardResponse{
		ShareName: share.Name,
		ProjectID: share.ProjectID,
		WidgetIDs: share.WidgetIDs,
		CreatedAt: formatTime(share.CreatedAt),
	})
	if encErr != nil {
		_ = encErr
	}
}
