package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/datacanvas/datacanvas/internal/storage"
)

// DeviceResponse represents a device in API responses.
type DeviceResponse struct {
	DeviceID    int64  `json:"device_id"`
	DeviceName  string `json:"device_name"`
	Description string `json:"description"`
}

// HandleListDevices returns all devices registered under a project
// GET /device?project_id={id}
func (h *Handler) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	projectID, ok := parseProjectIDQuery(w, r)
	if !ok {
		return
	}
	if !h.requireProject(w, r, projectID) {
		return
	}

	devices, err := h.storage.ListDevicesByProject(r.Context(), projectID)
	if err != nil {
		h.logger.Error("failed to list devices", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]DeviceResponse, len(devices))
	for i, d := range devices {
		response[i] = DeviceResponse{
			DeviceID:    d.ID,
			DeviceName:  d.Name,
			Description: d.Description,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	encErr := json.NewEncoder(w).Encode(response)
	if encErr != nil {
		// Encoding errors are not critical for list response
		_ = encErr
	}
}

// CreateDeviceRequest is the request body for POST /device
type CreateDeviceRequest struct {
	ProjectID   int64  `json:"project_id"`
	DeviceName  string `json:"device_name"`
	Description string `json:"description"`
}

// HandleCreateDevice registers a device under a project
// POST /device
func (h *Handler) HandleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req CreateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.DeviceName) == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed, "Device name is required")
		return
	}

	if !h.requireProject(w, r, req.ProjectID) {
		return
	}

	device, err := h.storage.CreateDevice(r.Context(), req.ProjectID, req.DeviceName, req.Description)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			WriteError(w, http.StatusNotFound, ErrCodeNotFound, "Project not found")
			return
		}
		h.logger.Error("failed to create device", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("device created", "device_id", device.ID, "project_id", device.ProjectID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	encErr := json.NewEncoder(w).Encode(DeviceResponse{
		DeviceID:    device.ID,
		DeviceName:  device.Name,
		Description: device.Description,
	})
	if encErr != nil {
		_ = encErr
	}
}
