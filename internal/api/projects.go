package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/datacanvas/datacanvas/internal/auth"
)

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ProjectID   int64  `json:"project_id"`
	ProjectName string `json:"project_name"`
	CreatedAt   string `json:"created_at"`
}

// HandleListProjects returns the projects the session may act on
// GET /projects
func (h *Handler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "No session")
		return
	}

	projects, err := h.storage.ListProjects(r.Context())
	if err != nil {
		h.logger.Error("failed to list projects", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	response := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		if !session.GrantsProject(p.ID) {
			continue
		}
		response = append(response, ProjectResponse{
			ProjectID:   p.ID,
			ProjectName: p.Name,
			CreatedAt:   formatTime(p.CreatedAt),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	encErr := json.NewEncoder(w).Encode(response)
	if encErr != nil {
		// Encoding errors are not critical for list response
		_ = encErr
	}
}

// CreateProjectRequest is the request body for POST /projects
type CreateProjectRequest struct {
	ProjectName string `json:"project_name"`
}

// HandleCreateProject creates a new project
// POST /projects
// Only unscoped sessions may create projects.
func (h *Handler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		WriteError(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "No session")
		return
	}
	if session.ProjectID != nil {
		WriteError(w, http.StatusForbidden, ErrCodeForbidden,
			"Project-scoped sessions cannot create projects")
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	if strings.TrimSpace(req.ProjectName) == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeValidationFailed, "Project name is required")
		return
	}

	project, err := h.storage.CreateProject(r.Context(), req.ProjectName)
	if err != nil {
		h.logger.Error("failed to create project", "error", err)
		WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
		return
	}

	h.logger.Info("project created", "project_id", project.ID, "project_name", project.Name)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	encErr := json.NewEncoder(w).Encode(ProjectResponse{
		ProjectID:   project.ID,
		ProjectName: project.Name,
		CreatedAt:   formatTime(project.CreatedAt),
	})
	if encErr != nil {
		_ = encErr
	}
}
