package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadgate/leadgate/internal/auth"
	"github.com/leadgate/leadgate/internal/handler/dto"
	"github.com/leadgate/leadgate/internal/service"
)

// ProjectHandler handles HTTP requests for project operations.
// All routes sit behind owner-tier auth middleware.
type ProjectHandler struct {
	svc    *service.ProjectService
	logger *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(svc *service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := auth.MustTenantFromContext(r.Context())

	var req dto.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateProjectInput{
		ProjectID: req.ProjectID,
		Name:      req.Name,
	}

	project, err := h.svc.CreateProject(r.Context(), tenant, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("project_created",
		"account_id", project.AccountID,
		"project_id", project.ID,
	)

	writeJSON(w, http.StatusCreated, dto.ToProjectResponse(project))
}

// Get handles GET /api/v1/projects/{projectID}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant := auth.MustTenantFromContext(r.Context())

	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Project ID is required")
		return
	}

	project, err := h.svc.GetProject(r.Context(), tenant, projectID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectResponse(project))
}

// List handles GET /api/v1/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant := auth.MustTenantFromContext(r.Context())

	projects, err := h.svc.ListProjects(r.Context(), tenant)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProjectListResponse(projects))
}

// Delete handles DELETE /api/v1/projects/{projectID}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant := auth.MustTenantFromContext(r.Context())

	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Project ID is required")
		return
	}

	if err := h.svc.DeleteProject(r.Context(), tenant, projectID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *ProjectHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		h.writeError(w, http.StatusNotFound, "PROJECT_NOT_FOUND", "Project not found")
	case errors.Is(err, service.ErrProjectIDTaken):
		h.writeError(w, http.StatusConflict, "PROJECT_ID_TAKEN", "Project ID already taken")
	case errors.Is(err, service.ErrInvalidProjectID):
		h.writeError(w, http.StatusBadRequest, "INVALID_PROJECT_ID", "Project ID must be 3-50 alphanumeric or hyphen characters")
	case errors.Is(err, service.ErrReservedProjectID):
		h.writeError(w, http.StatusBadRequest, "RESERVED_PROJECT_ID", "Project ID is reserved")
	case errors.Is(err, service.ErrInvalidProjectName):
		h.writeError(w, http.StatusBadRequest, "INVALID_PROJECT_NAME", "Project name is required")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *ProjectHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
