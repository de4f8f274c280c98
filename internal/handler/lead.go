package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/leadgate/leadgate/internal/auth"
	"github.com/leadgate/leadgate/internal/handler/dto"
	"github.com/leadgate/leadgate/internal/query"
	"github.com/leadgate/leadgate/internal/service"
)

// LeadHandler handles HTTP requests for lead operations. Create sits
// behind project-key auth; the rest behind owner-tier auth.
type LeadHandler struct {
	svc    *service.LeadService
	logger *slog.Logger
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(svc *service.LeadService, logger *slog.Logger) *LeadHandler {
	return &LeadHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/leads.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant := auth.MustTenantFromContext(r.Context())

	var req dto.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	input := service.CreateLeadInput{
		Lead:     req.Lead,
		Tracking: req.Tracking,
		IP:       clientIP(r),
	}

	lead, err := h.svc.CreateLead(r.Context(), tenant, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToLeadResponse(lead))
}

// Get handles GET /api/v1/projects/{projectID}/leads/{leadID}.
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant := auth.MustTenantFromContext(r.Context())
	projectID := chi.URLParam(r, "projectID")
	leadID := chi.URLParam(r, "leadID")

	lead, err := h.svc.GetLead(r.Context(), tenant, projectID, leadID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLeadResponse(lead))
}

// List handles GET /api/v1/projects/{projectID}/leads.
// Query parameters: orderBy, orderDirection, limit, startAfter.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant := auth.MustTenantFromContext(r.Context())
	projectID := chi.URLParam(r, "projectID")

	opts, err := query.Parse(r.URL.Query())
	if err != nil {
		// Rejected before any store call.
		h.writeError(w, http.StatusConflict, "INVALID_QUERY_OPTIONS", "Invalid pagination or sort parameters")
		return
	}

	leads, err := h.svc.ListLeads(r.Context(), tenant, projectID, opts)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLeadListResponse(leads))
}

// Delete handles DELETE /api/v1/projects/{projectID}/leads/{leadID}.
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant := auth.MustTenantFromContext(r.Context())
	projectID := chi.URLParam(r, "projectID")
	leadID := chi.URLParam(r, "leadID")

	if err := h.svc.DeleteLead(r.Context(), tenant, projectID, leadID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleServiceError maps service errors to HTTP responses.
func (h *LeadHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		h.writeError(w, http.StatusNotFound, "PROJECT_NOT_FOUND", "Project not found")
	case errors.Is(err, service.ErrLeadNotFound):
		h.writeError(w, http.StatusNotFound, "LEAD_NOT_FOUND", "Lead not found")
	case errors.Is(err, service.ErrEmptyLead):
		h.writeError(w, http.StatusBadRequest, "EMPTY_LEAD", "Lead payload is required")
	case errors.Is(err, service.ErrForbidden):
		h.writeError(w, http.StatusForbidden, "FORBIDDEN", "Credential tier does not permit this operation")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *LeadHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// clientIP extracts the submitter address, without the port. RealIP
// middleware has already folded X-Forwarded-For into RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
