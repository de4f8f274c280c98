package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/leadgate/leadgate/internal/model"
	"github.com/leadgate/leadgate/internal/query"
	"github.com/leadgate/leadgate/internal/repository"
)

// Lead service errors.
var (
	ErrLeadNotFound = errors.New("lead not found")
	ErrEmptyLead    = errors.New("lead payload is required")
	ErrForbidden    = errors.New("tenant tier does not permit this operation")
)

// LeadService is the ledger of captured leads. All mutations are
// single store transactions; the service adds validation, identity
// stamping, and tier checks on top of the repository.
type LeadService struct {
	repo   *repository.Repository
	logger *slog.Logger
}

// NewLeadService creates a LeadService.
func NewLeadService(repo *repository.Repository, logger *slog.Logger) *LeadService {
	return &LeadService{
		repo:   repo,
		logger: logger,
	}
}

// CreateLeadInput carries one submitted lead.
type CreateLeadInput struct {
	Lead     model.Payload
	Tracking model.Payload
	IP       string
}

// CreateLead ingests one lead under the tenant's project. Requires a
// project-key tenant; the sequence number is assigned atomically with
// the counter increment inside the store transaction.
func (s *LeadService) CreateLead(ctx context.Context, tenant *model.TenantContext, input CreateLeadInput) (*model.Lead, error) {
	if tenant.Tier != model.TierProjectKey || tenant.ProjectID == "" {
		return nil, ErrForbidden
	}
	if len(input.Lead) == 0 {
		return nil, ErrEmptyLead
	}

	tracking := input.Tracking
	if tracking == nil {
		tracking = model.Payload{}
	}

	lead := &model.Lead{
		ID:        ulid.Make().String(),
		AccountID: tenant.AccountID,
		ProjectID: tenant.ProjectID,
		Lead:      input.Lead,
		Tracking:  tracking,
		System: model.LeadSystem{
			IP:      input.IP,
			Created: time.Now().UTC(),
		},
	}

	if err := s.repo.CreateLead(ctx, lead); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("create lead: %w", err)
	}

	s.logger.Info("lead_created",
		"account_id", lead.AccountID,
		"project_id", lead.ProjectID,
		"lead_id", lead.ID,
		"lead_num", lead.System.LeadNum,
	)

	return lead, nil
}

// GetLead retrieves one lead. Owner tier only.
func (s *LeadService) GetLead(ctx context.Context, tenant *model.TenantContext, projectID, leadID string) (*model.Lead, error) {
	if !tenant.Tier.IsOwner() {
		return nil, ErrForbidden
	}

	lead, err := s.repo.GetLead(ctx, tenant.AccountID, projectID, leadID)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}

	return lead, nil
}

// ListLeads returns one ordered page of the project's leads. Callers
// page forward by passing the last item's ordering-field value as
// startAfter on the next call.
func (s *LeadService) ListLeads(ctx context.Context, tenant *model.TenantContext, projectID string, opts *query.Options) ([]*model.Lead, error) {
	if !tenant.Tier.IsOwner() {
		return nil, ErrForbidden
	}

	// A listing against a missing project is a 404, not an empty page.
	if _, err := s.repo.GetProject(ctx, tenant.AccountID, projectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	leads, err := s.repo.ListLeads(ctx, tenant.AccountID, projectID, opts)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}

	return leads, nil
}

// DeleteLead removes one lead and its counter contribution. Remaining
// leads keep their sequence numbers; nothing is renumbered.
func (s *LeadService) DeleteLead(ctx context.Context, tenant *model.TenantContext, projectID, leadID string) error {
	if !tenant.Tier.IsOwner() {
		return ErrForbidden
	}

	if err := s.repo.DeleteLead(ctx, tenant.AccountID, projectID, leadID); err != nil {
		switch {
		case errors.Is(err, repository.ErrProjectNotFound):
			return ErrProjectNotFound
		case errors.Is(err, repository.ErrLeadNotFound):
			return ErrLeadNotFound
		}
		return fmt.Errorf("delete lead: %w", err)
	}

	s.logger.Info("lead_deleted",
		"account_id", tenant.AccountID,
		"project_id", projectID,
		"lead_id", leadID,
	)

	return nil
}
