// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/leadgate/leadgate/internal/auth"
	"github.com/leadgate/leadgate/internal/model"
	"github.com/leadgate/leadgate/internal/repository"
)

// Service errors.
var (
	ErrInvalidProjectID   = errors.New("invalid project id")
	ErrReservedProjectID  = errors.New("project id is reserved")
	ErrInvalidProjectName = errors.New("invalid project name")
	ErrProjectIDTaken     = errors.New("project id already taken")
	ErrProjectNotFound    = errors.New("project not found")
)

// Project id rules: 3-50 chars, alphanumeric + hyphen, client-chosen.
var projectIDRegex = regexp.MustCompile(`^[a-zA-Z0-9-]{3,50}$`)

// reservedProjectIDs cannot be used as project ids; they collide with
// system routes or invite abuse.
var reservedProjectIDs = map[string]bool{
	"api":      true,
	"admin":    true,
	"healthz":  true,
	"readyz":   true,
	"leads":    true,
	"projects": true,
	"accounts": true,
	"auth":     true,
	"public":   true,
	"private":  true,
}

const maxProjectNameLength = 200

// ProjectService handles project lifecycle.
type ProjectService struct {
	repo   *repository.Repository
	logger *slog.Logger

	// leadDeleteBatchSize bounds each cascade delete batch to respect
	// statement-size ceilings of the store.
	leadDeleteBatchSize int
}

// NewProjectService creates a ProjectService.
func NewProjectService(repo *repository.Repository, logger *slog.Logger, leadDeleteBatchSize int) *ProjectService {
	if leadDeleteBatchSize <= 0 {
		leadDeleteBatchSize = 500
	}
	return &ProjectService{
		repo:                repo,
		logger:              logger,
		leadDeleteBatchSize: leadDeleteBatchSize,
	}
}

// CreateProjectInput is the validated-at-the-edge creation request.
type CreateProjectInput struct {
	ProjectID string
	Name      string
}

// CreateProject creates a project with a fresh public key secret and a
// zero lead counter.
func (s *ProjectService) CreateProject(ctx context.Context, tenant *model.TenantContext, input CreateProjectInput) (*model.Project, error) {
	if err := validateProjectID(input.ProjectID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" || len(name) > maxProjectNameLength {
		return nil, ErrInvalidProjectName
	}

	secret, err := auth.NewPublicSecret()
	if err != nil {
		return nil, fmt.Errorf("generate public key: %w", err)
	}

	now := time.Now().UTC()
	project := &model.Project{
		ID:           input.ProjectID,
		AccountID:    tenant.AccountID,
		Name:         name,
		PublicKey:    secret,
		LeadsCount:   0,
		CreatedAt:    now,
		LastModified: now,
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		if errors.Is(err, repository.ErrProjectIDTaken) {
			return nil, ErrProjectIDTaken
		}
		return nil, fmt.Errorf("create project: %w", err)
	}

	return project, nil
}

// GetProject retrieves one of the tenant's projects.
func (s *ProjectService) GetProject(ctx context.Context, tenant *model.TenantContext, projectID string) (*model.Project, error) {
	project, err := s.repo.GetProject(ctx, tenant.AccountID, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// ListProjects retrieves all of the tenant's projects, newest first.
func (s *ProjectService) ListProjects(ctx context.Context, tenant *model.TenantContext) ([]*model.Project, error) {
	projects, err := s.repo.ListProjects(ctx, tenant.AccountID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// DeleteProject cascades to all leads, then removes the project row.
// The cascade runs in bounded batches and is not atomic end to end: a
// failure mid-way leaves already-deleted leads deleted, and a retry
// continues from there instead of failing.
func (s *ProjectService) DeleteProject(ctx context.Context, tenant *model.TenantContext, projectID string) error {
	// Existence check up front so a missing project is a clean 404
	// rather than a silent no-op cascade.
	if _, err := s.repo.GetProject(ctx, tenant.AccountID, projectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("get project: %w", err)
	}

	var total int64
	for {
		deleted, err := s.repo.DeleteLeadBatch(ctx, tenant.AccountID, projectID, s.leadDeleteBatchSize)
		if err != nil {
			return fmt.Errorf("delete lead batch after %d leads: %w", total, err)
		}
		total += deleted
		if deleted == 0 {
			break
		}
	}

	if err := s.repo.DeleteProject(ctx, tenant.AccountID, projectID); err != nil {
		if errors.Is(err, repository.ErrProjectNotFound) {
			// Lost a race with a concurrent delete; the outcome the
			// caller asked for holds either way.
			return nil
		}
		return fmt.Errorf("delete project: %w", err)
	}

	s.logger.Info("project_deleted",
		"account_id", tenant.AccountID,
		"project_id", projectID,
		"leads_deleted", total,
	)

	return nil
}

func validateProjectID(id string) error {
	if !projectIDRegex.MatchString(id) {
		return ErrInvalidProjectID
	}
	if reservedProjectIDs[strings.ToLower(id)] {
		return ErrReservedProjectID
	}
	return nil
}
