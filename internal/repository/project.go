package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/leadgate/leadgate/internal/model"
)

// Common errors for project repository operations.
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectIDTaken  = errors.New("project id already taken")
)

const projectColumns = `account_id, id, name, public_key, leads_count, created_at, last_modified`

// CreateProject inserts a new project with a zero lead counter.
// A duplicate client-chosen id within the account maps to
// ErrProjectIDTaken; the unique index on (account_id, public_key)
// enforces per-account public-key uniqueness at the same time.
func (r *Repository) CreateProject(ctx context.Context, project *model.Project) error {
	query := `
		INSERT INTO projects (account_id, id, name, public_key, leads_count, created_at, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		project.AccountID,
		project.ID,
		project.Name,
		project.PublicKey,
		project.LeadsCount,
		project.CreatedAt,
		project.LastModified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProjectIDTaken
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetProject retrieves one project owned by the account.
func (r *Repository) GetProject(ctx context.Context, accountID, projectID string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE account_id = $1 AND id = $2`

	project, err := scanProject(r.pool.QueryRow(ctx, query, accountID, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// GetProjectByPublicKey retrieves the project within an account whose
// public key secret matches. Returns (nil, nil) on miss so the auth
// resolver can map absence to its own failure kind.
func (r *Repository) GetProjectByPublicKey(ctx context.Context, accountID, publicKey string) (*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE account_id = $1 AND public_key = $2`

	project, err := scanProject(r.pool.QueryRow(ctx, query, accountID, publicKey))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project by public key: %w", err)
	}

	return project, nil
}

// ListProjects retrieves all projects owned by the account, newest
// first.
func (r *Repository) ListProjects(ctx context.Context, accountID string) ([]*model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE account_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// DeleteProject removes the project row. Lead cascade is done first in
// bounded batches by DeleteLeadBatch; this is the final step.
func (r *Repository) DeleteProject(ctx context.Context, accountID, projectID string) error {
	query := `DELETE FROM projects WHERE account_id = $1 AND id = $2`

	result, err := r.pool.Exec(ctx, query, accountID, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	return nil
}

func scanProject(row pgx.Row) (*model.Project, error) {
	var project model.Project
	err := row.Scan(
		&project.AccountID,
		&project.ID,
		&project.Name,
		&project.PublicKey,
		&project.LeadsCount,
		&project.CreatedAt,
		&project.LastModified,
	)
	return &project, err
}
