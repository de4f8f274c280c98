package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/leadgate/leadgate/internal/model"
	"github.com/leadgate/leadgate/internal/query"
)

// ErrLeadNotFound indicates a missing lead.
var ErrLeadNotFound = errors.New("lead not found")

const leadColumns = `id, account_id, project_id, payload, tracking, ip, lead_num, created_at`

// CreateLead atomically assigns the next sequence number and inserts
// the lead. One transaction: lock the project row, bump leads_count,
// insert the lead stamped with the new count. The transaction
// primitive owns commit/rollback; there is no application-level retry,
// so a counter increment can never be applied twice. The project row
// lock serializes concurrent creates on the same project.
//
// On success lead.System.LeadNum holds the assigned sequence number.
func (r *Repository) CreateLead(ctx context.Context, lead *model.Lead) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var count int64
		err := tx.QueryRow(ctx,
			`SELECT leads_count FROM projects WHERE account_id = $1 AND id = $2 FOR UPDATE`,
			lead.AccountID, lead.ProjectID,
		).Scan(&count)
		if errors.Is(err, pgx.ErrNoRows) {
			// Abort before any write.
			return ErrProjectNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read project counter: %w", err)
		}

		newCount := count + 1

		_, err = tx.Exec(ctx,
			`UPDATE projects SET leads_count = $3, last_modified = $4 WHERE account_id = $1 AND id = $2`,
			lead.AccountID, lead.ProjectID, newCount, lead.System.Created,
		)
		if err != nil {
			return fmt.Errorf("failed to update project counter: %w", err)
		}

		lead.System.LeadNum = newCount

		_, err = tx.Exec(ctx,
			`INSERT INTO leads (id, account_id, project_id, payload, tracking, ip, lead_num, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			lead.ID,
			lead.AccountID,
			lead.ProjectID,
			lead.Lead,
			lead.Tracking,
			lead.System.IP,
			lead.System.LeadNum,
			lead.System.Created,
		)
		if err != nil {
			return fmt.Errorf("failed to insert lead: %w", err)
		}

		return nil
	})
}

// DeleteLead removes one lead and decrements the project counter in
// the same transaction. Sequence numbers of remaining leads are never
// reassigned.
func (r *Repository) DeleteLead(ctx context.Context, accountID, projectID, leadID string) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var count int64
		err := tx.QueryRow(ctx,
			`SELECT leads_count FROM projects WHERE account_id = $1 AND id = $2 FOR UPDATE`,
			accountID, projectID,
		).Scan(&count)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProjectNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read project counter: %w", err)
		}

		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM leads WHERE account_id = $1 AND project_id = $2 AND id = $3)`,
			accountID, projectID, leadID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check lead existence: %w", err)
		}
		if !exists {
			return ErrLeadNotFound
		}

		_, err = tx.Exec(ctx,
			`UPDATE projects SET leads_count = $3, last_modified = NOW() WHERE account_id = $1 AND id = $2`,
			accountID, projectID, count-1,
		)
		if err != nil {
			return fmt.Errorf("failed to update project counter: %w", err)
		}

		_, err = tx.Exec(ctx,
			`DELETE FROM leads WHERE account_id = $1 AND project_id = $2 AND id = $3`,
			accountID, projectID, leadID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete lead: %w", err)
		}

		return nil
	})
}

// GetLead retrieves one lead by id.
func (r *Repository) GetLead(ctx context.Context, accountID, projectID, leadID string) (*model.Lead, error) {
	sql := `SELECT ` + leadColumns + ` FROM leads WHERE account_id = $1 AND project_id = $2 AND id = $3`

	lead, err := scanLead(r.pool.QueryRow(ctx, sql, accountID, projectID, leadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	return lead, nil
}

// ListLeads returns one ordered page of leads per the validated
// options. Cursor pagination: startAfter is the ordering-field value
// of the last item of the previous page, compared strictly against the
// ordering expression. The lead id is a secondary sort for
// deterministic output. There is no snapshot isolation across pages;
// concurrent writes between fetches may shift later pages.
func (r *Repository) ListLeads(ctx context.Context, accountID, projectID string, opts *query.Options) ([]*model.Lead, error) {
	if opts == nil {
		opts = query.DefaultOptions()
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + leadColumns + ` FROM leads WHERE account_id = $1 AND project_id = $2`)
	args := []any{accountID, projectID}

	expr, cast, args := leadOrderExpr(opts.OrderBy, args)

	if opts.StartAfter != "" {
		op := ">"
		if opts.Direction == query.Desc {
			op = "<"
		}
		args = append(args, opts.StartAfter)
		fmt.Fprintf(&sb, " AND %s %s $%d%s", expr, op, len(args), cast)
	}

	dir := "ASC"
	if opts.Direction == query.Desc {
		dir = "DESC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s, id %s", expr, dir, dir)

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []*model.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leads: %w", err)
	}

	return leads, nil
}

// DeleteLeadBatch deletes up to batchSize leads under a project and
// reports how many went. Callers loop until zero; each batch is atomic
// but the loop as a whole is not, so a crash mid-cascade leaves a
// partially-deleted project that a retry continues cleaning up.
func (r *Repository) DeleteLeadBatch(ctx context.Context, accountID, projectID string, batchSize int) (int64, error) {
	sql := `
		DELETE FROM leads
		WHERE id IN (
			SELECT id FROM leads WHERE account_id = $1 AND project_id = $2 LIMIT $3
		)
	`

	result, err := r.pool.Exec(ctx, sql, accountID, projectID, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to delete lead batch: %w", err)
	}

	return result.RowsAffected(), nil
}

// leadOrderExpr maps a validated sort field onto a SQL expression.
// Envelope fields are fixed columns; payload fields are JSONB keys
// passed as bind parameters, never spliced into the statement. The
// cast applies to the cursor parameter so comparisons use the column's
// native type.
func leadOrderExpr(field query.SortField, args []any) (expr, cast string, out []any) {
	switch field.Region {
	case query.RegionSystem:
		switch field.Key {
		case query.SystemLeadNum:
			return "lead_num", "::bigint", args
		case query.SystemIP:
			return "ip", "", args
		}
		return "created_at", "::timestamptz", args
	case query.RegionTracking:
		args = append(args, field.Key)
		return fmt.Sprintf("tracking->>$%d", len(args)), "", args
	default:
		args = append(args, field.Key)
		return fmt.Sprintf("payload->>$%d", len(args)), "", args
	}
}

func scanLead(row pgx.Row) (*model.Lead, error) {
	var lead model.Lead
	err := row.Scan(
		&lead.ID,
		&lead.AccountID,
		&lead.ProjectID,
		&lead.Lead,
		&lead.Tracking,
		&lead.System.IP,
		&lead.System.LeadNum,
		&lead.System.Created,
	)
	return &lead, err
}
