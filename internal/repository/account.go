package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/leadgate/leadgate/internal/model"
)

// ErrAccountExists indicates a duplicate account id on creation.
var ErrAccountExists = errors.New("account already exists")

// CreateAccount inserts a new account. Account ids come from the
// identity provider; signup is a thin passthrough plus this insert.
func (r *Repository) CreateAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (id, email, name, private_key_prefix, private_key_hash, created_at, last_modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		account.ID,
		account.Email,
		account.Name,
		account.PrivateKeyPrefix,
		account.PrivateKeyHash,
		account.CreatedAt,
		account.LastModified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAccountExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetAccount retrieves an account by id. Returns (nil, nil) on miss so
// the auth resolver can distinguish absence from store failure.
func (r *Repository) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	query := `
		SELECT id, email, name, private_key_prefix, private_key_hash, created_at, last_modified
		FROM accounts
		WHERE id = $1
	`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// GetAccountsByKeyPrefix retrieves all accounts whose private key
// carries the given visible prefix. Callers verify the full key
// against each candidate's hash; prefixes can collide.
func (r *Repository) GetAccountsByKeyPrefix(ctx context.Context, prefix string) ([]*model.Account, error) {
	query := `
		SELECT id, email, name, private_key_prefix, private_key_hash, created_at, last_modified
		FROM accounts
		WHERE private_key_prefix = $1
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts by key prefix: %w", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// UpdateAccountKey replaces the stored private key material, e.g. on
// rotation by provisioning tooling.
func (r *Repository) UpdateAccountKey(ctx context.Context, id, prefix, hash string) error {
	query := `
		UPDATE accounts
		SET private_key_prefix = $2, private_key_hash = $3, last_modified = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id, prefix, hash)
	if err != nil {
		return fmt.Errorf("failed to update account key: %w", err)
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.Name,
		&account.PrivateKeyPrefix,
		&account.PrivateKeyHash,
		&account.CreatedAt,
		&account.LastModified,
	)
	return &account, err
}

// isUniqueViolation checks for a PostgreSQL unique constraint
// violation (error code 23505).
func isUniqueViolation(err error) bool {
	return err != nil && (containsStr(err.Error(), "23505") || containsStr(err.Error(), "duplicate key"))
}

func containsStr(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
