package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/leadgate/leadgate/internal/model"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema drops and recreates every table for tests. Migrations are
// applied in reverse order on the way down so foreign keys unwind cleanly.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	down := []string{
		"000003_leads.down.sql",
		"000002_projects.down.sql",
		"000001_accounts.down.sql",
	}
	up := []string{
		"000001_accounts.up.sql",
		"000002_projects.up.sql",
		"000003_leads.up.sql",
	}

	for _, name := range down {
		sql, err := os.ReadFile(filepath.Join(root, "migrations", name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}

	for _, name := range up {
		sql, err := os.ReadFile(filepath.Join(root, "migrations", name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestAccount creates a test account with sensible defaults.
func NewTestAccount(t testing.TB, id string) *model.Account {
	t.Helper()
	now := time.Now().UTC()
	return &model.Account{
		ID:               id,
		Email:            id + "@example.com",
		Name:             "Test Account",
		PrivateKeyHash:   fmt.Sprintf("hash-%d", now.UnixNano()),
		PrivateKeyPrefix: "abcdef",
		CreatedAt:        now,
		LastModified:     now,
	}
}

// NewTestProject creates a test project with sensible defaults.
func NewTestProject(t testing.TB, accountID, projectID string) *model.Project {
	t.Helper()
	now := time.Now().UTC()
	return &model.Project{
		ID:           projectID,
		AccountID:    accountID,
		Name:         "Test Project",
		PublicKey:    fmt.Sprintf("%032x", now.UnixNano()),
		LeadsCount:   0,
		CreatedAt:    now,
		LastModified: now,
	}
}

// NewTestLead creates a test lead with sensible defaults. The sequence
// number is left unset; the ledger assigns it at insert time.
func NewTestLead(t testing.TB, accountID, projectID, id string) *model.Lead {
	t.Helper()
	return &model.Lead{
		ID:        id,
		AccountID: accountID,
		ProjectID: projectID,
		Lead:      model.Payload{"email": []byte(`"lead@example.com"`)},
		Tracking:  model.Payload{},
		System: model.LeadSystem{
			IP:      "203.0.113.10",
			Created: time.Now().UTC(),
		},
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
