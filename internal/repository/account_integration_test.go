//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/leadgate/leadgate/internal/testutil"
)

// ============================================================================
// Account Repository Integration Tests
// ============================================================================

func newRepoTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}

func TestIntegrationAccountRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueID("acct"))

	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	retrieved, err := repo.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if retrieved == nil {
		t.Fatal("GetAccount returned nil for existing account")
	}
	if retrieved.Email != account.Email {
		t.Errorf("Email mismatch: got %q, want %q", retrieved.Email, account.Email)
	}
	if retrieved.PrivateKeyPrefix != account.PrivateKeyPrefix {
		t.Errorf("Prefix mismatch: got %q, want %q", retrieved.PrivateKeyPrefix, account.PrivateKeyPrefix)
	}
}

func TestIntegrationAccountRepository_GetMissing(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account, err := repo.GetAccount(ctx, "nonexistent")
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if account != nil {
		t.Errorf("Expected nil for missing account, got %+v", account)
	}
}

func TestIntegrationAccountRepository_Duplicate(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueID("dup"))

	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount (first) failed: %v", err)
	}

	err := repo.CreateAccount(ctx, account)
	if !errors.Is(err, ErrAccountExists) {
		t.Errorf("Expected ErrAccountExists, got: %v", err)
	}
}

func TestIntegrationAccountRepository_GetByKeyPrefix(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	// Two accounts sharing a prefix, one with a different prefix.
	shared1 := testutil.NewTestAccount(t, testutil.UniqueID("p1"))
	shared1.PrivateKeyPrefix = "aabbcc"
	shared2 := testutil.NewTestAccount(t, testutil.UniqueID("p2"))
	shared2.PrivateKeyPrefix = "aabbcc"
	other := testutil.NewTestAccount(t, testutil.UniqueID("p3"))
	other.PrivateKeyPrefix = "ddeeff"

	if err := repo.CreateAccount(ctx, shared1); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if err := repo.CreateAccount(ctx, shared2); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if err := repo.CreateAccount(ctx, other); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	candidates, err := repo.GetAccountsByKeyPrefix(ctx, "aabbcc")
	if err != nil {
		t.Fatalf("GetAccountsByKeyPrefix failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Errorf("Expected 2 candidates, got %d", len(candidates))
	}
}

func TestIntegrationAccountRepository_UpdateKey(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	account := testutil.NewTestAccount(t, testutil.UniqueID("rot"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if err := repo.UpdateAccountKey(ctx, account.ID, "ffffff", "new-hash"); err != nil {
		t.Fatalf("UpdateAccountKey failed: %v", err)
	}

	retrieved, err := repo.GetAccount(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if retrieved.PrivateKeyPrefix != "ffffff" {
		t.Errorf("Prefix = %q, want ffffff", retrieved.PrivateKeyPrefix)
	}
	if retrieved.PrivateKeyHash != "new-hash" {
		t.Errorf("Hash = %q, want new-hash", retrieved.PrivateKeyHash)
	}
}
