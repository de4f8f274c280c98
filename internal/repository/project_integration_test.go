//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/leadgate/leadgate/internal/model"
	"github.com/leadgate/leadgate/internal/testutil"
)

// ============================================================================
// Project Repository Integration Tests
// ============================================================================

func seedAccount(t *testing.T, ctx context.Context, repo *Repository) *model.Account {
	t.Helper()
	account := testutil.NewTestAccount(t, testutil.UniqueID("acct"))
	if err := repo.CreateAccount(ctx, account); err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return account
}

func TestIntegrationProjectRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	account := seedAccount(t, ctx, repo)

	project := testutil.NewTestProject(t, account.ID, "landing-page")

	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	retrieved, err := repo.GetProject(ctx, account.ID, "landing-page")
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if retrieved.Name != project.Name {
		t.Errorf("Name mismatch: got %q, want %q", retrieved.Name, project.Name)
	}
	if retrieved.PublicKey != project.PublicKey {
		t.Errorf("PublicKey mismatch: got %q, want %q", retrieved.PublicKey, project.PublicKey)
	}
	if retrieved.LeadsCount != 0 {
		t.Errorf("LeadsCount = %d, want 0", retrieved.LeadsCount)
	}
}

func TestIntegrationProjectRepository_IDTakenWithinAccount(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	account := seedAccount(t, ctx, repo)

	first := testutil.NewTestProject(t, account.ID, "same-id")
	if err := repo.CreateProject(ctx, first); err != nil {
		t.Fatalf("CreateProject (first) failed: %v", err)
	}

	second := testutil.NewTestProject(t, account.ID, "same-id")
	err := repo.CreateProject(ctx, second)
	if !errors.Is(err, ErrProjectIDTaken) {
		t.Errorf("Expected ErrProjectIDTaken, got: %v", err)
	}
}

func TestIntegrationProjectRepository_SameIDAcrossAccounts(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	accountA := seedAccount(t, ctx, repo)
	accountB := seedAccount(t, ctx, repo)

	// Project ids are scoped per account; no cross-account conflict.
	if err := repo.CreateProject(ctx, testutil.NewTestProject(t, accountA.ID, "shared-id")); err != nil {
		t.Fatalf("CreateProject for account A failed: %v", err)
	}
	if err := repo.CreateProject(ctx, testutil.NewTestProject(t, accountB.ID, "shared-id")); err != nil {
		t.Fatalf("CreateProject for account B failed: %v", err)
	}
}

func TestIntegrationProjectRepository_GetMissing(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	account := seedAccount(t, ctx, repo)

	_, err := repo.GetProject(ctx, account.ID, "nonexistent")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound, got: %v", err)
	}
}

func TestIntegrationProjectRepository_TenantIsolation(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	accountA := seedAccount(t, ctx, repo)
	accountB := seedAccount(t, ctx, repo)

	project := testutil.NewTestProject(t, accountA.ID, "private-project")
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	// Account B cannot see account A's project.
	_, err := repo.GetProject(ctx, accountB.ID, "private-project")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound across tenants, got: %v", err)
	}
}

func TestIntegrationProjectRepository_GetByPublicKey(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	account := seedAccount(t, ctx, repo)

	project := testutil.NewTestProject(t, account.ID, "keyed-project")
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	retrieved, err := repo.GetProjectByPublicKey(ctx, account.ID, project.PublicKey)
	if err != nil {
		t.Fatalf("GetProjectByPublicKey failed: %v", err)
	}
	if retrieved == nil || retrieved.ID != "keyed-project" {
		t.Errorf("unexpected project: %+v", retrieved)
	}

	// Miss returns (nil, nil).
	missing, err := repo.GetProjectByPublicKey(ctx, account.ID, "ffffffffffffffffffffffffffffffff")
	if err != nil {
		t.Fatalf("GetProjectByPublicKey (miss) failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown key, got %+v", missing)
	}
}

func TestIntegrationProjectRepository_List(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	account := seedAccount(t, ctx, repo)

	for _, id := range []string{"alpha", "beta", "gamma"} {
		if err := repo.CreateProject(ctx, testutil.NewTestProject(t, account.ID, id)); err != nil {
			t.Fatalf("CreateProject %s failed: %v", id, err)
		}
	}

	projects, err := repo.ListProjects(ctx, account.ID)
	if err != nil {
		t.Fatalf("ListProjects failed: %v", err)
	}
	if len(projects) != 3 {
		t.Errorf("Expected 3 projects, got %d", len(projects))
	}
}

func TestIntegrationProjectRepository_Delete(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	account := seedAccount(t, ctx, repo)

	project := testutil.NewTestProject(t, account.ID, "doomed")
	if err := repo.CreateProject(ctx, project); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	if err := repo.DeleteProject(ctx, account.ID, "doomed"); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	_, err := repo.GetProject(ctx, account.ID, "doomed")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound after delete, got: %v", err)
	}

	// Deleting again reports not found.
	err = repo.DeleteProject(ctx, account.ID, "doomed")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("Expected ErrProjectNotFound on second delete, got: %v", err)
	}
}
