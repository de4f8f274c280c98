package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/leadgate/leadgate/internal/model"
)

// Resolution failures, mapped to HTTP codes by the middleware.
var (
	// ErrMissingCredentials means no usable credential was presented.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidKey means an API key was presented but matched nothing.
	ErrInvalidKey = errors.New("invalid API key")
	// ErrAccountNotFound means a verified token's subject has no account.
	ErrAccountNotFound = errors.New("account not found")
)

// AccountDirectory looks up accounts for credential resolution.
// Implemented by the repository. Lookups return (nil, nil) on miss.
type AccountDirectory interface {
	GetAccount(ctx context.Context, id string) (*model.Account, error)
	GetAccountsByKeyPrefix(ctx context.Context, prefix string) ([]*model.Account, error)
}

// ProjectDirectory looks up projects for public-key resolution.
// Implemented by the repository. Lookups return (nil, nil) on miss.
type ProjectDirectory interface {
	GetProjectByPublicKey(ctx context.Context, accountID, publicKey string) (*model.Project, error)
}

// Credentials are the raw values extracted from request headers.
type Credentials struct {
	BearerToken string // identity token
	APIKey      string // private key (owner tier) or public key (project tier)
}

// Resolver turns request credentials into a TenantContext. It holds no
// state of its own; all lookups go through the injected collaborators.
type Resolver struct {
	verifier TokenVerifier
	accounts AccountDirectory
	projects ProjectDirectory
}

// NewResolver creates a Resolver.
func NewResolver(verifier TokenVerifier, accounts AccountDirectory, projects ProjectDirectory) *Resolver {
	return &Resolver{
		verifier: verifier,
		accounts: accounts,
		projects: projects,
	}
}

// ResolveOwner resolves owner-tier credentials for account and project
// management endpoints. The bearer token takes precedence when both
// credentials are present, so automation can keep using a static key
// on the same endpoints.
func (r *Resolver) ResolveOwner(ctx context.Context, creds Credentials) (*model.TenantContext, error) {
	if creds.BearerToken != "" {
		subject, err := r.verifier.Verify(ctx, creds.BearerToken)
		if err != nil {
			return nil, ErrInvalidToken
		}

		account, err := r.accounts.GetAccount(ctx, subject)
		if err != nil {
			return nil, fmt.Errorf("lookup account %q: %w", subject, err)
		}
		if account == nil {
			return nil, ErrAccountNotFound
		}

		return &model.TenantContext{AccountID: account.ID, Tier: model.TierOwnerToken}, nil
	}

	if creds.APIKey != "" {
		prefix, err := ParsePrivateKey(creds.APIKey)
		if err != nil {
			return nil, ErrInvalidKey
		}

		candidates, err := r.accounts.GetAccountsByKeyPrefix(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("lookup accounts by prefix: %w", err)
		}

		// Verify against every candidate; prefixes can collide.
		for _, account := range candidates {
			match, err := VerifySecret(creds.APIKey, account.PrivateKeyHash)
			if err != nil {
				continue
			}
			if match {
				return &model.TenantContext{AccountID: account.ID, Tier: model.TierOwnerKey}, nil
			}
		}

		return nil, ErrInvalidKey
	}

	return nil, ErrMissingCredentials
}

// ResolveProject resolves the public project key used for lead
// ingestion. The key alone identifies both the account and the
// project; per-account public-key uniqueness is enforced by the store
// at project creation, not re-checked here.
func (r *Resolver) ResolveProject(ctx context.Context, creds Credentials) (*model.TenantContext, error) {
	if creds.APIKey == "" {
		return nil, ErrMissingCredentials
	}

	accountID, secret, err := DecodePublicKey(creds.APIKey)
	if err != nil {
		return nil, ErrInvalidKey
	}

	account, err := r.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("lookup account %q: %w", accountID, err)
	}
	if account == nil {
		return nil, ErrInvalidKey
	}

	project, err := r.projects.GetProjectByPublicKey(ctx, accountID, secret)
	if err != nil {
		return nil, fmt.Errorf("lookup project by public key: %w", err)
	}
	if project == nil {
		return nil, ErrInvalidKey
	}

	return &model.TenantContext{
		AccountID: account.ID,
		ProjectID: project.ID,
		Tier:      model.TierProjectKey,
	}, nil
}
