package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leadgate/leadgate/internal/model"
)

const (
	// tenantCachePrefix is the Redis key prefix for resolved tenants.
	tenantCachePrefix = "auth:tenant:"
	// tenantCacheTTL bounds how long a revoked or rotated credential
	// keeps resolving.
	tenantCacheTTL = 5 * time.Minute
)

// cachedTenant is the wire form of a cached TenantContext.
type cachedTenant struct {
	AccountID string `json:"account_id"`
	ProjectID string `json:"project_id,omitempty"`
	Tier      string `json:"tier"`
}

// GetTenant retrieves a cached tenant context by credential digest.
// Returns nil on a miss; a corrupted entry is treated as a miss.
func (c *Cache) GetTenant(ctx context.Context, cacheKey string) (*model.TenantContext, error) {
	data, err := c.client.Get(ctx, tenantCachePrefix+cacheKey).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var cached cachedTenant
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, nil //nolint:nilerr
	}

	return &model.TenantContext{
		AccountID: cached.AccountID,
		ProjectID: cached.ProjectID,
		Tier:      model.Tier(cached.Tier),
	}, nil
}

// SetTenant caches a resolved tenant context keyed by credential
// digest. The digest is a hash of the presented credential, never the
// credential itself.
func (c *Cache) SetTenant(ctx context.Context, cacheKey string, tenant *model.TenantContext) error {
	data, err := json.Marshal(cachedTenant{
		AccountID: tenant.AccountID,
		ProjectID: tenant.ProjectID,
		Tier:      string(tenant.Tier),
	})
	if err != nil {
		return fmt.Errorf("marshal tenant context: %w", err)
	}

	return c.client.Set(ctx, tenantCachePrefix+cacheKey, data, tenantCacheTTL).Err()
}

// DeleteTenant removes a cached tenant context, e.g. when a project is
// deleted and its public key must stop resolving promptly.
func (c *Cache) DeleteTenant(ctx context.Context, cacheKey string) error {
	return c.client.Del(ctx, tenantCachePrefix+cacheKey).Err()
}
