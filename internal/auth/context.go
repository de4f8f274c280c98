package auth

import (
	"context"

	"github.com/leadgate/leadgate/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const tenantContextKey contextKey = "tenant_context"

// ContextWithTenant adds a resolved TenantContext to the context.
func ContextWithTenant(ctx context.Context, tenant *model.TenantContext) context.Context {
	return context.WithValue(ctx, tenantContextKey, tenant)
}

// TenantFromContext retrieves the TenantContext from the context.
// Returns nil if not present.
func TenantFromContext(ctx context.Context) *model.TenantContext {
	tenant, ok := ctx.Value(tenantContextKey).(*model.TenantContext)
	if !ok {
		return nil
	}
	return tenant
}

// MustTenantFromContext retrieves the TenantContext from the context.
// Panics if not present (use only behind auth middleware).
func MustTenantFromContext(ctx context.Context) *model.TenantContext {
	tenant := TenantFromContext(ctx)
	if tenant == nil {
		panic("tenant context not found - ensure auth middleware is applied")
	}
	return tenant
}
