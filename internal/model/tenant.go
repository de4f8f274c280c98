package model

// Tier marks which credential scheme resolved the tenant.
type Tier string

const (
	// TierOwnerToken grants owner access via a verified identity token.
	TierOwnerToken Tier = "owner-token"
	// TierOwnerKey grants owner access via the private account key.
	TierOwnerKey Tier = "owner-key"
	// TierProjectKey grants lead-creation rights into one project.
	TierProjectKey Tier = "project-key"
)

// IsOwner reports whether the tier grants full account access.
func (t Tier) IsOwner() bool {
	return t == TierOwnerToken || t == TierOwnerKey
}

// TenantContext is the per-request identity produced by the auth
// resolver. Ephemeral; never persisted.
type TenantContext struct {
	AccountID string
	// ProjectID is set only for TierProjectKey.
	ProjectID string
	Tier      Tier
}
