package model

import "time"

// Project is a lead-capture bucket owned by one Account.
// The ID is client-chosen at creation and unique within the account.
type Project struct {
	ID        string `json:"projectId"`
	AccountID string `json:"accountId"`
	Name      string `json:"name"`

	// PublicKey is the project-scoped secret half of the public API
	// key. Stored as-is: it grants lead-creation rights only and the
	// owner must be able to re-read it to embed it in forms.
	PublicKey string `json:"-"`

	// LeadsCount is a denormalized counter, mutated only inside the
	// same transaction that creates or deletes a lead. It also assigns
	// each lead's sequence number.
	LeadsCount int64 `json:"leadsCount"`

	CreatedAt    time.Time `json:"created"`
	LastModified time.Time `json:"lastModified"`
}
