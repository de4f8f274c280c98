// Package model defines domain entities for the application.
package model

import "time"

// Account is the top-level tenant entity. The ID is the subject
// assigned by the external identity provider.
type Account struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	PrivateKeyHash   string    `json:"-"` // Never serialize
	PrivateKeyPrefix string    `json:"-"`
	CreatedAt        time.Time `json:"created"`
	LastModified     time.Time `json:"lastModified"`
}
