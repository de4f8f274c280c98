package model

import (
	"encoding/json"
	"time"
)

// Payload is opaque caller-supplied key/value data. The server never
// interprets its schema.
type Payload map[string]json.RawMessage

// LeadSystem is the server-assigned envelope on every lead.
type LeadSystem struct {
	IP      string    `json:"ip"`
	Created time.Time `json:"created"`

	// LeadNum is the sequence number assigned atomically at creation,
	// equal to the project's LeadsCount after increment. Strictly
	// increasing within a project; never reassigned on delete.
	LeadNum int64 `json:"leadNum"`
}

// Lead is one captured submission under a Project.
type Lead struct {
	ID        string     `json:"id"`
	AccountID string     `json:"-"`
	ProjectID string     `json:"-"`
	Lead      Payload    `json:"lead"`
	Tracking  Payload    `json:"tracking,omitempty"`
	System    LeadSystem `json:"system"`
}
