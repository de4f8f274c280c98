package dto

import (
	"time"

	"github.com/leadgate/leadgate/internal/model"
)

// CreateLeadRequest represents the request body for submitting a lead.
// Both payloads are opaque to the server.
type CreateLeadRequest struct {
	Lead     model.Payload `json:"lead"`
	Tracking model.Payload `json:"tracking,omitempty"`
}

// LeadSystemResponse is the server-assigned envelope.
type LeadSystemResponse struct {
	IP      string    `json:"ip"`
	Created time.Time `json:"created"`
	LeadNum int64     `json:"leadNum"`
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID       string             `json:"id"`
	Lead     model.Payload      `json:"lead"`
	Tracking model.Payload      `json:"tracking,omitempty"`
	System   LeadSystemResponse `json:"system"`
}

// LeadListResponse represents one page of leads.
type LeadListResponse struct {
	Data []LeadResponse `json:"data"`
}

// ToLeadResponse converts a Lead model to LeadResponse DTO.
func ToLeadResponse(lead *model.Lead) *LeadResponse {
	return &LeadResponse{
		ID:       lead.ID,
		Lead:     lead.Lead,
		Tracking: lead.Tracking,
		System: LeadSystemResponse{
			IP:      lead.System.IP,
			Created: lead.System.Created,
			LeadNum: lead.System.LeadNum,
		},
	}
}

// ToLeadListResponse converts a page of Lead models.
func ToLeadListResponse(leads []*model.Lead) *LeadListResponse {
	responses := make([]LeadResponse, len(leads))
	for i, lead := range leads {
		responses[i] = *ToLeadResponse(lead)
	}
	return &LeadListResponse{Data: responses}
}
