// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/leadgate/leadgate/internal/auth"
	"github.com/leadgate/leadgate/internal/model"
)

// CreateProjectRequest represents the request body for creating a project.
type CreateProjectRequest struct {
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}

// ProjectResponse represents a project in API responses. The public
// API key is returned assembled so the owner can embed it directly in
// a capture form.
type ProjectResponse struct {
	ProjectID    string    `json:"projectId"`
	AccountID    string    `json:"accountId"`
	Name         string    `json:"name"`
	PublicAPIKey string    `json:"publicApiKey"`
	LeadsCount   int64     `json:"leadsCount"`
	Created      time.Time `json:"created"`
	LastModified time.Time `json:"lastModified"`
}

// ProjectListResponse represents the owner's projects.
type ProjectListResponse struct {
	Data []ProjectResponse `json:"data"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToProjectResponse converts a Project model to ProjectResponse DTO.
func ToProjectResponse(project *model.Project) *ProjectResponse {
	token, err := auth.EncodePublicKey(project.AccountID, project.PublicKey)
	if err != nil {
		// Stored secrets always re-encode; an empty key here means
		// corrupted data, surfaced as an unusable key not a crash.
		token = ""
	}

	return &ProjectResponse{
		ProjectID:    project.ID,
		AccountID:    project.AccountID,
		Name:         project.Name,
		PublicAPIKey: token,
		LeadsCount:   project.LeadsCount,
		Created:      project.CreatedAt,
		LastModified: project.LastModified,
	}
}

// ToProjectListResponse converts a slice of Project models.
func ToProjectListResponse(projects []*model.Project) *ProjectListResponse {
	responses := make([]ProjectResponse, len(projects))
	for i, project := range projects {
		responses[i] = *ToProjectResponse(project)
	}
	return &ProjectListResponse{Data: responses}
}
