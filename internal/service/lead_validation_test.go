package service

import (
	"context"
	"errors"
	"testing"

	"github.com/leadgate/leadgate/internal/model"
	"github.com/leadgate/leadgate/internal/query"
)

func TestCreateLeadTierAndValidationErrors(t *testing.T) {
	svc := &LeadService{}

	projectTenant := &model.TenantContext{
		AccountID: "acct-1",
		ProjectID: "landing-page",
		Tier:      model.TierProjectKey,
	}

	tests := []struct {
		name    string
		tenant  *model.TenantContext
		input   CreateLeadInput
		wantErr error
	}{
		{
			name:    "owner_token_cannot_submit",
			tenant:  &model.TenantContext{AccountID: "acct-1", Tier: model.TierOwnerToken},
			input:   CreateLeadInput{Lead: model.Payload{"email": []byte(`"a@b.c"`)}},
			wantErr: ErrForbidden,
		},
		{
			name:    "owner_key_cannot_submit",
			tenant:  &model.TenantContext{AccountID: "acct-1", Tier: model.TierOwnerKey},
			input:   CreateLeadInput{Lead: model.Payload{"email": []byte(`"a@b.c"`)}},
			wantErr: ErrForbidden,
		},
		{
			name:    "empty_lead",
			tenant:  projectTenant,
			input:   CreateLeadInput{},
			wantErr: ErrEmptyLead,
		},
		{
			name:    "empty_lead_map",
			tenant:  projectTenant,
			input:   CreateLeadInput{Lead: model.Payload{}},
			wantErr: ErrEmptyLead,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.CreateLead(context.Background(), test.tenant, test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestLeadReadsRequireOwnerTier(t *testing.T) {
	svc := &LeadService{}

	projectTenant := &model.TenantContext{
		AccountID: "acct-1",
		ProjectID: "landing-page",
		Tier:      model.TierProjectKey,
	}

	t.Run("get", func(t *testing.T) {
		_, err := svc.GetLead(context.Background(), projectTenant, "landing-page", "lead-1")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected %v, got %v", ErrForbidden, err)
		}
	})

	t.Run("list", func(t *testing.T) {
		_, err := svc.ListLeads(context.Background(), projectTenant, "landing-page", query.DefaultOptions())
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected %v, got %v", ErrForbidden, err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		err := svc.DeleteLead(context.Background(), projectTenant, "landing-page", "lead-1")
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected %v, got %v", ErrForbidden, err)
		}
	})
}
