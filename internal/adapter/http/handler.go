package http

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/neomorfeo/leadflow/internal/app"
	"github.com/neomorfeo/leadflow/internal/domain"
)

// PartnerRefBody accepts every partner reference shape older clients send.
type PartnerRefBody struct {
	PartnerID string            `json:"partnerId,omitempty" doc:"Partner ID"`
	LegacyID  string            `json:"_id,omitempty" doc:"Partner ID (legacy field)"`
	Partner   *NestedPartnerRef `json:"partner,omitempty" doc:"Partner object (legacy shape)"`
}

// NestedPartnerRef is the legacy {"partner": {"partnerId": ...}} shape.
type NestedPartnerRef struct {
	PartnerID string `json:"partnerId,omitempty"`
}

// Ref normalizes the body to a single partner reference.
func (b PartnerRefBody) Ref() domain.PartnerRef {
	switch {
	case b.PartnerID != "":
		return domain.PartnerRef{ID: b.PartnerID}
	case b.Partner != nil && b.Partner.PartnerID != "":
		return domain.PartnerRef{ID: b.Partner.PartnerID}
	default:
		return domain.PartnerRef{ID: b.LegacyID}
	}
}

// --- Leads ---

type CreateLeadInput struct {
	Body struct {
		ServiceType string       `json:"serviceType" enum:"moving,cleaning" doc:"Requested service"`
		Customer    CustomerBody `json:"customer,omitempty"`
	}
}

type LeadInput struct {
	LeadID string `path:"leadId" doc:"Lead reference"`
}

type LeadOutput struct {
	Body LeadResponse
}

type ListLeadsInput struct {
	Status      string `query:"status" required:"false" doc:"Filter by derived status"`
	ServiceType string `query:"serviceType" required:"false" doc:"Filter by service"`
	PartnerID   string `query:"partnerId" required:"false" doc:"Only leads assigned to this partner"`
	Limit       int    `query:"limit" required:"false" default:"50" minimum:"1" maximum:"500" doc:"Max results"`
	Offset      int    `query:"offset" required:"false" default:"0" minimum:"0" doc:"Pagination offset"`
}

type ListLeadsOutput struct {
	Body []LeadResponse
}

type AuditTrailOutput struct {
	Body []AuditRecordResponse
}

// --- Eligibility and selection ---

type EligiblePartnersInput struct {
	LeadID      string `path:"leadId" doc:"Lead reference"`
	Search      string `query:"search" required:"false" doc:"Free-text partner search"`
	PartnerType string `query:"partnerType" required:"false" doc:"Restrict the search tab to one tier"`
}

type EligiblePartnersOutput struct {
	Body EligiblePartnersResponse
}

// SelectedPartnerBody is one entry of a pending selection.
type SelectedPartnerBody struct {
	PartnerID   string `json:"partnerId" minLength:"1"`
	PartnerType string `json:"partnerType" enum:"basic,exclusive"`
}

type SelectionInput struct {
	LeadID string `path:"leadId" doc:"Lead reference"`
	Body   struct {
		Selected []SelectedPartnerBody `json:"selected,omitempty" doc:"Current selection"`
		Toggle   PartnerRefBody        `json:"toggle" doc:"Partner the operator clicked"`
	}
}

type SelectionOutput struct {
	Body struct {
		Selected []SelectedPartnerBody `json:"selected"`
	}
}

// --- Assignments ---

type CommitAssignmentInput struct {
	LeadID string `path:"leadId" doc:"Lead reference"`
	Body   PartnerRefBody
}

type CommitAssignmentOutput struct {
	Body struct {
		Lead            LeadResponse       `json:"lead"`
		Assignment      AssignmentResponse `json:"assignment"`
		CapacityWarning string             `json:"capacityWarning,omitempty" doc:"Set when the partner is over the weekly quota"`
	}
}

type AssignmentInput struct {
	LeadID       string `path:"leadId" doc:"Lead reference"`
	AssignmentID string `path:"assignmentId" doc:"Assignment ID"`
}

type RejectAssignmentInput struct {
	LeadID       string `path:"leadId" doc:"Lead reference"`
	AssignmentID string `path:"assignmentId" doc:"Assignment ID"`
	Body         struct {
		Reason string `json:"reason" doc:"Why the partner declines the lead"`
	}
}

// --- Cancellation ---

type RequestCancellationInput struct {
	AssignmentID string `path:"assignmentId" doc:"Assignment ID"`
	Body         struct {
		Reason string `json:"reason" doc:"Why the partner wants to cancel"`
	}
}

type AssignmentOutput struct {
	Body AssignmentResponse
}

type ApproveCancellationInput struct {
	LeadID string `path:"leadId" doc:"Lead reference"`
	Body   PartnerRefBody
}

type RejectCancellationInput struct {
	LeadID string `path:"leadId" doc:"Lead reference"`
	Body   struct {
		PartnerRefBody
		Reason string `json:"reason" doc:"Why the request is refused"`
	}
}

type ListCancellationRequestsInput struct {
	Status      string `query:"status" required:"false" doc:"pending, cancellation_approved or cancellation_rejected"`
	PartnerID   string `query:"partnerId" required:"false"`
	ServiceType string `query:"serviceType" required:"false"`
}

type ListCancellationRequestsOutput struct {
	Body []CancellationRequestResponse
}

// --- Partners ---

type SavePartnerInput struct {
	PartnerID string `path:"partnerId" doc:"Partner ID"`
	Body      struct {
		CompanyName        string   `json:"companyName" maxLength:"255"`
		ContactFirstName   string   `json:"contactFirstName,omitempty"`
		ContactLastName    string   `json:"contactLastName,omitempty"`
		Email              string   `json:"email,omitempty"`
		PartnerType        string   `json:"partnerType" enum:"basic,exclusive"`
		Services           []string `json:"services,omitempty"`
		ServiceType        string   `json:"serviceType,omitempty" doc:"Single service (legacy field)"`
		Status             string   `json:"status,omitempty" doc:"Defaults to active"`
		CustomLeadsPerWeek int      `json:"customLeadsPerWeek,omitempty" minimum:"0"`
	}
}

type PartnerInput struct {
	PartnerID string `path:"partnerId" doc:"Partner ID"`
}

type PartnerOutput struct {
	Body PartnerResponse
}

type ListPartnersInput struct {
	Status      string `query:"status" required:"false"`
	PartnerType string `query:"partnerType" required:"false"`
}

type ListPartnersOutput struct {
	Body []PartnerResponse
}

type CapacityInput struct {
	PartnerID   string `path:"partnerId" doc:"Partner ID"`
	ServiceType string `query:"serviceType" enum:"moving,cleaning" required:"true"`
}

type CapacityOutput struct {
	Body CapacityResponse
}

// Register adds all lead workflow routes to the Huma API.
func Register(api huma.API, svc *app.Workflow) {
	registerLeads(api, svc)
	registerAssignments(api, svc)
	registerCancellations(api, svc)
	registerPartners(api, svc)
}

func registerLeads(api huma.API, svc *app.Workflow) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-lead",
		Method:        http.MethodPost,
		Path:          "/api/v1/leads",
		Summary:       "Create a lead",
		Tags:          []string{"Leads"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateLeadInput) (*LeadOutput, error) {
		c := input.Body.Customer
		lead, err := svc.CreateLead(ctx, domain.ServiceType(input.Body.ServiceType), domain.Customer{
			Name:  c.Name,
			Email: c.Email,
			Phone: c.Phone,
			City:  c.City,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-lead",
		Method:      http.MethodGet,
		Path:        "/api/v1/leads/{leadId}",
		Summary:     "Get a lead",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *LeadInput) (*LeadOutput, error) {
		lead, err := svc.GetLead(ctx, input.LeadID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-leads",
		Method:      http.MethodGet,
		Path:        "/api/v1/leads",
		Summary:     "List leads",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *ListLeadsInput) (*ListLeadsOutput, error) {
		filter := domain.LeadFilter{
			ServiceType: domain.ServiceType(input.ServiceType),
			PartnerID:   input.PartnerID,
			Limit:       input.Limit,
			Offset:      input.Offset,
		}
		if input.Status != "" {
			s := domain.LeadStatus(input.Status)
			filter.Status = &s
		}

		leads, err := svc.ListLeads(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}

		resp := make([]LeadResponse, len(leads))
		for i, l := range leads {
			resp[i] = toLeadResponse(l)
		}
		return &ListLeadsOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "complete-lead",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{leadId}/complete",
		Summary:     "Mark an accepted lead as completed",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *LeadInput) (*LeadOutput, error) {
		lead, err := svc.CompleteLead(ctx, input.LeadID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "lead-audit-trail",
		Method:      http.MethodGet,
		Path:        "/api/v1/leads/{leadId}/audit",
		Summary:     "List the audit records of a lead",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *LeadInput) (*AuditTrailOutput, error) {
		records, err := svc.AuditTrail(ctx, input.LeadID)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]AuditRecordResponse, len(records))
		for i, r := range records {
			resp[i] = toAuditRecordResponse(r)
		}
		return &AuditTrailOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-eligible-partners",
		Method:      http.MethodGet,
		Path:        "/api/v1/leads/{leadId}/eligible-partners",
		Summary:     "List partners that can take a lead",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *EligiblePartnersInput) (*EligiblePartnersOutput, error) {
		eligible, err := svc.ListEligiblePartners(ctx, input.LeadID, domain.EligibilityQuery{
			Search:      input.Search,
			PartnerType: domain.PartnerType(input.PartnerType),
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &EligiblePartnersOutput{Body: EligiblePartnersResponse{
			Basic:     toCandidates(eligible.Basic),
			Exclusive: toCandidates(eligible.Exclusive),
			Search:    toCandidates(eligible.Search),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-selection",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{leadId}/selection",
		Summary:     "Apply one selection click and return the new selection",
		Tags:        []string{"Leads"},
	}, func(ctx context.Context, input *SelectionInput) (*SelectionOutput, error) {
		if _, err := svc.GetLead(ctx, input.LeadID); err != nil {
			return nil, toHumaError(err)
		}

		ref := input.Body.Toggle.Ref()
		if ref.ID == "" {
			return nil, toHumaError(&domain.ValidationError{Field: "toggle", Message: "partner reference is required"})
		}
		partner, err := svc.GetPartner(ctx, ref.ID)
		if err != nil {
			return nil, toHumaError(err)
		}

		var current domain.Selection
		for _, s := range input.Body.Selected {
			current.Partners = append(current.Partners, domain.SelectedPartner{
				ID:          s.PartnerID,
				PartnerType: domain.PartnerType(s.PartnerType),
			})
		}

		next := current.Toggle(domain.SelectedPartner{ID: partner.ID, PartnerType: partner.PartnerType})

		out := &SelectionOutput{}
		out.Body.Selected = make([]SelectedPartnerBody, len(next.Partners))
		for i, p := range next.Partners {
			out.Body.Selected[i] = SelectedPartnerBody{PartnerID: p.ID, PartnerType: string(p.PartnerType)}
		}
		return out, nil
	})
}

func registerAssignments(api huma.API, svc *app.Workflow) {
	huma.Register(api, huma.Operation{
		OperationID:   "commit-assignment",
		Method:        http.MethodPost,
		Path:          "/api/v1/leads/{leadId}/assignments",
		Summary:       "Assign a lead to a partner",
		Tags:          []string{"Assignments"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CommitAssignmentInput) (*CommitAssignmentOutput, error) {
		res, err := svc.CommitAssignment(ctx, input.LeadID, input.Body.Ref())
		if err != nil {
			return nil, toHumaError(err)
		}
		out := &CommitAssignmentOutput{}
		out.Body.Lead = toLeadResponse(res.Lead)
		out.Body.Assignment = toAssignmentResponse(res.Assignment)
		out.Body.CapacityWarning = res.CapacityWarning
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "accept-assignment",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{leadId}/assignments/{assignmentId}/accept",
		Summary:     "Accept a pending assignment",
		Tags:        []string{"Assignments"},
	}, func(ctx context.Context, input *AssignmentInput) (*LeadOutput, error) {
		lead, err := svc.AcceptAssignment(ctx, input.LeadID, input.AssignmentID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-assignment",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{leadId}/assignments/{assignmentId}/reject",
		Summary:     "Reject a pending assignment",
		Tags:        []string{"Assignments"},
	}, func(ctx context.Context, input *RejectAssignmentInput) (*LeadOutput, error) {
		lead, err := svc.RejectAssignment(ctx, input.LeadID, input.AssignmentID, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})
}

func registerCancellations(api huma.API, svc *app.Workflow) {
	huma.Register(api, huma.Operation{
		OperationID: "request-cancellation",
		Method:      http.MethodPost,
		Path:        "/api/v1/assignments/{assignmentId}/cancellation",
		Summary:     "Ask to cancel an assignment",
		Tags:        []string{"Cancellations"},
	}, func(ctx context.Context, input *RequestCancellationInput) (*AssignmentOutput, error) {
		a, err := svc.RequestCancellation(ctx, input.AssignmentID, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AssignmentOutput{Body: toAssignmentResponse(a)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "approve-cancellation",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{leadId}/cancellation/approve",
		Summary:     "Approve a partner's cancellation request",
		Tags:        []string{"Cancellations"},
	}, func(ctx context.Context, input *ApproveCancellationInput) (*LeadOutput, error) {
		lead, err := svc.ApproveCancellation(ctx, input.LeadID, input.Body.Ref().ID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &LeadOutput{Body: toLeadResponse(lead)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reject-cancellation",
		Method:      http.MethodPost,
		Path:        "/api/v1/leads/{leadId}/cancellation/reject",
		Summary:     "Refuse a partner's cancellation request",
		Tags:        []string{"Cancellations"},
	}, func(ctx context.Context, input *RejectCancellationInput) (*AssignmentOutput, error) {
		a, err := svc.RejectCancellation(ctx, input.LeadID, input.Body.Ref().ID, input.Body.Reason)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &AssignmentOutput{Body: toAssignmentResponse(a)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-cancellation-requests",
		Method:      http.MethodGet,
		Path:        "/api/v1/cancellation-requests",
		Summary:     "List cancellation requests",
		Tags:        []string{"Cancellations"},
	}, func(ctx context.Context, input *ListCancellationRequestsInput) (*ListCancellationRequestsOutput, error) {
		requests, err := svc.ListCancellationRequests(ctx, domain.CancellationFilter{
			Status:      domain.RequestStatus(input.Status),
			PartnerID:   input.PartnerID,
			ServiceType: domain.ServiceType(input.ServiceType),
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]CancellationRequestResponse, len(requests))
		for i, r := range requests {
			resp[i] = toCancellationRequestResponse(r)
		}
		return &ListCancellationRequestsOutput{Body: resp}, nil
	})
}

func registerPartners(api huma.API, svc *app.Workflow) {
	huma.Register(api, huma.Operation{
		OperationID: "save-partner",
		Method:      http.MethodPut,
		Path:        "/api/v1/partners/{partnerId}",
		Summary:     "Create or replace a partner",
		Tags:        []string{"Partners"},
	}, func(ctx context.Context, input *SavePartnerInput) (*PartnerOutput, error) {
		b := input.Body
		services := make([]domain.ServiceType, len(b.Services))
		for i, s := range b.Services {
			services[i] = domain.ServiceType(s)
		}
		p, err := svc.SavePartner(ctx, domain.Partner{
			ID:                 input.PartnerID,
			CompanyName:        b.CompanyName,
			ContactFirstName:   b.ContactFirstName,
			ContactLastName:    b.ContactLastName,
			Email:              b.Email,
			PartnerType:        domain.PartnerType(b.PartnerType),
			Services:           services,
			LegacyServiceType:  domain.ServiceType(b.ServiceType),
			Status:             domain.PartnerStatus(b.Status),
			CustomLeadsPerWeek: b.CustomLeadsPerWeek,
		})
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PartnerOutput{Body: toPartnerResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-partner",
		Method:      http.MethodGet,
		Path:        "/api/v1/partners/{partnerId}",
		Summary:     "Get a partner",
		Tags:        []string{"Partners"},
	}, func(ctx context.Context, input *PartnerInput) (*PartnerOutput, error) {
		p, err := svc.GetPartner(ctx, input.PartnerID)
		if err != nil {
			return nil, toHumaError(err)
		}
		return &PartnerOutput{Body: toPartnerResponse(p)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-partners",
		Method:      http.MethodGet,
		Path:        "/api/v1/partners",
		Summary:     "List partners",
		Tags:        []string{"Partners"},
	}, func(ctx context.Context, input *ListPartnersInput) (*ListPartnersOutput, error) {
		filter := domain.PartnerFilter{PartnerType: domain.PartnerType(input.PartnerType)}
		if input.Status != "" {
			s := domain.PartnerStatus(input.Status)
			filter.Status = &s
		}
		partners, err := svc.ListPartners(ctx, filter)
		if err != nil {
			return nil, toHumaError(err)
		}
		resp := make([]PartnerResponse, len(partners))
		for i, p := range partners {
			resp[i] = toPartnerResponse(p)
		}
		return &ListPartnersOutput{Body: resp}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "partner-capacity",
		Method:      http.MethodGet,
		Path:        "/api/v1/partners/{partnerId}/capacity",
		Summary:     "Weekly quota usage of a partner",
		Tags:        []string{"Partners"},
	}, func(ctx context.Context, input *CapacityInput) (*CapacityOutput, error) {
		c, err := svc.GetCapacity(ctx, input.PartnerID, domain.ServiceType(input.ServiceType))
		if err != nil {
			return nil, toHumaError(err)
		}
		return &CapacityOutput{Body: toCapacityResponse(c)}, nil
	})
}
