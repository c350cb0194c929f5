package http

import (
	"time"

	"github.com/neomorfeo/leadflow/internal/domain"
)

const timeLayout = time.RFC3339Nano

// CustomerBody is the contact block of a lead.
type CustomerBody struct {
	Name  string `json:"name,omitempty" maxLength:"255" doc:"Customer name"`
	Email string `json:"email,omitempty" maxLength:"255" doc:"Customer email"`
	Phone string `json:"phone,omitempty" maxLength:"64" doc:"Customer phone"`
	City  string `json:"city,omitempty" maxLength:"255" doc:"Customer city"`
}

// AssignmentResponse is the API representation of a partner assignment.
type AssignmentResponse struct {
	ID                          string  `json:"id" doc:"Assignment ID"`
	PartnerID                   string  `json:"partnerId" doc:"Assigned partner"`
	PartnerType                 string  `json:"partnerType" doc:"Partner tier at assignment time"`
	Status                      string  `json:"status" doc:"Assignment state"`
	AssignedAt                  string  `json:"assignedAt" doc:"Assignment timestamp (RFC 3339)"`
	RespondedAt                 *string `json:"respondedAt,omitempty" doc:"When the partner accepted or rejected"`
	RejectionReason             string  `json:"rejectionReason,omitempty"`
	CancellationReason          string  `json:"cancellationReason,omitempty"`
	CancellationRequestedAt     *string `json:"cancellationRequestedAt,omitempty"`
	CancellationApproved        bool    `json:"cancellationApproved"`
	CancellationApprovedAt      *string `json:"cancellationApprovedAt,omitempty"`
	CancellationRejected        bool    `json:"cancellationRejected"`
	CancellationRejectedAt      *string `json:"cancellationRejectedAt,omitempty"`
	CancellationRejectionReason string  `json:"cancellationRejectionReason,omitempty"`
}

// LeadResponse is the API representation of a lead.
type LeadResponse struct {
	ID          string               `json:"id" doc:"Internal identifier"`
	LeadID      string               `json:"leadId" doc:"Human-readable lead reference"`
	ServiceType string               `json:"serviceType" doc:"Requested service"`
	Status      string               `json:"status" doc:"Derived lead state"`
	Customer    CustomerBody         `json:"customer"`
	Assignments []AssignmentResponse `json:"assignments"`
	CreatedAt   string               `json:"createdAt" doc:"Creation timestamp (RFC 3339)"`
	UpdatedAt   string               `json:"updatedAt" doc:"Last update timestamp (RFC 3339)"`
}

// PartnerResponse is the API representation of a partner.
type PartnerResponse struct {
	ID                 string   `json:"partnerId"`
	CompanyName        string   `json:"companyName"`
	ContactFirstName   string   `json:"contactFirstName,omitempty"`
	ContactLastName    string   `json:"contactLastName,omitempty"`
	Email              string   `json:"email,omitempty"`
	PartnerType        string   `json:"partnerType"`
	Services           []string `json:"services"`
	LegacyServiceType  string   `json:"serviceType,omitempty" doc:"Single service of older partner records"`
	Status             string   `json:"status"`
	CustomLeadsPerWeek int      `json:"customLeadsPerWeek,omitempty"`
}

// CapacityResponse is a partner's weekly quota usage.
type CapacityResponse struct {
	Current     int  `json:"current" doc:"Assignments received this week"`
	Limit       int  `json:"limit" doc:"Weekly quota"`
	HasCapacity bool `json:"hasCapacity"`
}

// CandidateResponse is one partner in the eligible-partners tabs.
type CandidateResponse struct {
	Partner               PartnerResponse  `json:"partner"`
	Capacity              CapacityResponse `json:"capacity"`
	HasExistingAssignment bool             `json:"hasExistingAssignment"`
	Selectable            bool             `json:"selectable"`
}

// EligiblePartnersResponse holds the basic, exclusive and search tabs.
type EligiblePartnersResponse struct {
	Basic     []CandidateResponse `json:"basic"`
	Exclusive []CandidateResponse `json:"exclusive"`
	Search    []CandidateResponse `json:"search"`
}

// CancellationRequestResponse is a row of the cancellation overview.
type CancellationRequestResponse struct {
	LeadID           string  `json:"leadId"`
	ServiceType      string  `json:"serviceType"`
	AssignmentID     string  `json:"assignmentId"`
	PartnerID        string  `json:"partnerId"`
	PartnerType      string  `json:"partnerType"`
	AssignmentStatus string  `json:"assignmentStatus"`
	Reason           string  `json:"reason"`
	RequestedAt      string  `json:"requestedAt"`
	RequestStatus    string  `json:"requestStatus" enum:"pending,cancellation_approved,cancellation_rejected"`
	DecidedAt        *string `json:"decidedAt,omitempty"`
	RejectionReason  string  `json:"rejectionReason,omitempty"`
}

// AuditRecordResponse is one entry of a lead's audit trail.
type AuditRecordResponse struct {
	ID           string `json:"id"`
	AssignmentID string `json:"assignmentId,omitempty"`
	PartnerID    string `json:"partnerId,omitempty"`
	Actor        string `json:"actor"`
	Action       string `json:"action"`
	FromStatus   string `json:"fromStatus,omitempty"`
	ToStatus     string `json:"toStatus,omitempty"`
	LeadFrom     string `json:"leadFrom,omitempty"`
	LeadTo       string `json:"leadTo,omitempty"`
	Reason       string `json:"reason,omitempty"`
	At           string `json:"at"`
}

func formatOptional(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeLayout)
	return &s
}

func toAssignmentResponse(a domain.PartnerAssignment) AssignmentResponse {
	return AssignmentResponse{
		ID:                          a.ID,
		PartnerID:                   a.PartnerID,
		PartnerType:                 string(a.PartnerType),
		Status:                      string(a.Status),
		AssignedAt:                  a.AssignedAt.UTC().Format(timeLayout),
		RespondedAt:                 formatOptional(a.RespondedAt),
		RejectionReason:             a.RejectionReason,
		CancellationReason:          a.CancellationReason,
		CancellationRequestedAt:     formatOptional(a.CancellationRequestedAt),
		CancellationApproved:        a.CancellationApproved,
		CancellationApprovedAt:      formatOptional(a.CancellationApprovedAt),
		CancellationRejected:        a.CancellationRejected,
		CancellationRejectedAt:      formatOptional(a.CancellationRejectedAt),
		CancellationRejectionReason: a.CancellationRejectionReason,
	}
}

func toLeadResponse(l domain.Lead) LeadResponse {
	assignments := make([]AssignmentResponse, len(l.Assignments))
	for i, a := range l.Assignments {
		assignments[i] = toAssignmentResponse(a)
	}
	return LeadResponse{
		ID:          l.ID,
		LeadID:      l.LeadID,
		ServiceType: string(l.ServiceType),
		Status:      string(l.Status),
		Customer: CustomerBody{
			Name:  l.Customer.Name,
			Email: l.Customer.Email,
			Phone: l.Customer.Phone,
			City:  l.Customer.City,
		},
		Assignments: assignments,
		CreatedAt:   l.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:   l.UpdatedAt.UTC().Format(timeLayout),
	}
}

func toPartnerResponse(p domain.Partner) PartnerResponse {
	services := make([]string, len(p.Services))
	for i, s := range p.Services {
		services[i] = string(s)
	}
	return PartnerResponse{
		ID:                 p.ID,
		CompanyName:        p.CompanyName,
		ContactFirstName:   p.ContactFirstName,
		ContactLastName:    p.ContactLastName,
		Email:              p.Email,
		PartnerType:        string(p.PartnerType),
		Services:           services,
		LegacyServiceType:  string(p.LegacyServiceType),
		Status:             string(p.Status),
		CustomLeadsPerWeek: p.CustomLeadsPerWeek,
	}
}

func toCapacityResponse(c domain.Capacity) CapacityResponse {
	return CapacityResponse{Current: c.Current, Limit: c.Limit, HasCapacity: c.HasCapacity()}
}

func toCandidates(cs []domain.Candidate) []CandidateResponse {
	out := make([]CandidateResponse, len(cs))
	for i, c := range cs {
		out[i] = CandidateResponse{
			Partner:               toPartnerResponse(c.Partner),
			Capacity:              toCapacityResponse(c.Capacity),
			HasExistingAssignment: c.HasExistingAssignment,
			Selectable:            c.Selectable(),
		}
	}
	return out
}

func toCancellationRequestResponse(r domain.CancellationRequest) CancellationRequestResponse {
	return CancellationRequestResponse{
		LeadID:           r.LeadID,
		ServiceType:      string(r.ServiceType),
		AssignmentID:     r.AssignmentID,
		PartnerID:        r.PartnerID,
		PartnerType:      string(r.PartnerType),
		AssignmentStatus: string(r.AssignmentStatus),
		Reason:           r.Reason,
		RequestedAt:      r.RequestedAt.UTC().Format(timeLayout),
		RequestStatus:    string(r.RequestStatus),
		DecidedAt:        formatOptional(r.DecidedAt),
		RejectionReason:  r.RejectionReason,
	}
}

func toAuditRecordResponse(r domain.AuditRecord) AuditRecordResponse {
	return AuditRecordResponse{
		ID:           r.ID,
		AssignmentID: r.AssignmentID,
		PartnerID:    r.PartnerID,
		Actor:        r.Actor,
		Action:       r.Action,
		FromStatus:   string(r.FromStatus),
		ToStatus:     string(r.ToStatus),
		LeadFrom:     string(r.LeadFrom),
		LeadTo:       string(r.LeadTo),
		Reason:       r.Reason,
		At:           r.At.UTC().Format(timeLayout),
	}
}
