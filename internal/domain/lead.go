package domain

import "time"

// ServiceType identifies the kind of service a lead requests.
type ServiceType string

const (
	ServiceMoving   ServiceType = "moving"
	ServiceCleaning ServiceType = "cleaning"
)

// LeadStatus is the rolled-up lifecycle state of a lead.
type LeadStatus string

const (
	LeadPending               LeadStatus = "pending"
	LeadPartialAssigned       LeadStatus = "partial_assigned"
	LeadAssigned              LeadStatus = "assigned"
	LeadAccepted              LeadStatus = "accepted"
	LeadCancellationRequested LeadStatus = "cancellationRequested"
	LeadCancelled             LeadStatus = "cancelled"
	LeadRejected              LeadStatus = "rejected"
	LeadCompleted             LeadStatus = "completed"
)

// AssignmentStatus is the state of one partner's relationship to a lead.
type AssignmentStatus string

const (
	AssignmentPending               AssignmentStatus = "pending"
	AssignmentAccepted              AssignmentStatus = "accepted"
	AssignmentRejected              AssignmentStatus = "rejected"
	AssignmentCancellationRequested AssignmentStatus = "cancellationRequested"
	AssignmentCancelled             AssignmentStatus = "cancelled"
)

// Active reports whether the assignment still binds its partner to the lead.
func (s AssignmentStatus) Active() bool {
	switch s {
	case AssignmentPending, AssignmentAccepted, AssignmentCancellationRequested:
		return true
	}
	return false
}

// Terminal reports whether no further transition can leave this status.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentRejected || s == AssignmentCancelled
}

// Customer holds the contact details captured when the lead was submitted.
type Customer struct {
	Name  string
	Email string
	Phone string
	City  string
}

// PartnerAssignment is one partner's relationship to one lead. It is owned by
// its parent Lead and never re-activated once rejected or cancelled.
type PartnerAssignment struct {
	ID          string
	PartnerID   string
	PartnerType PartnerType // tier at assignment time
	Status      AssignmentStatus
	AssignedAt  time.Time

	RespondedAt     *time.Time
	RejectionReason string

	CancellationReason          string
	CancellationRequestedAt     *time.Time
	CancellationApproved        bool
	CancellationApprovedAt      *time.Time
	CancellationRejected        bool
	CancellationRejectedAt      *time.Time
	CancellationRejectionReason string
}

// Lead is a customer service request routed to one or more partners.
type Lead struct {
	ID          string
	LeadID      string
	ServiceType ServiceType
	Status      LeadStatus
	Customer    Customer
	Assignments []PartnerAssignment
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Version counts committed updates. An update only succeeds against the
	// version it was loaded at.
	Version int
}

// NewLead creates a lead in the initial "pending" state with no assignments.
func NewLead(id, leadID string, service ServiceType, customer Customer, now time.Time) Lead {
	now = now.UTC()
	return Lead{
		ID:          id,
		LeadID:      leadID,
		ServiceType: service,
		Status:      LeadPending,
		Customer:    customer,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewAssignment creates a pending assignment that snapshots the partner's tier.
func NewAssignment(id string, partner Partner, now time.Time) PartnerAssignment {
	return PartnerAssignment{
		ID:          id,
		PartnerID:   partner.ID,
		PartnerType: partner.PartnerType,
		Status:      AssignmentPending,
		AssignedAt:  now.UTC(),
	}
}

// Clone returns a copy whose assignment slice can be mutated independently.
func (l Lead) Clone() Lead {
	out := l
	out.Assignments = append([]PartnerAssignment(nil), l.Assignments...)
	return out
}

// AssignmentIndex returns the position of the assignment with the given id.
func (l Lead) AssignmentIndex(id string) (int, bool) {
	for i := range l.Assignments {
		if l.Assignments[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// ActiveAssignmentIndex returns the position of the partner's non-terminal
// assignment on this lead, if any.
func (l Lead) ActiveAssignmentIndex(partnerID string) (int, bool) {
	for i := range l.Assignments {
		if l.Assignments[i].PartnerID == partnerID && l.Assignments[i].Status.Active() {
			return i, true
		}
	}
	return -1, false
}

// LatestAssignmentIndex returns the position of the partner's most recent
// assignment on this lead, whatever its status.
func (l Lead) LatestAssignmentIndex(partnerID string) (int, bool) {
	for i := len(l.Assignments) - 1; i >= 0; i-- {
		if l.Assignments[i].PartnerID == partnerID {
			return i, true
		}
	}
	return -1, false
}

// HasActiveAssignment reports whether the partner holds a non-terminal
// assignment on this lead.
func (l Lead) HasActiveAssignment(partnerID string) bool {
	_, ok := l.ActiveAssignmentIndex(partnerID)
	return ok
}
