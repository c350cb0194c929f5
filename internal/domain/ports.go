package domain

import (
	"context"
	"time"
)

// LeadRepository defines the persistence contract for the lead aggregate.
// Create and Update persist the lead, its assignments and the given audit
// records as one atomic unit. Update fails with ErrConcurrentUpdate unless
// the stored version still equals lead.Version, and bumps it on success.
type LeadRepository interface {
	Create(ctx context.Context, lead Lead, records []AuditRecord) error
	GetByLeadID(ctx context.Context, leadID string) (Lead, error)
	GetByAssignmentID(ctx context.Context, assignmentID string) (Lead, error)
	List(ctx context.Context, filter LeadFilter) ([]Lead, error)
	Update(ctx context.Context, lead Lead, records []AuditRecord) error
	CountAssignments(ctx context.Context, filter AssignmentCountFilter) (int, error)
	AuditTrail(ctx context.Context, leadID string) ([]AuditRecord, error)
}

// LeadFilter holds optional criteria for listing leads.
type LeadFilter struct {
	Status      *LeadStatus
	ServiceType ServiceType
	PartnerID   string
	// WithCancellationRequests keeps only leads with at least one assignment
	// that has ever requested cancellation.
	WithCancellationRequests bool
	Limit                    int
	Offset                   int
}

// AssignmentCountFilter selects the assignments counted against a quota.
type AssignmentCountFilter struct {
	PartnerID   string
	ServiceType ServiceType
	From        time.Time // inclusive
	To          time.Time // exclusive
}

// PartnerRepository defines the persistence contract for partners. Save
// inserts the partner or replaces the stored one with the same id.
type PartnerRepository interface {
	Save(ctx context.Context, partner Partner) error
	GetByID(ctx context.Context, id string) (Partner, error)
	List(ctx context.Context, filter PartnerFilter) ([]Partner, error)
}

// PartnerFilter holds optional criteria for listing partners.
type PartnerFilter struct {
	Status      *PartnerStatus
	PartnerType PartnerType
}

// SettingsReader provides the current admin settings.
type SettingsReader interface {
	AdminSettings(ctx context.Context) (AdminSettings, error)
}

// AuditSink receives audit records after they have been committed. Delivery
// is fire-and-forget from the workflow's point of view.
type AuditSink interface {
	Emit(ctx context.Context, records []AuditRecord) error
}

// TransitionValidator applies an event to an assignment status and returns
// the destination status, or a *TransitionError.
type TransitionValidator interface {
	Apply(ctx context.Context, current AssignmentStatus, event AssignmentEvent) (AssignmentStatus, error)
}
