package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/neomorfeo/leadflow/internal/domain"
	"github.com/neomorfeo/leadflow/internal/logger"
)

// Workflow orchestrates lead assignment and cancellation. Mutations on one
// lead are serialized; different leads proceed in parallel.
type Workflow struct {
	leads     domain.LeadRepository
	partners  domain.PartnerRepository
	settings  domain.SettingsReader
	audit     domain.AuditSink
	validator domain.TransitionValidator

	locks  *leadLocks
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// NewWorkflow creates a workflow with the given adapters.
func NewWorkflow(
	leads domain.LeadRepository,
	partners domain.PartnerRepository,
	settings domain.SettingsReader,
	audit domain.AuditSink,
	validator domain.TransitionValidator,
	opts ...Option,
) *Workflow {
	w := &Workflow{
		leads:     leads,
		partners:  partners,
		settings:  settings,
		audit:     audit,
		validator: validator,
		locks:     newLeadLocks(),
		now:       func() time.Time { return time.Now().UTC() },
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// mutation changes a private copy of a lead and describes what it did.
// Returning an error discards the copy.
type mutation func(lead *domain.Lead, settings domain.AdminSettings) ([]domain.AuditRecord, error)

// maxAttempts bounds how often a mutation is replayed after another writer
// saved the same lead first.
const maxAttempts = 3

// mutate runs fn against leadID under the lead's lock. The new lead state and
// its audit records are persisted together; audit fan-out happens afterwards
// and never fails the caller.
//
// The lock only serializes this process. A save that loses against another
// process is retried from a fresh load, so fn sees the winner's changes and
// its guards run again.
func (w *Workflow) mutate(ctx context.Context, leadID, action string, fn mutation) (domain.Lead, error) {
	ctx = logger.WithLeadID(ctx, leadID)
	log := logger.Enrich(ctx, w.logger)

	release := w.locks.lock(leadID)
	defer release()

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		var current, lead domain.Lead
		var records []domain.AuditRecord
		current, lead, records, err = w.apply(ctx, leadID, action, fn)
		if errors.Is(err, domain.ErrConcurrentUpdate) && attempt < maxAttempts {
			log.Warn("lead changed concurrently, retrying", "action", action, "attempt", attempt)
			continue
		}
		if err != nil {
			return domain.Lead{}, err
		}

		if current.Status != lead.Status {
			log.Info("lead status transition",
				"action", action,
				"old_status", current.Status,
				"new_status", lead.Status,
			)
		}

		w.emit(ctx, records)
		return lead, nil
	}
	return domain.Lead{}, err
}

// apply loads the lead, runs fn on a copy and saves the copy if the stored
// lead is still at the loaded version. It returns the loaded and the saved
// state.
func (w *Workflow) apply(ctx context.Context, leadID, action string, fn mutation) (domain.Lead, domain.Lead, []domain.AuditRecord, error) {
	current, err := w.leads.GetByLeadID(ctx, leadID)
	if err != nil {
		return domain.Lead{}, domain.Lead{}, nil, storeError("loading lead", err)
	}
	if current.Status == domain.LeadCompleted {
		return domain.Lead{}, domain.Lead{}, nil, &domain.TransitionError{Subject: "lead", Event: action, Current: string(current.Status)}
	}

	settings := w.adminSettings(ctx)

	lead := current.Clone()
	records, err := fn(&lead, settings)
	if err != nil {
		return domain.Lead{}, domain.Lead{}, nil, err
	}

	lead.Recompute(settings.MaxBasic())
	lead.UpdatedAt = w.now()

	actor := domain.ActorFrom(ctx)
	for i := range records {
		records[i].ID = newID()
		records[i].LeadID = lead.LeadID
		records[i].Actor = actor
		records[i].LeadFrom = current.Status
		records[i].LeadTo = lead.Status
		records[i].At = lead.UpdatedAt
	}

	if err := w.leads.Update(ctx, lead, records); err != nil {
		return domain.Lead{}, domain.Lead{}, nil, storeError("saving lead", err)
	}
	lead.Version++

	return current, lead, records, nil
}

// emit forwards committed audit records to the sink. Failures are logged.
func (w *Workflow) emit(ctx context.Context, records []domain.AuditRecord) {
	if w.audit == nil || len(records) == 0 {
		return
	}
	if err := w.audit.Emit(ctx, records); err != nil {
		w.logger.ErrorContext(ctx, "audit fan-out failed",
			"lead_id", records[0].LeadID,
			"records", len(records),
			"error", err,
		)
	}
}

// adminSettings returns the current settings, or zero settings (meaning
// "use the fallbacks") when the reader fails.
func (w *Workflow) adminSettings(ctx context.Context) domain.AdminSettings {
	if w.settings == nil {
		return domain.AdminSettings{}
	}
	s, err := w.settings.AdminSettings(ctx)
	if err != nil {
		w.logger.WarnContext(ctx, "admin settings unavailable, using fallback quotas", "error", err)
		return domain.AdminSettings{}
	}
	return s
}

// transition applies event to the assignment at idx and returns the audit
// record describing it.
func (w *Workflow) transition(ctx context.Context, lead *domain.Lead, idx int, event domain.AssignmentEvent, reason string) (domain.AuditRecord, error) {
	a := &lead.Assignments[idx]
	from := a.Status

	to, err := w.validator.Apply(ctx, from, event)
	if err != nil {
		return domain.AuditRecord{}, err
	}
	a.Status = to

	return domain.AuditRecord{
		AssignmentID: a.ID,
		PartnerID:    a.PartnerID,
		Action:       string(event),
		FromStatus:   from,
		ToStatus:     to,
		Reason:       reason,
	}, nil
}

// storeError passes domain errors through and wraps everything else as
// Unavailable.
func storeError(op string, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	return &domain.UnavailableError{Op: op, Err: err}
}
