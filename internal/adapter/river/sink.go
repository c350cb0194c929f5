package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// Compile-time check: AuditSink implements domain.AuditSink.
var _ domain.AuditSink = (*AuditSink)(nil)

// AuditJobArgs carries one committed audit record. River serializes it as
// JSON into its job queue table, so the worker never queries the lead store.
type AuditJobArgs struct {
	RecordID     string    `json:"record_id"`
	LeadID       string    `json:"lead_id"`
	AssignmentID string    `json:"assignment_id,omitempty"`
	PartnerID    string    `json:"partner_id,omitempty"`
	Actor        string    `json:"actor"`
	Action       string    `json:"action"`
	FromStatus   string    `json:"from_status,omitempty"`
	ToStatus     string    `json:"to_status,omitempty"`
	LeadFrom     string    `json:"lead_from,omitempty"`
	LeadTo       string    `json:"lead_to,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	At           time.Time `json:"at"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (AuditJobArgs) Kind() string { return "audit.recorded" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// AuditSink implements domain.AuditSink by enqueuing River jobs.
type AuditSink struct {
	client *Client
}

// NewAuditSink creates a sink backed by the given River client.
func NewAuditSink(client *Client) *AuditSink {
	return &AuditSink{client: client}
}

// Emit enqueues one job per record in a single batch.
func (s *AuditSink) Emit(ctx context.Context, records []domain.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	params := make([]river.InsertManyParams, 0, len(records))
	for _, rec := range records {
		params = append(params, river.InsertManyParams{Args: argsFromRecord(rec)})
	}

	if _, err := s.client.InsertMany(ctx, params); err != nil {
		return fmt.Errorf("enqueuing audit jobs: %w", err)
	}
	return nil
}

func argsFromRecord(rec domain.AuditRecord) AuditJobArgs {
	return AuditJobArgs{
		RecordID:     rec.ID,
		LeadID:       rec.LeadID,
		AssignmentID: rec.AssignmentID,
		PartnerID:    rec.PartnerID,
		Actor:        rec.Actor,
		Action:       rec.Action,
		FromStatus:   string(rec.FromStatus),
		ToStatus:     string(rec.ToStatus),
		LeadFrom:     string(rec.LeadFrom),
		LeadTo:       string(rec.LeadTo),
		Reason:       rec.Reason,
		At:           rec.At,
	}
}
