package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"
)

// AuditWorker forwards audit jobs to the structured log. Downstream
// consumers (notifications, reporting) hook in here.
type AuditWorker struct {
	river.WorkerDefaults[AuditJobArgs]
}

// Work processes a single audit job.
func (w *AuditWorker) Work(ctx context.Context, job *river.Job[AuditJobArgs]) error {
	slog.InfoContext(ctx, "audit record",
		"record_id", job.Args.RecordID,
		"lead_id", job.Args.LeadID,
		"assignment_id", job.Args.AssignmentID,
		"partner_id", job.Args.PartnerID,
		"actor", job.Args.Actor,
		"action", job.Args.Action,
		"from_status", job.Args.FromStatus,
		"to_status", job.Args.ToStatus,
		"lead_from", job.Args.LeadFrom,
		"lead_to", job.Args.LeadTo,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}
