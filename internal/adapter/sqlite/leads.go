package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// Compile-time check: LeadRepository implements domain.LeadRepository.
var _ domain.LeadRepository = (*LeadRepository)(nil)

// LeadRepository implements domain.LeadRepository using SQLite. A lead and
// its assignments are written in one transaction together with the audit
// records describing the change.
type LeadRepository struct {
	db *sql.DB
}

const leadColumns = `id, lead_id, service_type, status,
	customer_name, customer_email, customer_phone, customer_city,
	created_at, updated_at, version`

const assignmentColumns = `id, partner_id, partner_type, status, assigned_at,
	responded_at, rejection_reason,
	cancellation_reason, cancellation_requested_at,
	cancellation_approved, cancellation_approved_at,
	cancellation_rejected, cancellation_rejected_at, cancellation_rejection_reason`

func (r *LeadRepository) Create(ctx context.Context, lead domain.Lead, records []domain.AuditRecord) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO leads (`+leadColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			lead.ID, lead.LeadID, string(lead.ServiceType), string(lead.Status),
			lead.Customer.Name, lead.Customer.Email, lead.Customer.Phone, lead.Customer.City,
			formatTime(lead.CreatedAt), formatTime(lead.UpdatedAt), lead.Version,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("lead %q already exists: %w", lead.LeadID, err)
			}
			return fmt.Errorf("inserting lead: %w", err)
		}

		if err := saveAssignments(ctx, tx, lead); err != nil {
			return err
		}
		return insertAudit(ctx, tx, records)
	})
}

func (r *LeadRepository) GetByLeadID(ctx context.Context, leadID string) (domain.Lead, error) {
	lead, err := scanLead(r.db.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE lead_id = ?`, leadID,
	))
	if err != nil {
		return domain.Lead{}, err
	}

	lead.Assignments, err = loadAssignments(ctx, r.db, lead.ID)
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func (r *LeadRepository) GetByAssignmentID(ctx context.Context, assignmentID string) (domain.Lead, error) {
	var leadID string
	err := r.db.QueryRowContext(ctx,
		`SELECT l.lead_id FROM leads l
		 JOIN partner_assignments pa ON pa.lead_id = l.id
		 WHERE pa.id = ?`, assignmentID,
	).Scan(&leadID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Lead{}, domain.ErrAssignmentNotFound
		}
		return domain.Lead{}, fmt.Errorf("finding assignment: %w", err)
	}
	return r.GetByLeadID(ctx, leadID)
}

func (r *LeadRepository) List(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	var (
		where []string
		args  []any
	)

	if filter.Status != nil {
		where = append(where, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.ServiceType != "" {
		where = append(where, `service_type = ?`)
		args = append(args, string(filter.ServiceType))
	}
	if filter.PartnerID != "" {
		where = append(where, `EXISTS (SELECT 1 FROM partner_assignments pa
			WHERE pa.lead_id = leads.id AND pa.partner_id = ?)`)
		args = append(args, filter.PartnerID)
	}
	if filter.WithCancellationRequests {
		where = append(where, `EXISTS (SELECT 1 FROM partner_assignments pa
			WHERE pa.lead_id = leads.id AND pa.cancellation_requested_at IS NOT NULL)`)
	}

	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC, lead_id`

	// SQLite only accepts OFFSET after LIMIT; -1 means no limit.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := filter.Limit
		if limit <= 0 {
			limit = -1
		}
		query += ` LIMIT ?`
		args = append(args, limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}

	leads := []domain.Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		leads = append(leads, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	rows.Close()

	// Assignments are loaded after the cursor is closed: the store may run
	// on a single connection.
	for i := range leads {
		leads[i].Assignments, err = loadAssignments(ctx, r.db, leads[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return leads, nil
}

// Update saves the lead if its stored version still equals lead.Version and
// increments the stored version. Another writer having saved the lead first
// yields domain.ErrConcurrentUpdate and nothing is written.
func (r *LeadRepository) Update(ctx context.Context, lead domain.Lead, records []domain.AuditRecord) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE leads SET status = ?,
				customer_name = ?, customer_email = ?, customer_phone = ?, customer_city = ?,
				updated_at = ?, version = version + 1
			 WHERE id = ? AND version = ?`,
			string(lead.Status),
			lead.Customer.Name, lead.Customer.Email, lead.Customer.Phone, lead.Customer.City,
			formatTime(lead.UpdatedAt), lead.ID, lead.Version,
		)
		if err != nil {
			return fmt.Errorf("updating lead: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			var exists int
			err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE id = ?`, lead.ID).Scan(&exists)
			if err != nil {
				return fmt.Errorf("checking lead: %w", err)
			}
			if exists == 0 {
				return domain.ErrLeadNotFound
			}
			return fmt.Errorf("lead %q at version %d: %w", lead.LeadID, lead.Version, domain.ErrConcurrentUpdate)
		}

		if err := saveAssignments(ctx, tx, lead); err != nil {
			return err
		}
		return insertAudit(ctx, tx, records)
	})
}

func (r *LeadRepository) CountAssignments(ctx context.Context, filter domain.AssignmentCountFilter) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM partner_assignments pa
		 JOIN leads l ON l.id = pa.lead_id
		 WHERE pa.partner_id = ? AND l.service_type = ?
		   AND pa.assigned_at >= ? AND pa.assigned_at < ?`,
		filter.PartnerID, string(filter.ServiceType),
		formatTime(filter.From), formatTime(filter.To),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting assignments: %w", err)
	}
	return n, nil
}

func (r *LeadRepository) AuditTrail(ctx context.Context, leadID string) ([]domain.AuditRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, lead_id, assignment_id, partner_id, actor, action,
			from_status, to_status, lead_from, lead_to, reason, at
		 FROM audit_events WHERE lead_id = ? ORDER BY at, rowid`, leadID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading audit trail: %w", err)
	}
	defer rows.Close()

	records := []domain.AuditRecord{}
	for rows.Next() {
		var (
			rec                            domain.AuditRecord
			from, to, leadFrom, leadTo, at string
		)
		if err := rows.Scan(&rec.ID, &rec.LeadID, &rec.AssignmentID, &rec.PartnerID, &rec.Actor, &rec.Action,
			&from, &to, &leadFrom, &leadTo, &rec.Reason, &at); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		rec.FromStatus = domain.AssignmentStatus(from)
		rec.ToStatus = domain.AssignmentStatus(to)
		rec.LeadFrom = domain.LeadStatus(leadFrom)
		rec.LeadTo = domain.LeadStatus(leadTo)
		if rec.At, err = parseTime(at); err != nil {
			return nil, fmt.Errorf("audit record %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (domain.Lead, error) {
	var (
		l                                 domain.Lead
		service, status, created, updated string
	)
	err := row.Scan(&l.ID, &l.LeadID, &service, &status,
		&l.Customer.Name, &l.Customer.Email, &l.Customer.Phone, &l.Customer.City,
		&created, &updated, &l.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Lead{}, domain.ErrLeadNotFound
		}
		return domain.Lead{}, fmt.Errorf("scanning lead: %w", err)
	}

	l.ServiceType = domain.ServiceType(service)
	l.Status = domain.LeadStatus(status)
	if l.CreatedAt, err = parseTime(created); err != nil {
		return domain.Lead{}, fmt.Errorf("lead %s created_at: %w", l.LeadID, err)
	}
	if l.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Lead{}, fmt.Errorf("lead %s updated_at: %w", l.LeadID, err)
	}
	return l, nil
}

func loadAssignments(ctx context.Context, q querier, leadInternalID string) ([]domain.PartnerAssignment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM partner_assignments
		 WHERE lead_id = ? ORDER BY position`, leadInternalID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading assignments: %w", err)
	}
	defer rows.Close()

	var out []domain.PartnerAssignment
	for rows.Next() {
		var (
			a                                   domain.PartnerAssignment
			partnerType, status, assigned       string
			responded, requested, approved, rej sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.PartnerID, &partnerType, &status, &assigned,
			&responded, &a.RejectionReason,
			&a.CancellationReason, &requested,
			&a.CancellationApproved, &approved,
			&a.CancellationRejected, &rej, &a.CancellationRejectionReason); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		a.PartnerType = domain.PartnerType(partnerType)
		a.Status = domain.AssignmentStatus(status)
		if err := scanAssignmentTimes(&a, assigned, responded, requested, approved, rej); err != nil {
			return nil, fmt.Errorf("assignment %s: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAssignmentTimes(a *domain.PartnerAssignment, assigned string, responded, requested, approved, rejected sql.NullString) error {
	var err error
	if a.AssignedAt, err = parseTime(assigned); err != nil {
		return err
	}
	if a.RespondedAt, err = parseNullTime(responded); err != nil {
		return err
	}
	if a.CancellationRequestedAt, err = parseNullTime(requested); err != nil {
		return err
	}
	if a.CancellationApprovedAt, err = parseNullTime(approved); err != nil {
		return err
	}
	a.CancellationRejectedAt, err = parseNullTime(rejected)
	return err
}

// saveAssignments upserts every assignment of the lead at its position.
// Assignments are never removed from a lead.
func saveAssignments(ctx context.Context, tx *sql.Tx, lead domain.Lead) error {
	for i, a := range lead.Assignments {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO partner_assignments (lead_id, position, `+assignmentColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
				position = excluded.position,
				status = excluded.status,
				responded_at = excluded.responded_at,
				rejection_reason = excluded.rejection_reason,
				cancellation_reason = excluded.cancellation_reason,
				cancellation_requested_at = excluded.cancellation_requested_at,
				cancellation_approved = excluded.cancellation_approved,
				cancellation_approved_at = excluded.cancellation_approved_at,
				cancellation_rejected = excluded.cancellation_rejected,
				cancellation_rejected_at = excluded.cancellation_rejected_at,
				cancellation_rejection_reason = excluded.cancellation_rejection_reason`,
			lead.ID, i,
			a.ID, a.PartnerID, string(a.PartnerType), string(a.Status), formatTime(a.AssignedAt),
			formatNullTime(a.RespondedAt), a.RejectionReason,
			a.CancellationReason, formatNullTime(a.CancellationRequestedAt),
			a.CancellationApproved, formatNullTime(a.CancellationApprovedAt),
			a.CancellationRejected, formatNullTime(a.CancellationRejectedAt), a.CancellationRejectionReason,
		)
		if err != nil {
			return fmt.Errorf("saving assignment %s: %w", a.ID, err)
		}
	}
	return nil
}

func insertAudit(ctx context.Context, tx *sql.Tx, records []domain.AuditRecord) error {
	for _, rec := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO audit_events (id, lead_id, assignment_id, partner_id, actor, action,
				from_status, to_status, lead_from, lead_to, reason, at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.LeadID, rec.AssignmentID, rec.PartnerID, rec.Actor, rec.Action,
			string(rec.FromStatus), string(rec.ToStatus), string(rec.LeadFrom), string(rec.LeadTo),
			rec.Reason, formatTime(rec.At),
		)
		if err != nil {
			return fmt.Errorf("inserting audit record: %w", err)
		}
	}
	return nil
}
