package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// Compile-time check: PartnerRepository implements domain.PartnerRepository.
var _ domain.PartnerRepository = (*PartnerRepository)(nil)

// PartnerRepository implements domain.PartnerRepository using SQLite.
type PartnerRepository struct {
	db *sql.DB
}

const partnerColumns = `id, company_name, contact_first_name, contact_last_name, email,
	partner_type, legacy_service_type, status, custom_leads_per_week`

func (r *PartnerRepository) Save(ctx context.Context, p domain.Partner) error {
	return inTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO partners (`+partnerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (id) DO UPDATE SET
				company_name = excluded.company_name,
				contact_first_name = excluded.contact_first_name,
				contact_last_name = excluded.contact_last_name,
				email = excluded.email,
				partner_type = excluded.partner_type,
				legacy_service_type = excluded.legacy_service_type,
				status = excluded.status,
				custom_leads_per_week = excluded.custom_leads_per_week`,
			p.ID, p.CompanyName, p.ContactFirstName, p.ContactLastName, p.Email,
			string(p.PartnerType), string(p.LegacyServiceType), string(p.Status), p.CustomLeadsPerWeek,
		)
		if err != nil {
			return fmt.Errorf("saving partner: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM partner_services WHERE partner_id = ?`, p.ID); err != nil {
			return fmt.Errorf("clearing partner services: %w", err)
		}
		for _, s := range p.Services {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO partner_services (partner_id, service_type) VALUES (?, ?)
				 ON CONFLICT DO NOTHING`, p.ID, string(s))
			if err != nil {
				return fmt.Errorf("saving partner service: %w", err)
			}
		}
		return nil
	})
}

func (r *PartnerRepository) GetByID(ctx context.Context, id string) (domain.Partner, error) {
	p, err := scanPartner(r.db.QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE id = ?`, id,
	))
	if err != nil {
		return domain.Partner{}, err
	}

	services, err := r.services(ctx, []string{p.ID})
	if err != nil {
		return domain.Partner{}, err
	}
	p.Services = services[p.ID]
	return p, nil
}

func (r *PartnerRepository) List(ctx context.Context, filter domain.PartnerFilter) ([]domain.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners`
	var (
		where []string
		args  []any
	)
	if filter.Status != nil {
		where = append(where, `status = ?`)
		args = append(args, string(*filter.Status))
	}
	if filter.PartnerType != "" {
		where = append(where, `partner_type = ?`)
		args = append(args, string(filter.PartnerType))
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY company_name, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing partners: %w", err)
	}

	partners := []domain.Partner{}
	var ids []string
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		partners = append(partners, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing partners: %w", err)
	}
	rows.Close()

	services, err := r.services(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range partners {
		partners[i].Services = services[partners[i].ID]
	}
	return partners, nil
}

// services loads the offered services of the given partners, keyed by id.
func (r *PartnerRepository) services(ctx context.Context, ids []string) (map[string][]domain.ServiceType, error) {
	out := make(map[string][]domain.ServiceType, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT partner_id, service_type FROM partner_services
		 WHERE partner_id IN (`+placeholders+`) ORDER BY partner_id, service_type`, args...)
	if err != nil {
		return nil, fmt.Errorf("loading partner services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, service string
		if err := rows.Scan(&id, &service); err != nil {
			return nil, fmt.Errorf("scanning partner service: %w", err)
		}
		out[id] = append(out[id], domain.ServiceType(service))
	}
	return out, rows.Err()
}

func scanPartner(row rowScanner) (domain.Partner, error) {
	var (
		p                           domain.Partner
		partnerType, legacy, status string
	)
	err := row.Scan(&p.ID, &p.CompanyName, &p.ContactFirstName, &p.ContactLastName, &p.Email,
		&partnerType, &legacy, &status, &p.CustomLeadsPerWeek)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Partner{}, domain.ErrPartnerNotFound
		}
		return domain.Partner{}, fmt.Errorf("scanning partner: %w", err)
	}

	p.PartnerType = domain.PartnerType(partnerType)
	p.LegacyServiceType = domain.ServiceType(legacy)
	p.Status = domain.PartnerStatus(status)
	return p, nil
}
