package app_test

import (
	"context"
	"errors"
	"sync"

	"github.com/neomorfeo/leadflow/internal/domain"
)

// --- Mocks ---

type mockLeadRepo struct {
	mu      sync.Mutex
	leads   map[string]domain.Lead
	records []domain.AuditRecord
	updates int

	failUpdate error
	failCount  error
	// interleave holds writes by another process. Each Update consumes one
	// and applies it to the stored lead before its own version check.
	interleave []func(domain.Lead) domain.Lead
	conflicts  int
}

func newMockLeadRepo() *mockLeadRepo {
	return &mockLeadRepo{leads: make(map[string]domain.Lead)}
}

func (m *mockLeadRepo) Create(_ context.Context, l domain.Lead, records []domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[l.LeadID] = l.Clone()
	m.records = append(m.records, records...)
	return nil
}

func (m *mockLeadRepo) GetByLeadID(_ context.Context, leadID string) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.leads[leadID]
	if !ok {
		return domain.Lead{}, domain.ErrLeadNotFound
	}
	return l.Clone(), nil
}

func (m *mockLeadRepo) GetByAssignmentID(_ context.Context, assignmentID string) (domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leads {
		if _, ok := l.AssignmentIndex(assignmentID); ok {
			return l.Clone(), nil
		}
	}
	return domain.Lead{}, domain.ErrAssignmentNotFound
}

func (m *mockLeadRepo) List(_ context.Context, f domain.LeadFilter) ([]domain.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Lead, 0, len(m.leads))
	for _, l := range m.leads {
		if f.ServiceType != "" && l.ServiceType != f.ServiceType {
			continue
		}
		if f.Status != nil && l.Status != *f.Status {
			continue
		}
		out = append(out, l.Clone())
	}
	return out, nil
}

func (m *mockLeadRepo) Update(_ context.Context, l domain.Lead, records []domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return m.failUpdate
	}
	stored, ok := m.leads[l.LeadID]
	if !ok {
		return domain.ErrLeadNotFound
	}
	if len(m.interleave) > 0 {
		other := m.interleave[0](stored.Clone())
		other.Version = stored.Version + 1
		m.interleave = m.interleave[1:]
		m.leads[l.LeadID] = other
		stored = other
	}
	if stored.Version != l.Version {
		m.conflicts++
		return domain.ErrConcurrentUpdate
	}
	l = l.Clone()
	l.Version++
	m.leads[l.LeadID] = l
	m.records = append(m.records, records...)
	m.updates++
	return nil
}

func (m *mockLeadRepo) CountAssignments(_ context.Context, f domain.AssignmentCountFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCount != nil {
		return 0, m.failCount
	}
	n := 0
	for _, l := range m.leads {
		if l.ServiceType != f.ServiceType {
			continue
		}
		for _, a := range l.Assignments {
			if a.PartnerID == f.PartnerID && !a.AssignedAt.Before(f.From) && a.AssignedAt.Before(f.To) {
				n++
			}
		}
	}
	return n, nil
}

func (m *mockLeadRepo) AuditTrail(_ context.Context, leadID string) ([]domain.AuditRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AuditRecord
	for _, r := range m.records {
		if r.LeadID == leadID {
			out = append(out, r)
		}
	}
	return out, nil
}

// put stores a lead directly, bypassing the workflow.
func (m *mockLeadRepo) put(l domain.Lead) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leads[l.LeadID] = l.Clone()
}

type mockPartnerRepo struct {
	partners map[string]domain.Partner
}

func newMockPartnerRepo(partners ...domain.Partner) *mockPartnerRepo {
	m := &mockPartnerRepo{partners: make(map[string]domain.Partner)}
	for _, p := range partners {
		m.partners[p.ID] = p
	}
	return m
}

func (m *mockPartnerRepo) Save(_ context.Context, p domain.Partner) error {
	m.partners[p.ID] = p
	return nil
}

func (m *mockPartnerRepo) GetByID(_ context.Context, id string) (domain.Partner, error) {
	p, ok := m.partners[id]
	if !ok {
		return domain.Partner{}, domain.ErrPartnerNotFound
	}
	return p, nil
}

func (m *mockPartnerRepo) List(_ context.Context, f domain.PartnerFilter) ([]domain.Partner, error) {
	out := make([]domain.Partner, 0, len(m.partners))
	for _, p := range m.partners {
		if f.Status != nil && p.Status != *f.Status {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

type stubSettings struct {
	settings domain.AdminSettings
	err      error
}

func (s stubSettings) AdminSettings(context.Context) (domain.AdminSettings, error) {
	return s.settings, s.err
}

type mockSink struct {
	mu      sync.Mutex
	records []domain.AuditRecord
	err     error
}

func (m *mockSink) Emit(_ context.Context, records []domain.AuditRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, records...)
	return nil
}

func (m *mockSink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

var errStoreDown = errors.New("store down")
