package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neomorfeo/leadflow/internal/adapter/sqlite"
	"github.com/neomorfeo/leadflow/internal/domain"
)

var t0 = time.Date(2026, 3, 11, 9, 30, 0, 123456789, time.UTC)

// newTestStore creates an in-memory SQLite store for testing.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustSavePartner(t *testing.T, store *sqlite.Store, p domain.Partner) {
	t.Helper()
	if err := store.Partners().Save(context.Background(), p); err != nil {
		t.Fatalf("mustSavePartner failed: %v", err)
	}
}

func mustCreateLead(t *testing.T, store *sqlite.Store, l domain.Lead) {
	t.Helper()
	if err := store.Leads().Create(context.Background(), l, nil); err != nil {
		t.Fatalf("mustCreateLead failed: %v", err)
	}
}

func testLead(id string, service domain.ServiceType, at time.Time) domain.Lead {
	return domain.NewLead("internal-"+id, id, service, domain.Customer{
		Name:  "Jo Doe",
		Email: "jo@example.com",
		Phone: "+41 00 000 00 00",
		City:  "Bern",
	}, at)
}

// --- Partners ---

func TestPartner_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := domain.Partner{
		ID:                 "p-1",
		CompanyName:        "Move It",
		ContactFirstName:   "Ada",
		ContactLastName:    "Lovelace",
		Email:              "ada@moveit.example",
		PartnerType:        domain.PartnerExclusive,
		Services:           []domain.ServiceType{domain.ServiceCleaning, domain.ServiceMoving},
		LegacyServiceType:  domain.ServiceMoving,
		Status:             domain.PartnerActive,
		CustomLeadsPerWeek: 9,
	}
	mustSavePartner(t, store, p)

	got, err := store.Partners().GetByID(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.CompanyName != "Move It" || got.Email != "ada@moveit.example" {
		t.Errorf("got %+v", got)
	}
	if got.PartnerType != domain.PartnerExclusive || got.Status != domain.PartnerActive {
		t.Errorf("type/status = %s/%s", got.PartnerType, got.Status)
	}
	if got.CustomLeadsPerWeek != 9 || got.LegacyServiceType != domain.ServiceMoving {
		t.Errorf("custom/legacy = %d/%s", got.CustomLeadsPerWeek, got.LegacyServiceType)
	}
	if len(got.Services) != 2 || got.Services[0] != domain.ServiceCleaning {
		t.Errorf("Services = %v", got.Services)
	}
}

func TestPartner_SaveReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := domain.Partner{ID: "p-1", PartnerType: domain.PartnerBasic, Status: domain.PartnerActive,
		Services: []domain.ServiceType{domain.ServiceMoving, domain.ServiceCleaning}}
	mustSavePartner(t, store, p)

	p.Status = domain.PartnerSuspended
	p.Services = []domain.ServiceType{domain.ServiceCleaning}
	mustSavePartner(t, store, p)

	got, err := store.Partners().GetByID(ctx, "p-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != domain.PartnerSuspended {
		t.Errorf("Status = %q, want suspended", got.Status)
	}
	if len(got.Services) != 1 || got.Services[0] != domain.ServiceCleaning {
		t.Errorf("Services = %v, want [cleaning]", got.Services)
	}
}

func TestPartner_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Partners().GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, domain.ErrPartnerNotFound) {
		t.Errorf("expected ErrPartnerNotFound, got %v", err)
	}
}

func TestPartner_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustSavePartner(t, store, domain.Partner{ID: "a", CompanyName: "Alpha", PartnerType: domain.PartnerBasic, Status: domain.PartnerActive,
		Services: []domain.ServiceType{domain.ServiceMoving}})
	mustSavePartner(t, store, domain.Partner{ID: "b", CompanyName: "Beta", PartnerType: domain.PartnerExclusive, Status: domain.PartnerActive})
	mustSavePartner(t, store, domain.Partner{ID: "c", CompanyName: "Gamma", PartnerType: domain.PartnerBasic, Status: domain.PartnerSuspended})

	all, err := store.Partners().List(ctx, domain.PartnerFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 || all[0].ID != "a" || all[2].ID != "c" {
		t.Fatalf("List() = %+v", all)
	}
	if len(all[0].Services) != 1 || all[1].Services != nil {
		t.Errorf("services not attached: %v / %v", all[0].Services, all[1].Services)
	}

	active := domain.PartnerActive
	got, err := store.Partners().List(ctx, domain.PartnerFilter{Status: &active, PartnerType: domain.PartnerBasic})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("filtered List() = %+v", got)
	}
}

// --- Leads ---

func TestLead_CreateAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lead := testLead("LD-00000001", domain.ServiceMoving, t0)
	record := domain.AuditRecord{ID: "ev-1", LeadID: lead.LeadID, Actor: "system", Action: domain.ActionCreate, LeadTo: lead.Status, At: t0}
	if err := store.Leads().Create(ctx, lead, []domain.AuditRecord{record}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.Leads().GetByLeadID(ctx, "LD-00000001")
	if err != nil {
		t.Fatalf("GetByLeadID failed: %v", err)
	}
	if got.ID != lead.ID || got.ServiceType != domain.ServiceMoving || got.Status != domain.LeadPending {
		t.Errorf("got %+v", got)
	}
	if got.Customer != lead.Customer {
		t.Errorf("Customer = %+v, want %+v", got.Customer, lead.Customer)
	}
	if !got.CreatedAt.Equal(t0) {
		t.Errorf("CreatedAt = %s, want %s", got.CreatedAt, t0)
	}
	if len(got.Assignments) != 0 {
		t.Errorf("Assignments = %v, want none", got.Assignments)
	}

	trail, err := store.Leads().AuditTrail(ctx, lead.LeadID)
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if len(trail) != 1 || trail[0].Action != domain.ActionCreate || !trail[0].At.Equal(t0) {
		t.Errorf("trail = %+v", trail)
	}
}

func TestLead_DuplicateLeadID(t *testing.T) {
	store := newTestStore(t)
	mustCreateLead(t, store, testLead("LD-1", domain.ServiceMoving, t0))

	dup := testLead("LD-1", domain.ServiceMoving, t0)
	dup.ID = "other"
	if err := store.Leads().Create(context.Background(), dup, nil); err == nil {
		t.Fatal("expected error for duplicate lead id")
	}
}

func TestLead_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Leads().GetByLeadID(context.Background(), "LD-NOPE")
	if !errors.Is(err, domain.ErrLeadNotFound) {
		t.Errorf("expected ErrLeadNotFound, got %v", err)
	}

	_, err = store.Leads().GetByAssignmentID(context.Background(), "nope")
	if !errors.Is(err, domain.ErrAssignmentNotFound) {
		t.Errorf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestLead_UpdateAssignments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lead := testLead("LD-1", domain.ServiceMoving, t0)
	mustCreateLead(t, store, lead)

	basic := domain.Partner{ID: "p-1", PartnerType: domain.PartnerBasic}
	other := domain.Partner{ID: "p-2", PartnerType: domain.PartnerBasic}
	lead.Assignments = []domain.PartnerAssignment{
		domain.NewAssignment("a-1", basic, t0),
		domain.NewAssignment("a-2", other, t0.Add(time.Minute)),
	}
	lead.Status = domain.LeadPartialAssigned
	if err := store.Leads().Update(ctx, lead, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	lead.Version++

	responded := t0.Add(time.Hour)
	lead.Assignments[0].Status = domain.AssignmentAccepted
	lead.Assignments[0].RespondedAt = &responded
	lead.Assignments[0].CancellationReason = "customer moved"
	lead.Assignments[0].CancellationRequestedAt = &responded
	lead.Assignments[0].CancellationRejected = true
	lead.Assignments[0].CancellationRejectedAt = &responded
	lead.Assignments[0].CancellationRejectionReason = "no"
	lead.Status = domain.LeadAccepted
	records := []domain.AuditRecord{{ID: "ev-2", LeadID: "LD-1", AssignmentID: "a-1", Actor: "ops", Action: "accept",
		FromStatus: domain.AssignmentPending, ToStatus: domain.AssignmentAccepted, At: responded}}
	if err := store.Leads().Update(ctx, lead, records); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.Leads().GetByAssignmentID(ctx, "a-2")
	if err != nil {
		t.Fatalf("GetByAssignmentID failed: %v", err)
	}
	if got.Status != domain.LeadAccepted {
		t.Errorf("Status = %q, want accepted", got.Status)
	}
	if len(got.Assignments) != 2 || got.Assignments[0].ID != "a-1" || got.Assignments[1].ID != "a-2" {
		t.Fatalf("Assignments = %+v", got.Assignments)
	}

	a := got.Assignments[0]
	if a.Status != domain.AssignmentAccepted || a.RespondedAt == nil || !a.RespondedAt.Equal(responded) {
		t.Errorf("a-1 = %+v", a)
	}
	if !a.CancellationRejected || a.CancellationRejectionReason != "no" || a.CancellationApproved || a.CancellationApprovedAt != nil {
		t.Errorf("cancellation fields = %+v", a)
	}
	if a.PartnerType != domain.PartnerBasic || !a.AssignedAt.Equal(t0) {
		t.Errorf("a-1 snapshot = %s/%s", a.PartnerType, a.AssignedAt)
	}
	if got.Assignments[1].RespondedAt != nil {
		t.Errorf("a-2 RespondedAt = %v, want nil", got.Assignments[1].RespondedAt)
	}

	trail, _ := store.Leads().AuditTrail(ctx, "LD-1")
	if len(trail) != 1 || trail[0].FromStatus != domain.AssignmentPending || trail[0].ToStatus != domain.AssignmentAccepted {
		t.Errorf("trail = %+v", trail)
	}
}

func TestLead_UpdateUnknownRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ghost := testLead("LD-GHOST", domain.ServiceMoving, t0)
	records := []domain.AuditRecord{{ID: "ev-1", LeadID: "LD-GHOST", Actor: "system", Action: "commit", At: t0}}

	err := store.Leads().Update(ctx, ghost, records)
	if !errors.Is(err, domain.ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}

	trail, err := store.Leads().AuditTrail(ctx, "LD-GHOST")
	if err != nil {
		t.Fatalf("AuditTrail failed: %v", err)
	}
	if len(trail) != 0 {
		t.Errorf("audit records written despite failure: %+v", trail)
	}
}

func TestLead_List(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	l1 := testLead("LD-1", domain.ServiceMoving, t0)
	l2 := testLead("LD-2", domain.ServiceCleaning, t0.Add(time.Hour))
	l3 := testLead("LD-3", domain.ServiceMoving, t0.Add(2*time.Hour))
	for _, l := range []domain.Lead{l1, l2, l3} {
		mustCreateLead(t, store, l)
	}

	requested := t0.Add(3 * time.Hour)
	l1.Assignments = []domain.PartnerAssignment{domain.NewAssignment("a-1", domain.Partner{ID: "p-1", PartnerType: domain.PartnerBasic}, t0)}
	l1.Assignments[0].Status = domain.AssignmentCancellationRequested
	l1.Assignments[0].CancellationRequestedAt = &requested
	l1.Status = domain.LeadCancellationRequested
	if err := store.Leads().Update(ctx, l1, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	l3.Assignments = []domain.PartnerAssignment{domain.NewAssignment("a-3", domain.Partner{ID: "p-2", PartnerType: domain.PartnerBasic}, t0)}
	l3.Status = domain.LeadPartialAssigned
	if err := store.Leads().Update(ctx, l3, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	tests := []struct {
		name   string
		filter domain.LeadFilter
		want   []string
	}{
		{"all newest first", domain.LeadFilter{}, []string{"LD-3", "LD-2", "LD-1"}},
		{"by service", domain.LeadFilter{ServiceType: domain.ServiceMoving}, []string{"LD-3", "LD-1"}},
		{"by partner", domain.LeadFilter{PartnerID: "p-2"}, []string{"LD-3"}},
		{"with cancellation requests", domain.LeadFilter{WithCancellationRequests: true}, []string{"LD-1"}},
		{"paged", domain.LeadFilter{Limit: 1, Offset: 1}, []string{"LD-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Leads().List(ctx, tt.filter)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("List() returned %d leads, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].LeadID != id {
					t.Errorf("List()[%d] = %s, want %s", i, got[i].LeadID, id)
				}
			}
		})
	}

	status := domain.LeadPending
	pending, err := store.Leads().List(ctx, domain.LeadFilter{Status: &status})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(pending) != 1 || pending[0].LeadID != "LD-2" {
		t.Errorf("pending = %+v", pending)
	}

	withAssignments, _ := store.Leads().List(ctx, domain.LeadFilter{PartnerID: "p-1"})
	if len(withAssignments) != 1 || len(withAssignments[0].Assignments) != 1 {
		t.Errorf("assignments not loaded: %+v", withAssignments)
	}
}

func TestLead_CountAssignments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := domain.Partner{ID: "p-1", PartnerType: domain.PartnerBasic}
	from, to := domain.WeekBounds(t0)

	moving := testLead("LD-1", domain.ServiceMoving, t0)
	mustCreateLead(t, store, moving)
	moving.Assignments = []domain.PartnerAssignment{
		domain.NewAssignment("a-1", p, from),                       // first instant of the week
		domain.NewAssignment("a-2", p, t0),                         // this week, later rejected
		domain.NewAssignment("a-3", p, from.Add(-time.Nanosecond)), // last week
		domain.NewAssignment("a-4", p, to),                         // next week
	}
	moving.Assignments[1].Status = domain.AssignmentRejected
	if err := store.Leads().Update(ctx, moving, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	cleaning := testLead("LD-2", domain.ServiceCleaning, t0)
	mustCreateLead(t, store, cleaning)
	cleaning.Assignments = []domain.PartnerAssignment{domain.NewAssignment("a-5", p, t0)}
	if err := store.Leads().Update(ctx, cleaning, nil); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	n, err := store.Leads().CountAssignments(ctx, domain.AssignmentCountFilter{
		PartnerID: "p-1", ServiceType: domain.ServiceMoving, From: from, To: to,
	})
	if err != nil {
		t.Fatalf("CountAssignments failed: %v", err)
	}
	if n != 2 {
		t.Errorf("CountAssignments = %d, want 2", n)
	}
}

func TestLead_UpdateRejectsStaleVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustCreateLead(t, store, testLead("LD-1", domain.ServiceMoving, t0))

	first, err := store.Leads().GetByLeadID(ctx, "LD-1")
	if err != nil {
		t.Fatalf("GetByLeadID failed: %v", err)
	}
	second, err := store.Leads().GetByLeadID(ctx, "LD-1")
	if err != nil {
		t.Fatalf("GetByLeadID failed: %v", err)
	}
	if first.Version != 0 {
		t.Fatalf("Version = %d, want 0", first.Version)
	}

	first.Assignments = []domain.PartnerAssignment{domain.NewAssignment("a-ex", domain.Partner{ID: "ex", PartnerType: domain.PartnerExclusive}, t0)}
	first.Status = domain.LeadAssigned
	if err := store.Leads().Update(ctx, first, nil); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}

	second.Assignments = []domain.PartnerAssignment{domain.NewAssignment("a-ba", domain.Partner{ID: "ba", PartnerType: domain.PartnerBasic}, t0)}
	second.Status = domain.LeadPartialAssigned
	records := []domain.AuditRecord{{ID: "ev-stale", LeadID: "LD-1", Actor: "ops", Action: "commit", At: t0}}
	err = store.Leads().Update(ctx, second, records)
	if !errors.Is(err, domain.ErrConcurrentUpdate) {
		t.Fatalf("expected ErrConcurrentUpdate, got %v", err)
	}
	if domain.KindOf(err) != domain.KindConflict {
		t.Errorf("KindOf = %s, want %s", domain.KindOf(err), domain.KindConflict)
	}

	got, err := store.Leads().GetByLeadID(ctx, "LD-1")
	if err != nil {
		t.Fatalf("GetByLeadID failed: %v", err)
	}
	if got.Version != 1 {
		t.Errorf("Version = %d, want 1", got.Version)
	}
	if len(got.Assignments) != 1 || got.Assignments[0].PartnerID != "ex" {
		t.Errorf("stale write leaked into assignments: %+v", got.Assignments)
	}
	trail, _ := store.Leads().AuditTrail(ctx, "LD-1")
	if len(trail) != 0 {
		t.Errorf("stale write leaked audit records: %+v", trail)
	}
}

func TestLead_CorruptTimestampIsAnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lead := testLead("LD-1", domain.ServiceMoving, t0)
	lead.Assignments = []domain.PartnerAssignment{domain.NewAssignment("a-1", domain.Partner{ID: "p-1", PartnerType: domain.PartnerBasic}, t0)}
	mustCreateLead(t, store, lead)

	if _, err := store.DB().ExecContext(ctx,
		`UPDATE partner_assignments SET assigned_at = 'last tuesday' WHERE id = 'a-1'`); err != nil {
		t.Fatalf("corrupting row: %v", err)
	}

	if _, err := store.Leads().GetByLeadID(ctx, "LD-1"); err == nil {
		t.Error("expected an error for an unparseable assigned_at")
	}
	if _, err := store.Leads().List(ctx, domain.LeadFilter{}); err == nil {
		t.Error("expected List to fail on an unparseable assigned_at")
	}

	if _, err := store.DB().ExecContext(ctx,
		`UPDATE leads SET created_at = '' WHERE lead_id = 'LD-1'`); err != nil {
		t.Fatalf("corrupting row: %v", err)
	}
	if _, err := store.Leads().GetByLeadID(ctx, "LD-1"); err == nil {
		t.Error("expected an error for an empty created_at")
	}
}

func TestLead_ListOffsetWithoutLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{"LD-1", "LD-2", "LD-3"} {
		mustCreateLead(t, store, testLead(id, domain.ServiceMoving, t0.Add(time.Duration(i)*time.Hour)))
	}

	got, err := store.Leads().List(ctx, domain.LeadFilter{Offset: 1})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0].LeadID != "LD-2" || got[1].LeadID != "LD-1" {
		t.Errorf("List(offset 1) = %v, want [LD-2 LD-1]", leadIDs(got))
	}
}

func leadIDs(leads []domain.Lead) []string {
	out := make([]string, 0, len(leads))
	for _, l := range leads {
		out = append(out, l.LeadID)
	}
	return out
}
