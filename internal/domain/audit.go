package domain

import (
	"context"
	"strings"
	"time"
)

// Audit actions that are not assignment events.
const (
	ActionCreate   = "create"
	ActionCommit   = "commit"
	ActionComplete = "complete"
)

// SystemActor is recorded when the caller did not identify itself.
const SystemActor = "system"

// AuditRecord describes one state change, written together with it.
type AuditRecord struct {
	ID           string
	LeadID       string
	AssignmentID string
	PartnerID    string
	Actor        string
	Action       string
	FromStatus   AssignmentStatus
	ToStatus     AssignmentStatus
	LeadFrom     LeadStatus
	LeadTo       LeadStatus
	Reason       string
	At           time.Time
}

type actorKey struct{}

// WithActor returns a context that carries the acting user.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the acting user carried by ctx, or SystemActor.
func ActorFrom(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && !isBlank(actor) {
		return actor
	}
	return SystemActor
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
