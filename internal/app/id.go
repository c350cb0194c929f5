package app

import (
	"strings"

	"github.com/google/uuid"
)

// newID produces a random internal identifier.
func newID() string {
	return uuid.NewString()
}

// newLeadID produces the human-readable lead reference shown to operators.
func newLeadID() string {
	u := uuid.New()
	return "LD-" + strings.ToUpper(strings.ReplaceAll(u.String(), "-", "")[:8])
}
