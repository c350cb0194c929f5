package domain

import "strings"

// PartnerType is the tier a partner is contracted on.
type PartnerType string

const (
	PartnerBasic     PartnerType = "basic"
	PartnerExclusive PartnerType = "exclusive"
)

// Valid reports whether t is a known tier.
func (t PartnerType) Valid() bool {
	return t == PartnerBasic || t == PartnerExclusive
}

// PartnerStatus is the account state of a partner. Only active partners
// receive leads.
type PartnerStatus string

const (
	PartnerActive    PartnerStatus = "active"
	PartnerSuspended PartnerStatus = "suspended"
	PartnerPending   PartnerStatus = "pending"
	PartnerRejected  PartnerStatus = "rejected"
)

// Valid reports whether s is a known account state.
func (s PartnerStatus) Valid() bool {
	switch s {
	case PartnerActive, PartnerSuspended, PartnerPending, PartnerRejected:
		return true
	}
	return false
}

// PartnerRef is the normalized reference to a partner used inside the
// workflow. Adapters reconcile legacy id fields into it.
type PartnerRef struct {
	ID string
}

// Partner is a service provider. The workflow reads it but never changes it.
type Partner struct {
	ID               string
	CompanyName      string
	ContactFirstName string
	ContactLastName  string
	Email            string
	PartnerType      PartnerType
	Services         []ServiceType
	// LegacyServiceType is the single service recorded by older partner
	// records that predate Services.
	LegacyServiceType ServiceType
	Status            PartnerStatus
	// CustomLeadsPerWeek overrides the configured quota when positive.
	CustomLeadsPerWeek int
}

// Ref returns the normalized reference for p.
func (p Partner) Ref() PartnerRef {
	return PartnerRef{ID: p.ID}
}

// Validate checks the fields the workflow relies on.
func (p Partner) Validate() error {
	switch {
	case isBlank(p.ID):
		return &ValidationError{Field: "partnerId", Message: "is required"}
	case !p.PartnerType.Valid():
		return &ValidationError{Field: "partnerType", Message: "must be basic or exclusive"}
	case !p.Status.Valid():
		return &ValidationError{Field: "status", Message: "unknown partner status " + string(p.Status)}
	case p.CustomLeadsPerWeek < 0:
		return &ValidationError{Field: "customLeadsPerWeek", Message: "must not be negative"}
	}
	return nil
}

// Offers reports whether the partner provides the given service.
func (p Partner) Offers(service ServiceType) bool {
	for _, s := range p.Services {
		if s == service {
			return true
		}
	}
	return p.LegacyServiceType != "" && p.LegacyServiceType == service
}

// MatchesSearch reports whether the free-text query matches the partner's
// company name, id, contact name or email, ignoring case. An empty query
// matches every partner.
func (p Partner) MatchesSearch(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{p.CompanyName, p.ID, p.ContactFirstName, p.ContactLastName, p.Email} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
