package domain

import "time"

// Fallback quotas used when neither the partner nor the admin settings
// define one.
const (
	FallbackMovingBasic     = 3
	FallbackMovingExclusive = 5
	FallbackOtherBasic      = 5
	FallbackOtherExclusive  = 8
)

// FallbackLeadsPerWeek returns the hard-coded quota for a service and tier.
func FallbackLeadsPerWeek(service ServiceType, tier PartnerType) int {
	if service == ServiceMoving {
		if tier == PartnerExclusive {
			return FallbackMovingExclusive
		}
		return FallbackMovingBasic
	}
	if tier == PartnerExclusive {
		return FallbackOtherExclusive
	}
	return FallbackOtherBasic
}

// WeeklyLimit resolves a partner's quota for a service: the partner override
// first, then the admin distribution matrix, then the fallback constants.
// Pass zero-value settings when the real ones are unavailable.
func WeeklyLimit(p Partner, service ServiceType, settings AdminSettings) int {
	if p.CustomLeadsPerWeek > 0 {
		return p.CustomLeadsPerWeek
	}
	if n, ok := settings.LeadsPerWeek(service, p.PartnerType); ok {
		return n
	}
	return FallbackLeadsPerWeek(service, p.PartnerType)
}

// Capacity is a partner's quota usage for one service in the current week.
type Capacity struct {
	Current int
	Limit   int
}

// HasCapacity reports whether another lead fits under the limit. The limit is
// advisory: callers warn rather than refuse when it is reached.
func (c Capacity) HasCapacity() bool {
	return c.Current < c.Limit
}

// WeekBounds returns the half-open interval [start, end) of the week that
// contains t. Weeks start on Monday 00:00 UTC.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7 // Monday == 0
	start := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 7)
}
