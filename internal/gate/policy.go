// Package gate enforces tier quotas before a chat turn reaches any model.
package gate

import (
	"time"

	"github.com/Tattzy25/real-code-homie/internal/domain"
)

type Window string

const (
	WindowDaily   Window = "daily"
	WindowMonthly Window = "monthly"
	WindowNone    Window = "none"
)

type Policy struct {
	Limit  int64
	Window Window
}

// PolicyFor returns the quota policy for a tier. Unknown tiers get the free
// policy, the conservative choice.
func PolicyFor(tier domain.Tier) Policy {
	switch tier {
	case domain.TierPro:
		return Policy{Limit: 100, Window: WindowMonthly}
	case domain.TierEngineer:
		return Policy{Window: WindowNone}
	default:
		return Policy{Limit: 3, Window: WindowDaily}
	}
}

// Allows reports whether a caller with used consumed slots may proceed.
func (p Policy) Allows(used int64) bool {
	if p.Window == WindowNone {
		return true
	}
	return used < p.Limit
}

// Exceeded builds the matching quota error for this policy's window.
func (p Policy) Exceeded() *domain.QuotaError {
	if p.Window == WindowMonthly {
		return domain.NewMonthlyQuotaError(p.Limit)
	}
	return domain.NewDailyQuotaError(p.Limit)
}

// PeriodKey names the current quota period, UTC: "2006-01-02" for daily
// windows, "2006-01" for monthly.
func (p Policy) PeriodKey(now time.Time) string {
	now = now.UTC()
	if p.Window == WindowMonthly {
		return now.Format("2006-01")
	}
	return now.Format("2006-01-02")
}

// PeriodBounds returns the [from, to) span of the current period, UTC.
func (p Policy) PeriodBounds(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	if p.Window == WindowMonthly {
		from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0)
	}
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}
