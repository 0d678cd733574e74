package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrInvalidRequest   = errors.New("invalid request")
	ErrUpstreamModel    = errors.New("upstream model failure")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
)

type QuotaWindow string

const (
	QuotaWindowDaily   QuotaWindow = "daily"
	QuotaWindowMonthly QuotaWindow = "monthly"
)

const (
	CodeDailyLimitExceeded   = "DAILY_LIMIT_EXCEEDED"
	CodeMonthlyLimitExceeded = "MONTHLY_LIMIT_EXCEEDED"
)

// QuotaError aborts a turn before any side effect. Code is machine-readable,
// Message is the user-facing upgrade copy.
type QuotaError struct {
	Window  QuotaWindow
	Code    string
	Message string
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded (%s)", e.Window)
}

func NewDailyQuotaError(limit int64) *QuotaError {
	return &QuotaError{
		Window: QuotaWindowDaily,
		Code:   CodeDailyLimitExceeded,
		Message: fmt.Sprintf("You've reached your daily limit of %d messages. "+
			"Upgrade to a paid plan for more usage.", limit),
	}
}

func NewMonthlyQuotaError(limit int64) *QuotaError {
	return &QuotaError{
		Window: QuotaWindowMonthly,
		Code:   CodeMonthlyLimitExceeded,
		Message: fmt.Sprintf("You've reached your monthly limit of %d messages. "+
			"Upgrade to Pro Engineer for unlimited usage.", limit),
	}
}
