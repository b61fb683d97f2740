package period

import "errors"

var (
	ErrPeriodNotFound    = errors.New("payroll period not found")
	ErrInvalidTransition = errors.New("invalid period status transition")
	ErrImmutablePeriod   = errors.New("period is immutable")
	ErrPermissionDenied  = errors.New("reopen permission required")
	ErrNoValidEmployees  = errors.New("period has no valid employees")
)
