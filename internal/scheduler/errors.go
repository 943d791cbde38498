package scheduler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/workload/internal/calendar"
)

var (
	// ErrValidation marks requests rejected before any capacity computation.
	ErrValidation = errors.New("validation error")

	// ErrCapacity marks aggregate or per-day shortfalls.
	ErrCapacity = errors.New("insufficient capacity")

	// ErrInconsistency marks manual windows that contradict their declared hours
	// or fall outside the worker's schedule.
	ErrInconsistency = errors.New("inconsistent time window")
)

// ValidationError rejects malformed input: non-positive hours, unparsable
// dates, start >= end, deadline in the past.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation error: %s", e.Message)
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// CapacityError always carries both the requested and the available figures.
// Day is set for per-day failures and nil for aggregate ones.
type CapacityError struct {
	Day       *calendar.Day
	Requested float64
	Available float64
	Reason    string
}

func (e *CapacityError) Error() string {
	var b strings.Builder
	b.WriteString("insufficient capacity")
	if e.Day != nil {
		fmt.Fprintf(&b, " on %s", e.Day)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, " (%s)", e.Reason)
	}
	fmt.Fprintf(&b, ": requested %.2fh, available: %.2fh", e.Requested, e.Available)
	return b.String()
}

func (e *CapacityError) Is(target error) bool { return target == ErrCapacity }

// Shortfall is how many requested hours could not be placed.
func (e *CapacityError) Shortfall() float64 { return e.Requested - e.Available }

// InconsistencyError reports one offending manual entry.
type InconsistencyError struct {
	Day     calendar.Day
	Message string
}

func (e *InconsistencyError) Error() string {
	return fmt.Sprintf("inconsistent window on %s: %s", e.Day, e.Message)
}

func (e *InconsistencyError) Is(target error) bool { return target == ErrInconsistency }

// ReportError wraps a failed ValidationReport so it can travel as an error.
// errors.Is matches every kind of issue the report contains.
type ReportError struct {
	Report ValidationReport
}

func (e *ReportError) Error() string {
	msgs := make([]string, 0, len(e.Report.Issues))
	for _, is := range e.Report.Issues {
		msgs = append(msgs, is.Message)
	}
	return fmt.Sprintf("allocation rejected (%d problems): %s", len(msgs), strings.Join(msgs, "; "))
}

func (e *ReportError) Unwrap() []error {
	errs := make([]error, 0, len(e.Report.Issues))
	for _, is := range e.Report.Issues {
		errs = append(errs, is.Err)
	}
	return errs
}
