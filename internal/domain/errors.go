package domain

import (
	"errors"
	"fmt"
)

// Kind is the stable classification of a workflow error.
type Kind string

const (
	KindInvalidTransition          Kind = "InvalidTransition"
	KindExclusivityViolation       Kind = "ExclusivityViolation"
	KindDuplicateAssignment        Kind = "DuplicateAssignment"
	KindInvalidCancellationRequest Kind = "InvalidCancellationRequest"
	KindNotFound                   Kind = "NotFound"
	KindConflict                   Kind = "Conflict"
	KindValidation                 Kind = "ValidationError"
	KindUnavailable                Kind = "Unavailable"
	KindInternal                   Kind = "Internal"
)

// Sentinel errors for simple conditions without extra context.
var (
	ErrLeadNotFound       = errors.New("lead not found")
	ErrPartnerNotFound    = errors.New("partner not found")
	ErrAssignmentNotFound = errors.New("assignment not found")

	// ErrConcurrentUpdate is returned by LeadRepository.Update when the
	// stored lead changed since it was loaded.
	ErrConcurrentUpdate = errors.New("lead was modified concurrently")
)

// TransitionError is returned when a state transition is not allowed.
// Subject is "assignment" or "lead".
type TransitionError struct {
	Subject string
	Event   string
	Current string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from %s state %q", e.Event, e.Subject, e.Current)
}

// ExclusivityViolationError is returned when an operation would leave an
// exclusive assignment active next to any other active assignment.
type ExclusivityViolationError struct {
	LeadID    string
	PartnerID string
	// HolderID is the partner whose active assignment blocks the operation.
	HolderID string
}

func (e *ExclusivityViolationError) Error() string {
	return fmt.Sprintf("lead %q: partner %q conflicts with the active assignment of partner %q", e.LeadID, e.PartnerID, e.HolderID)
}

// DuplicateAssignmentError is returned when a partner already holds a
// non-terminal assignment on the lead.
type DuplicateAssignmentError struct {
	LeadID    string
	PartnerID string
}

func (e *DuplicateAssignmentError) Error() string {
	return fmt.Sprintf("partner %q already holds an active assignment on lead %q", e.PartnerID, e.LeadID)
}

// InvalidCancellationRequestError is returned when a partner may not request
// cancellation of an assignment.
type InvalidCancellationRequestError struct {
	AssignmentID string
	Reason       string
}

func (e *InvalidCancellationRequestError) Error() string {
	return fmt.Sprintf("cancellation request for assignment %q rejected: %s", e.AssignmentID, e.Reason)
}

// ValidationError reports a missing or malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UnavailableError wraps a transient infrastructure failure.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: service unavailable: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}

	if errors.Is(err, ErrLeadNotFound) || errors.Is(err, ErrPartnerNotFound) || errors.Is(err, ErrAssignmentNotFound) {
		return KindNotFound
	}
	if errors.Is(err, ErrConcurrentUpdate) {
		return KindConflict
	}

	var (
		trErr     *TransitionError
		exclErr   *ExclusivityViolationError
		dupErr    *DuplicateAssignmentError
		cancelErr *InvalidCancellationRequestError
		valErr    *ValidationError
		unavErr   *UnavailableError
	)
	switch {
	case errors.As(err, &trErr):
		return KindInvalidTransition
	case errors.As(err, &exclErr):
		return KindExclusivityViolation
	case errors.As(err, &dupErr):
		return KindDuplicateAssignment
	case errors.As(err, &cancelErr):
		return KindInvalidCancellationRequest
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &unavErr):
		return KindUnavailable
	}
	return KindInternal
}
