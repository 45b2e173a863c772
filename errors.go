package tlc

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the intersection
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// Transition is not allowed from the current phase
	ErrCodeTransitionNotAllowed
	// Guard condition rejected the transition
	ErrCodeGuardRejected
	// Event is invalid for the current context
	ErrCodeInvalidEvent
	// Action execution failed
	ErrCodeActionFailed
	// Configuration is invalid
	ErrCodeInvalidConfiguration
	// Request state does not allow the operation
	ErrCodeInvalidState
	// Ticket belongs to a cycle that has already ended
	ErrCodeStaleTicket
)

var (
	// ErrStaleTicket is returned when a ticket outlived the cycle it was issued for,
	// typically because the halt override toggled in the meantime.
	ErrStaleTicket = errors.New("ticket belongs to an ended cycle")

	// ErrHalted is returned when an operation is refused because the intersection is halted.
	ErrHalted = errors.New("intersection is halted")
)

// TransitionError represents transition-related errors
type TransitionError struct {
	Code   ErrorCode
	From   Phase
	To     Phase
	Event  string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition error [%s->%s on %s]: %s", e.From, e.To, e.Event, e.Reason)
}

// NewNoTransitionError creates a new no transition found error
func NewNoTransitionError(from Phase, event string) *TransitionError {
	return &TransitionError{
		Code:   ErrCodeTransitionNotAllowed,
		From:   from,
		To:     from,
		Event:  event,
		Reason: fmt.Sprintf("no transition found from phase '%s' for event '%s'", from, event),
	}
}

// NewInvalidEventError creates an error for events that cannot be dispatched at all
func NewInvalidEventError(from Phase, event string, reason string) *TransitionError {
	return &TransitionError{
		Code:   ErrCodeInvalidEvent,
		From:   from,
		To:     from,
		Event:  event,
		Reason: reason,
	}
}

// GuardError represents guard condition failures
type GuardError struct {
	From   Phase
	To     Phase
	Event  string
	Reason string
}

func (e *GuardError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("guard rejected transition [%s->%s on %s]: %s", e.From, e.To, e.Event, e.Reason)
	}
	return fmt.Sprintf("guard rejected transition [%s->%s on %s]", e.From, e.To, e.Event)
}

// NewGuardRejectedError creates a new guard rejected error
func NewGuardRejectedError(from, to Phase, event string, reason string) *GuardError {
	return &GuardError{
		From:   from,
		To:     to,
		Event:  event,
		Reason: reason,
	}
}

// ConfigurationError represents intersection configuration issues
type ConfigurationError struct {
	Component string
	Issue     string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Issue)
}

// NewConfigurationError creates a new configuration error
func NewConfigurationError(component, issue string) *ConfigurationError {
	return &ConfigurationError{
		Component: component,
		Issue:     issue,
	}
}

// ActionError represents action execution errors
type ActionError struct {
	Event       string
	Phase       Phase
	OriginalErr error
}

func (e *ActionError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("action for '%s' failed in phase '%s': %v", e.Event, e.Phase, e.OriginalErr)
	}
	return fmt.Sprintf("action for '%s' failed in phase '%s'", e.Event, e.Phase)
}

func (e *ActionError) Unwrap() error {
	return e.OriginalErr
}

// NewActionError creates a new action execution error
func NewActionError(event string, phase Phase, err error) *ActionError {
	return &ActionError{
		Event:       event,
		Phase:       phase,
		OriginalErr: err,
	}
}

// RequestError is returned by the pedestrian request operations when the
// debounce state does not permit the call.
type RequestError struct {
	Operation string
	State     Request
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request error during %s: not allowed in state %s", e.Operation, e.State)
}

// IsTransitionError checks if an error is a TransitionError
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}

// IsGuardError checks if an error is a GuardError
func IsGuardError(err error) bool {
	var ge *GuardError
	return errors.As(err, &ge)
}

// IsConfigurationError checks if an error is a ConfigurationError
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsActionError checks if an error is an ActionError
func IsActionError(err error) bool {
	var ae *ActionError
	return errors.As(err, &ae)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		te *TransitionError
		ge *GuardError
		ce *ConfigurationError
		ae *ActionError
		re *RequestError
	)

	switch {
	case err == nil:
		return ErrCodeNone
	case errors.Is(err, ErrStaleTicket):
		return ErrCodeStaleTicket
	case errors.As(err, &te):
		return te.Code
	case errors.As(err, &ge):
		return ErrCodeGuardRejected
	case errors.As(err, &ce):
		return ErrCodeInvalidConfiguration
	case errors.As(err, &ae):
		return ErrCodeActionFailed
	case errors.As(err, &re), errors.Is(err, ErrHalted):
		return ErrCodeInvalidState
	default:
		return ErrCodeNone
	}
}
