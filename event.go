package tlc

import (
	"time"

	"github.com/google/uuid"
)

// Event names understood by DefaultDefinition
const (
	EventCrossingRequested = "crossing_requested"
	EventTimerExpired      = "timer_expired"
	EventYellowElapsed     = "yellow_elapsed"
	EventWalkComplete      = "walk_complete"
	EventHaltEngage        = "halt_engage"
	EventHaltRelease       = "halt_release"
)

// Ticket identifies the cycle a piece of in-flight work belongs to. Every
// completed cycle and every halt toggle invalidates outstanding tickets.
type Ticket struct {
	Cycle uint64
}

// Event is a proposal to move the intersection between phases
type Event struct {
	ID        string
	Name      string
	Ticket    Ticket
	Timestamp time.Time
}

// NewEvent creates a new event for the given ticket
func NewEvent(name string, ticket Ticket) Event {
	return Event{
		ID:        uuid.New().String(),
		Name:      name,
		Ticket:    ticket,
		Timestamp: time.Now(),
	}
}

// EventResult represents the result of processing an event
type EventResult struct {
	Processed       bool
	StateChanged    bool
	PreviousPhase   Phase
	CurrentPhase    Phase
	Ticket          Ticket
	Error           error
	RejectionReason string
}

// NewEventResult creates a new event result
func NewEventResult(processed, stateChanged bool, prev, current Phase) *EventResult {
	return &EventResult{
		Processed:     processed,
		StateChanged:  stateChanged,
		PreviousPhase: prev,
		CurrentPhase:  current,
	}
}

// WithError adds an error to the event result
func (r *EventResult) WithError(err error) *EventResult {
	r.Error = err
	return r
}

// WithRejection adds a rejection reason to the event result
func (r *EventResult) WithRejection(reason string) *EventResult {
	r.RejectionReason = reason
	r.Processed = false
	return r
}

// Success returns true if the event was processed successfully
func (r *EventResult) Success() bool {
	return r.Processed && r.Error == nil
}
