package tlc

import (
	"sync"
	"testing"
)

// TestObserver is a mock observer for testing that captures all observer events
type TestObserver struct {
	mutex           sync.RWMutex
	Transitions     []TransitionEvent
	EventRejects    []EventRejectEvent
	PedestrianTimes []int
	Requests        []Request
}

type TransitionEvent struct {
	From  Phase
	To    Phase
	Event Event
}

type EventRejectEvent struct {
	Event  Event
	Reason string
}

// NewTestObserver creates a new test observer
func NewTestObserver() *TestObserver {
	return &TestObserver{
		Transitions:     make([]TransitionEvent, 0),
		EventRejects:    make([]EventRejectEvent, 0),
		PedestrianTimes: make([]int, 0),
		Requests:        make([]Request, 0),
	}
}

// Observer interface implementations
func (o *TestObserver) OnTransition(from Phase, to Phase, event Event) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = append(o.Transitions, TransitionEvent{From: from, To: to, Event: event})
}

func (o *TestObserver) OnEventRejected(event Event, reason string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.EventRejects = append(o.EventRejects, EventRejectEvent{Event: event, Reason: reason})
}

// ExtendedObserver interface implementations
func (o *TestObserver) OnPedestrianTime(remaining int) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.PedestrianTimes = append(o.PedestrianTimes, remaining)
}

func (o *TestObserver) OnRequest(state Request) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Requests = append(o.Requests, state)
}

// Helper methods for test assertions
func (o *TestObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = nil
	o.EventRejects = nil
	o.PedestrianTimes = nil
	o.Requests = nil
}

func (o *TestObserver) TransitionCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.Transitions)
}

func (o *TestObserver) RejectCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.EventRejects)
}

func (o *TestObserver) LastTransition() *TransitionEvent {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	if len(o.Transitions) == 0 {
		return nil
	}
	return &o.Transitions[len(o.Transitions)-1]
}

// Phases returns the target phase of every recorded transition
func (o *TestObserver) Phases() []Phase {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	out := make([]Phase, len(o.Transitions))
	for i, t := range o.Transitions {
		out[i] = t.To
	}
	return out
}

// Test intersection builders - common wiring for testing

// NorthSouthApproaches returns the reference north-south wiring
func NorthSouthApproaches() [2]Approach {
	return [2]Approach{
		{Direction: North, Lamps: [3]Pin{16, 17, 18}, Buttons: [2]Pin{14, 15}, Buzzer: 25, Walk: 32},
		{Direction: South, Lamps: [3]Pin{19, 21, 22}, Buttons: [2]Pin{12, 13}, Buzzer: 26, Walk: 33},
	}
}

// EastWestApproaches returns the reference east-west wiring
func EastWestApproaches() [2]Approach {
	return [2]Approach{
		{Direction: East, Lamps: [3]Pin{16, 17, 18}, Buttons: [2]Pin{12, 15}, Buzzer: 25, Walk: 32},
		{Direction: West, Lamps: [3]Pin{19, 21, 22}, Buttons: [2]Pin{13, 14}, Buzzer: 26, Walk: 33},
	}
}

// CreateTestIntersection creates a north-south intersection with the observer attached
func CreateTestIntersection(t *testing.T, observer Observer, opts ...Option) *Intersection {
	t.Helper()
	if observer != nil {
		opts = append(opts, WithObserver(observer))
	}
	i, err := NewIntersection(NorthSouthApproaches(), opts...)
	if err != nil {
		t.Fatalf("Failed to create intersection: %v", err)
	}
	return i
}

// Test assertions and utilities

// AssertPhase checks if the intersection is in the expected phase
func AssertPhase(t *testing.T, i *Intersection, expected Phase) {
	t.Helper()
	if current := i.Phase(); current != expected {
		t.Errorf("Expected phase %s, got %s", expected, current)
	}
}

// AssertPhaseChanged checks if a phase transition occurred
func AssertPhaseChanged(t *testing.T, result *EventResult, expectedPrevious, expectedCurrent Phase) {
	t.Helper()
	if !result.StateChanged {
		t.Error("Expected phase to change")
	}
	if result.PreviousPhase != expectedPrevious {
		t.Errorf("Expected previous phase %s, got %s", expectedPrevious, result.PreviousPhase)
	}
	if result.CurrentPhase != expectedCurrent {
		t.Errorf("Expected current phase %s, got %s", expectedCurrent, result.CurrentPhase)
	}
}

// AssertEventProcessed checks if event was processed successfully
func AssertEventProcessed(t *testing.T, result *EventResult, shouldProcess bool) {
	t.Helper()
	if result.Processed != shouldProcess {
		if shouldProcess {
			t.Errorf("Expected event to be processed, rejected with: %s", result.RejectionReason)
		} else {
			t.Error("Expected event to be rejected")
		}
	}
}

// AssertPedestrianTime checks the remaining crossing time
func AssertPedestrianTime(t *testing.T, i *Intersection, expected int) {
	t.Helper()
	if got := i.Snapshot().PedestrianTime; got != expected {
		t.Errorf("Expected crossing time %d, got %d", expected, got)
	}
}

// RunCycle drives i through a complete GREEN→YELLOW→RED→GREEN cycle without
// the hold extension. It returns the ticket the cycle ran under.
func RunCycle(t *testing.T, i *Intersection) Ticket {
	t.Helper()

	res := i.RequestCrossing()
	AssertEventProcessed(t, res, true)
	ticket := res.Ticket

	AssertEventProcessed(t, i.ExpireTimer(ticket), true)
	AssertEventProcessed(t, i.ElapseYellow(ticket), true)
	for {
		_, ok, err := i.Countdown(ticket)
		if err != nil {
			t.Fatalf("Countdown failed: %v", err)
		}
		if !ok {
			break
		}
	}
	AssertEventProcessed(t, i.CompleteWalk(ticket), true)
	return ticket
}
