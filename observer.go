package tlc

import "sync"

// Observer represents an entity that observes phase changes. Observers are
// called with the intersection lock held and must not call back into it.
type Observer interface {
	// OnTransition is called when a transition is taken, including self transitions
	OnTransition(from Phase, to Phase, event Event)

	// OnEventRejected is called when an event is rejected (no valid transition)
	OnEventRejected(event Event, reason string)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver interface {
	Observer

	// OnPedestrianTime is called whenever the remaining crossing time changes
	OnPedestrianTime(remaining int)

	// OnRequest is called whenever the pedestrian debounce state changes
	OnRequest(state Request)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver struct{}

// OnTransition implements the required Observer method
func (o *BaseObserver) OnTransition(from Phase, to Phase, event Event) {}

// OnEventRejected implements the required Observer method
func (o *BaseObserver) OnEventRejected(event Event, reason string) {}

// OnPedestrianTime implements the optional ExtendedObserver method
func (o *BaseObserver) OnPedestrianTime(remaining int) {}

// OnRequest implements the optional ExtendedObserver method
func (o *BaseObserver) OnRequest(state Request) {}

// ObserverManager manages a collection of observers
type ObserverManager struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewObserverManager creates a new observer manager
func NewObserverManager() *ObserverManager {
	return &ObserverManager{
		observers: make([]Observer, 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager) AddObserver(observer Observer) {
	if observer == nil {
		return
	}
	om.mu.Lock()
	defer om.mu.Unlock()
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager) RemoveObserver(observer Observer) {
	om.mu.Lock()
	defer om.mu.Unlock()
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

func (om *ObserverManager) snapshot() []Observer {
	om.mu.RLock()
	defer om.mu.RUnlock()
	observers := make([]Observer, len(om.observers))
	copy(observers, om.observers)
	return observers
}

// NotifyTransition notifies all observers of a phase transition
func (om *ObserverManager) NotifyTransition(from Phase, to Phase, event Event) {
	for _, observer := range om.snapshot() {
		observer.OnTransition(from, to, event)
	}
}

// NotifyEventRejected notifies all observers of a rejected event
func (om *ObserverManager) NotifyEventRejected(event Event, reason string) {
	for _, observer := range om.snapshot() {
		observer.OnEventRejected(event, reason)
	}
}

// NotifyPedestrianTime notifies extended observers of a crossing time change
func (om *ObserverManager) NotifyPedestrianTime(remaining int) {
	for _, observer := range om.snapshot() {
		if ext, ok := observer.(ExtendedObserver); ok {
			ext.OnPedestrianTime(remaining)
		}
	}
}

// NotifyRequest notifies extended observers of a debounce state change
func (om *ObserverManager) NotifyRequest(state Request) {
	for _, observer := range om.snapshot() {
		if ext, ok := observer.(ExtendedObserver); ok {
			ext.OnRequest(state)
		}
	}
}
