package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/tlc"
)

// ValidationObserver checks that every transition taken is one the definition
// allows, and records which phases were visited.
type ValidationObserver struct {
	tlc.BaseObserver

	allowedTransitions map[tlc.Phase]map[tlc.Phase]bool
	visitedPhases      map[tlc.Phase]bool
	violations         []string
	mutex              sync.RWMutex
}

// NewValidationObserver creates a validator for def
func NewValidationObserver(def *tlc.Definition) *ValidationObserver {
	o := &ValidationObserver{
		allowedTransitions: make(map[tlc.Phase]map[tlc.Phase]bool),
		visitedPhases:      make(map[tlc.Phase]bool),
		violations:         make([]string, 0),
	}
	for _, t := range def.All() {
		o.AddAllowedTransition(t.From, t.To)
	}
	return o
}

// AddAllowedTransition adds an allowed transition
func (o *ValidationObserver) AddAllowedTransition(from, to tlc.Phase) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, exists := o.allowedTransitions[from]; !exists {
		o.allowedTransitions[from] = make(map[tlc.Phase]bool)
	}
	o.allowedTransitions[from][to] = true
}

// OnTransition validates transitions
func (o *ValidationObserver) OnTransition(from, to tlc.Phase, event tlc.Event) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedPhases[to] = true
	if !o.allowedTransitions[from][to] {
		o.violations = append(o.violations, fmt.Sprintf(
			"invalid transition from %s to %s on event %s", from, to, event.Name))
	}
}

// OnPedestrianTime checks the crossing time never goes negative
func (o *ValidationObserver) OnPedestrianTime(remaining int) {
	if remaining >= 0 {
		return
	}
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, fmt.Sprintf("negative crossing time %d", remaining))
}

// OnRequest has nothing to check
func (o *ValidationObserver) OnRequest(tlc.Request) {}

// GetViolations returns all validation violations
func (o *ValidationObserver) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// Visited reports whether a transition into p was observed
func (o *ValidationObserver) Visited(p tlc.Phase) bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.visitedPhases[p]
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedPhases = make(map[tlc.Phase]bool)
	o.violations = make([]string, 0)
}
