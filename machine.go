package tlc

import (
	"fmt"
	"strings"
)

// Machine applies a Definition to the intersection record. It is not safe for
// concurrent use; Intersection serialises every call.
type Machine struct {
	def       *Definition
	current   Phase
	rec       *record
	observers *ObserverManager
}

func newMachine(def *Definition, initial Phase, rec *record, observers *ObserverManager) *Machine {
	return &Machine{
		def:       def,
		current:   initial,
		rec:       rec,
		observers: observers,
	}
}

// Phase returns the current phase
func (m *Machine) Phase() Phase {
	return m.current
}

// safeEvaluateGuard safely evaluates a guard function with panic recovery
func safeEvaluateGuard(guard GuardFunc, ctx *Context) (result bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = false
			err = fmt.Errorf("guard panic: %v", r)
		}
	}()

	result = guard(ctx)
	return result, nil
}

// safeExecuteAction safely executes an action function with panic recovery
func safeExecuteAction(action ActionFunc, ctx *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panic: %v", r)
		}
	}()

	err = action(ctx)
	return err
}

// Fire processes one event. The first transition leaving the current phase
// on the event whose guard holds is taken; its action runs before the phase
// changes and a failing action aborts the transition.
func (m *Machine) Fire(event Event) *EventResult {
	if strings.TrimSpace(event.Name) == "" {
		reason := "event name cannot be empty"
		m.observers.NotifyEventRejected(event, reason)
		return NewEventResult(false, false, m.current, m.current).
			WithRejection(reason).
			WithError(NewInvalidEventError(m.current, event.Name, reason))
	}

	var rejected *GuardError
	for _, t := range m.def.transitions[m.current] {
		if t.Event != event.Name {
			continue
		}

		ctx := newContext(event, t.From, t.To, m.rec)
		if t.Guard != nil {
			ok, err := safeEvaluateGuard(t.Guard, ctx)
			if err != nil {
				reason := fmt.Sprintf("guard failed: %v", err)
				m.observers.NotifyEventRejected(event, reason)
				return NewEventResult(false, false, m.current, m.current).
					WithRejection(reason).
					WithError(err)
			}
			if !ok {
				if rejected == nil {
					rejected = NewGuardRejectedError(t.From, t.To, event.Name, ctx.denial)
				}
				continue
			}
		}

		if t.Action != nil {
			if err := safeExecuteAction(t.Action, ctx); err != nil {
				reason := fmt.Sprintf("transition action failed: %v", err)
				m.observers.NotifyEventRejected(event, reason)
				return NewEventResult(false, false, m.current, m.current).
					WithRejection(reason).
					WithError(NewActionError(event.Name, m.current, err))
			}
		}

		previous := m.current
		m.current = t.To
		m.observers.NotifyTransition(previous, m.current, event)

		return NewEventResult(true, previous != m.current, previous, m.current)
	}

	if rejected != nil {
		m.observers.NotifyEventRejected(event, rejected.Error())
		return NewEventResult(false, false, m.current, m.current).
			WithRejection(rejected.Error()).
			WithError(rejected)
	}

	err := NewNoTransitionError(m.current, event.Name)
	m.observers.NotifyEventRejected(event, err.Reason)
	return NewEventResult(false, false, m.current, m.current).
		WithRejection(err.Reason).
		WithError(err)
}
