package tlc

import (
	"testing"
)

func TestDefinitionBuilder_BasicCreation(t *testing.T) {
	builder := NewDefinition()
	if builder == nil {
		t.Error("Expected non-nil definition builder")
	}
}

func TestDefinitionBuilder_SimpleCycle(t *testing.T) {
	def, err := NewDefinition().
		From(Green).To(Yellow).On("next").
		From(Yellow).To(Red).On("next").
		From(Red).To(Green).On("next").
		Build()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for _, p := range Phases() {
		transitions := def.Transitions(p)
		if len(transitions) != 1 {
			t.Fatalf("Expected 1 transition from %s, got %d", p, len(transitions))
		}
		if transitions[0].To != p.Next() {
			t.Errorf("Expected %s to lead to %s, got %s", p, p.Next(), transitions[0].To)
		}
	}

	if len(def.Events()) != 1 {
		t.Errorf("Expected 1 distinct event, got %d", len(def.Events()))
	}
}

func TestDefinitionBuilder_MultipleSources(t *testing.T) {
	def, err := NewDefinition().
		From(Green, Yellow, Red).To(Red).On("stop").
		Build()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for _, p := range Phases() {
		if !def.Accepts(p, "stop") {
			t.Errorf("Expected %s to accept stop", p)
		}
	}

	if len(def.All()) != 3 {
		t.Errorf("Expected 3 transitions, got %d", len(def.All()))
	}
}

func TestDefinitionBuilder_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		builder func() DefinitionBuilder
	}{
		{
			name: "no transitions",
			builder: func() DefinitionBuilder {
				return NewDefinition()
			},
		},
		{
			name: "missing source",
			builder: func() DefinitionBuilder {
				b := NewDefinition()
				b.From().To(Red).On("stop")
				return b
			},
		},
		{
			name: "missing target",
			builder: func() DefinitionBuilder {
				b := NewDefinition()
				b.From(Green).On("stop")
				return b
			},
		},
		{
			name: "invalid target",
			builder: func() DefinitionBuilder {
				b := NewDefinition()
				b.From(Green).To(Phase(7)).On("stop")
				return b
			},
		},
		{
			name: "invalid source",
			builder: func() DefinitionBuilder {
				b := NewDefinition()
				b.From(Phase(-1)).To(Red).On("stop")
				return b
			},
		},
		{
			name: "empty event",
			builder: func() DefinitionBuilder {
				b := NewDefinition()
				b.From(Green).To(Red).On("  ")
				return b
			},
		},
		{
			name: "duplicate transition",
			builder: func() DefinitionBuilder {
				b := NewDefinition()
				b.From(Green).To(Red).On("stop").
					From(Green).To(Yellow).On("stop")
				return b
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			def, err := tc.builder().Build()
			if err == nil {
				t.Fatal("Expected build error")
			}
			if def != nil {
				t.Error("Expected nil definition on error")
			}
			if !IsConfigurationError(err) {
				t.Errorf("Expected configuration error, got %T", err)
			}
		})
	}
}

func TestDefinitionBuilder_GuardsCombine(t *testing.T) {
	calls := 0
	allow := func(ctx *Context) bool { calls++; return true }
	deny := func(ctx *Context) bool { calls++; return ctx.Deny("no") }

	def, err := NewDefinition().
		From(Green).To(Red).On("stop").When(allow).When(deny).
		Build()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	rec := &record{crossingTime: DefaultCrossingTime, observers: NewObserverManager()}
	m := newMachine(def, Green, rec, rec.observers)

	result := m.Fire(NewEvent("stop", Ticket{}))
	AssertEventProcessed(t, result, false)
	if calls != 2 {
		t.Errorf("Expected both guards to run, got %d calls", calls)
	}
	if !IsGuardError(result.Error) {
		t.Errorf("Expected guard error, got %v", result.Error)
	}
}

func TestDefinitionBuilder_Unless(t *testing.T) {
	def, err := NewDefinition().
		From(Green).To(Red).On("stop").Unless(halted).
		Build()
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	rec := &record{crossingTime: DefaultCrossingTime, observers: NewObserverManager()}
	m := newMachine(def, Green, rec, rec.observers)

	AssertEventProcessed(t, m.Fire(NewEvent("stop", Ticket{})), true)
	if m.Phase() != Red {
		t.Errorf("Expected RED, got %s", m.Phase())
	}
}

func TestDefaultDefinition_Shape(t *testing.T) {
	def := DefaultDefinition()

	expected := []struct {
		from  Phase
		event string
	}{
		{Green, EventCrossingRequested},
		{Green, EventTimerExpired},
		{Yellow, EventYellowElapsed},
		{Red, EventWalkComplete},
		{Green, EventHaltEngage},
		{Yellow, EventHaltEngage},
		{Red, EventHaltEngage},
		{Red, EventHaltRelease},
	}
	for _, e := range expected {
		if !def.Accepts(e.from, e.event) {
			t.Errorf("Expected %s to accept %s", e.from, e.event)
		}
	}

	unexpected := []struct {
		from  Phase
		event string
	}{
		{Yellow, EventCrossingRequested},
		{Red, EventCrossingRequested},
		{Green, EventYellowElapsed},
		{Green, EventWalkComplete},
		{Green, EventHaltRelease},
		{Yellow, EventHaltRelease},
	}
	for _, e := range unexpected {
		if def.Accepts(e.from, e.event) {
			t.Errorf("Expected %s to reject %s", e.from, e.event)
		}
	}

	if len(def.Events()) != 6 {
		t.Errorf("Expected 6 events, got %d", len(def.Events()))
	}
}

func TestDefinition_AllOrderedByPhase(t *testing.T) {
	all := DefaultDefinition().All()
	for i := 1; i < len(all); i++ {
		if all[i].From < all[i-1].From {
			t.Fatalf("Transitions out of order at %d: %s after %s", i, all[i].From, all[i-1].From)
		}
	}
}

func TestDefinition_TransitionsReturnsCopy(t *testing.T) {
	def := DefaultDefinition()
	transitions := def.Transitions(Green)
	transitions[0].To = Red

	if def.Transitions(Green)[0].To == Red {
		t.Error("Expected Transitions to return a copy")
	}
}
