package tlc

import "testing"

func TestTransition_Creation(t *testing.T) {
	tr := NewTransition(Green, Yellow, EventTimerExpired)
	if tr.From != Green || tr.To != Yellow || tr.Event != EventTimerExpired {
		t.Errorf("Unexpected transition %+v", tr)
	}
	if tr.Guard != nil || tr.Action != nil {
		t.Error("Expected no guard or action")
	}
}

func TestTransition_WithGuardCombines(t *testing.T) {
	var order []string
	tr := NewTransition(Green, Yellow, "e").
		WithGuard(func(ctx *Context) bool { order = append(order, "a"); return true }).
		WithGuard(func(ctx *Context) bool { order = append(order, "b"); return false })

	ctx := newContext(NewEvent("e", Ticket{}), Green, Yellow, &record{observers: NewObserverManager()})
	if tr.Guard(ctx) {
		t.Error("Expected combined guard to reject")
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("Expected guards in order, got %v", order)
	}
}

func TestTransition_WithGuardShortCircuits(t *testing.T) {
	called := false
	tr := NewTransition(Green, Yellow, "e").
		WithGuard(func(ctx *Context) bool { return false }).
		WithGuard(func(ctx *Context) bool { called = true; return true })

	ctx := newContext(NewEvent("e", Ticket{}), Green, Yellow, &record{observers: NewObserverManager()})
	tr.Guard(ctx)
	if called {
		t.Error("Expected second guard to be skipped")
	}
}

func TestTransition_WithAction(t *testing.T) {
	tr := NewTransition(Red, Green, EventWalkComplete).WithAction(endCycle)
	rec := &record{cycle: 3, armed: true, observers: NewObserverManager()}
	if err := tr.Action(newContext(NewEvent(EventWalkComplete, Ticket{Cycle: 3}), Red, Green, rec)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if rec.cycle != 4 || rec.armed {
		t.Errorf("Expected cycle to end, got cycle=%d armed=%t", rec.cycle, rec.armed)
	}
}
