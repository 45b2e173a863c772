package tlc

import "testing"

func TestContext_Readers(t *testing.T) {
	rec := &record{
		pedestrianTime: 9,
		request:        RequestConsumed,
		armed:          true,
		cycle:          5,
		observers:      NewObserverManager(),
	}
	ev := NewEvent(EventTimerExpired, Ticket{Cycle: 5})
	ctx := newContext(ev, Green, Yellow, rec)

	if ctx.Event().ID != ev.ID {
		t.Error("Expected context to carry the event")
	}
	if ctx.SourcePhase() != Green || ctx.TargetPhase() != Yellow {
		t.Errorf("Expected GREEN->YELLOW, got %s->%s", ctx.SourcePhase(), ctx.TargetPhase())
	}
	if !ctx.Armed() || ctx.Halted() {
		t.Error("Unexpected latch values")
	}
	if ctx.PedestrianTime() != 9 {
		t.Errorf("Expected 9, got %d", ctx.PedestrianTime())
	}
	if ctx.Request() != RequestConsumed {
		t.Errorf("Expected consumed, got %s", ctx.Request())
	}
	if !ctx.TicketCurrent() {
		t.Error("Expected ticket to be current")
	}

	rec.cycle++
	if ctx.TicketCurrent() {
		t.Error("Expected ticket to be stale after the cycle advanced")
	}
}

func TestContext_Deny(t *testing.T) {
	ctx := newContext(NewEvent("e", Ticket{}), Green, Red, &record{observers: NewObserverManager()})
	if ctx.Deny("not now") {
		t.Error("Expected Deny to return false")
	}
	if ctx.denial != "not now" {
		t.Errorf("Expected denial to be recorded, got %q", ctx.denial)
	}
}

func TestContext_Mutators(t *testing.T) {
	observer := NewTestObserver()
	om := NewObserverManager()
	om.AddObserver(observer)
	rec := &record{crossingTime: 12, observers: om}
	ctx := newContext(NewEvent(EventCrossingRequested, Ticket{}), Green, Green, rec)

	ctx.Arm()
	if !rec.armed || rec.pedestrianTime != 12 {
		t.Errorf("Expected armed with 12, got %t %d", rec.armed, rec.pedestrianTime)
	}

	rec.request = RequestHeld
	ctx.SetHalted(true)
	ctx.EndCycle()
	if !rec.halted || !ctx.Suppressed() {
		t.Error("Expected halted with requests suppressed")
	}
	if rec.armed || rec.pedestrianTime != 0 || rec.request != RequestIdle || rec.cycle != 1 {
		t.Errorf("Expected cycle reset, got armed=%t time=%d request=%s cycle=%d",
			rec.armed, rec.pedestrianTime, rec.request, rec.cycle)
	}

	if len(observer.PedestrianTimes) != 2 || observer.PedestrianTimes[0] != 12 || observer.PedestrianTimes[1] != 0 {
		t.Errorf("Expected crossing time notifications [12 0], got %v", observer.PedestrianTimes)
	}
	if len(observer.Requests) != 1 || observer.Requests[0] != RequestIdle {
		t.Errorf("Expected one request notification, got %v", observer.Requests)
	}
}
