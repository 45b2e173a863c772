package tlc

import (
	"errors"
	"testing"
)

// walk drives a RED phase to completion the way the walk task does and
// returns the observed remaining times.
func walk(t *testing.T, i *Intersection, ticket Ticket) []int {
	t.Helper()
	var seen []int
	for {
		n, ok, err := i.Countdown(ticket)
		if err != nil {
			t.Fatalf("Countdown: %v", err)
		}
		if !ok {
			return seen
		}
		seen = append(seen, n)
	}
}

func TestIntegration_TapCycle(t *testing.T) {
	observer := NewTestObserver()
	i := CreateTestIntersection(t, observer)

	res := i.RequestCrossing()
	holdTicket, ok := i.BeginHoldCheck()
	if !ok {
		t.Fatal("Expected hold check")
	}
	if extended, _ := i.ConfirmHold(holdTicket, false); extended {
		t.Fatal("Expected tap not to extend")
	}

	i.ExpireTimer(res.Ticket)
	i.ElapseYellow(res.Ticket)
	if n := len(walk(t, i, res.Ticket)); n != DefaultCrossingTime {
		t.Errorf("Expected %d walk seconds, got %d", DefaultCrossingTime, n)
	}
	i.CompleteWalk(res.Ticket)

	AssertPhase(t, i, Green)
	if i.HoldLatched() {
		t.Error("Expected hold latch cleared after the cycle")
	}
}

func TestIntegration_HeldCycle(t *testing.T) {
	i := CreateTestIntersection(t, nil)

	res := i.RequestCrossing()
	holdTicket, _ := i.BeginHoldCheck()
	i.ConfirmHold(holdTicket, true)

	i.ExpireTimer(res.Ticket)
	i.ElapseYellow(res.Ticket)
	if !i.HoldLatched() {
		t.Fatal("Expected hold latched during the walk")
	}
	if n := len(walk(t, i, res.Ticket)); n != DefaultCrossingTime+DefaultExtensionTime {
		t.Errorf("Expected %d walk seconds, got %d", DefaultCrossingTime+DefaultExtensionTime, n)
	}
	AssertEventProcessed(t, i.CompleteWalk(res.Ticket), true)
}

func TestIntegration_HaltMidWalkAndResume(t *testing.T) {
	observer := NewTestObserver()
	i := CreateTestIntersection(t, observer)

	res := i.RequestCrossing()
	i.ExpireTimer(res.Ticket)
	i.ElapseYellow(res.Ticket)
	i.Countdown(res.Ticket)
	i.Countdown(res.Ticket)

	i.ToggleHalt()
	if _, _, err := i.Countdown(res.Ticket); !errors.Is(err, ErrStaleTicket) {
		t.Fatalf("Expected walk to be aborted, got %v", err)
	}
	AssertPhase(t, i, Red)

	i.ToggleHalt()
	AssertPhase(t, i, Green)
	AssertPedestrianTime(t, i, 0)
	i.ButtonsReleased(i.Ticket())

	// a fresh cycle runs normally after the override is released
	RunCycle(t, i)
	AssertPhase(t, i, Green)

	for _, tr := range observer.Transitions {
		if tr.From == Green && tr.To == Red && tr.Event.Name != EventHaltEngage {
			t.Errorf("GREEN->RED only allowed through the halt, saw %s", tr.Event.Name)
		}
		if tr.From == Yellow && tr.To == Green {
			t.Error("YELLOW->GREEN is never allowed")
		}
	}
}

func TestIntegration_HaltDuringYellow(t *testing.T) {
	i := CreateTestIntersection(t, nil)
	res := i.RequestCrossing()
	i.ExpireTimer(res.Ticket)

	i.ToggleHalt()
	AssertEventProcessed(t, i.ElapseYellow(res.Ticket), false)
	AssertPhase(t, i, Red)

	i.ToggleHalt()
	AssertEventProcessed(t, i.ElapseYellow(res.Ticket), false)
	AssertPhase(t, i, Green)
}

func TestIntegration_EastWestStartsRed(t *testing.T) {
	i, err := NewIntersection(EastWestApproaches())
	if err != nil {
		t.Fatalf("Failed to create intersection: %v", err)
	}
	AssertPhase(t, i, Red)
	AssertEventProcessed(t, i.RequestCrossing(), false)

	i.ToggleHalt()
	i.ToggleHalt()
	i.ButtonsReleased(i.Ticket())
	AssertPhase(t, i, Green)
	AssertEventProcessed(t, i.RequestCrossing(), true)
}
