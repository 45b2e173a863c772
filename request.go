package tlc

import "fmt"

// Request is the debounce state of the pedestrian buttons within one cycle.
//
//	Idle ──press──▶ PendingHoldCheck ──still pressed──▶ Held
//	                       │
//	                       └──released──▶ Consumed ──press──▶ PendingHoldCheck
//
// Every completed cycle and every halt toggle returns it to Idle.
type Request int

const (
	RequestIdle Request = iota
	RequestPendingHoldCheck
	RequestHeld
	RequestConsumed
)

var requestNames = [...]string{"idle", "pending_hold_check", "held", "consumed"}

func (r Request) String() string {
	if r >= RequestIdle && r <= RequestConsumed {
		return requestNames[r]
	}
	return fmt.Sprintf("Request(%d)", int(r))
}

// CanBeginHoldCheck reports whether a press may open a new hold window
func (r Request) CanBeginHoldCheck() bool {
	return r == RequestIdle || r == RequestConsumed
}

// HoldLatched reports whether the accessibility extension was granted this cycle
func (r Request) HoldLatched() bool {
	return r == RequestHeld
}

// resolve closes a hold window
func (r Request) resolve(held bool) (Request, error) {
	if r != RequestPendingHoldCheck {
		return r, &RequestError{Operation: "ConfirmHold", State: r}
	}
	if held {
		return RequestHeld, nil
	}
	return RequestConsumed, nil
}
