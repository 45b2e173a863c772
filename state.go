package tlc

import (
	"fmt"
	"sync"
)

const (
	// DefaultCrossingTime is the crossing time loaded by the first press of a cycle
	DefaultCrossingTime = 15
	// DefaultExtensionTime is added by a confirmed press-and-hold
	DefaultExtensionTime = 15
)

// record is the mutable part of the intersection. It is only touched with
// Intersection.mu held.
type record struct {
	pedestrianTime int
	request        Request
	armed          bool
	halted         bool
	suppressed     bool
	cycle          uint64

	crossingTime  int
	extensionTime int
	observers     *ObserverManager
}

func (r *record) setPedestrianTime(n int) {
	if n < 0 {
		n = 0
	}
	if n == r.pedestrianTime {
		return
	}
	r.pedestrianTime = n
	r.observers.NotifyPedestrianTime(n)
}

func (r *record) setRequest(state Request) {
	if state == r.request {
		return
	}
	r.request = state
	r.observers.NotifyRequest(state)
}

func (r *record) endCycle() {
	r.armed = false
	r.setRequest(RequestIdle)
	r.setPedestrianTime(0)
	r.cycle++
}

// Snapshot is a consistent copy of the intersection state
type Snapshot struct {
	Phase          Phase
	PedestrianTime int
	Request        Request
	Armed          bool
	Halted         bool
	Suppressed     bool
	Cycle          uint64
}

func (s Snapshot) String() string {
	return fmt.Sprintf("phase=%s time=%d request=%s armed=%t halted=%t suppressed=%t cycle=%d",
		s.Phase, s.PedestrianTime, s.Request, s.Armed, s.Halted, s.Suppressed, s.Cycle)
}

// Intersection is the shared state of one two-approach intersection. Every
// task reads and changes it through the methods below, which take a single
// lock and route phase changes through the Definition so that the cycle order,
// the halt override and the non-negative crossing time hold at the boundary.
type Intersection struct {
	mu         sync.Mutex
	approaches [2]Approach
	def        *Definition
	machine    *Machine
	rec        record
	observers  *ObserverManager
}

// Option configures an Intersection
type Option func(*Intersection)

// WithDefinition replaces DefaultDefinition
func WithDefinition(def *Definition) Option {
	return func(i *Intersection) {
		i.def = def
	}
}

// WithObserver registers an observer before the intersection is used
func WithObserver(o Observer) Option {
	return func(i *Intersection) {
		i.observers.AddObserver(o)
	}
}

// WithCrossingTime sets the base crossing time and the hold extension
func WithCrossingTime(base, extension int) Option {
	return func(i *Intersection) {
		i.rec.crossingTime = base
		i.rec.extensionTime = extension
	}
}

// NewIntersection creates the intersection state in its initial phase
func NewIntersection(approaches [2]Approach, opts ...Option) (*Intersection, error) {
	if err := validateApproaches(approaches); err != nil {
		return nil, err
	}

	i := &Intersection{
		approaches: approaches,
		def:        DefaultDefinition(),
		observers:  NewObserverManager(),
	}
	i.rec = record{
		crossingTime:  DefaultCrossingTime,
		extensionTime: DefaultExtensionTime,
		observers:     i.observers,
	}

	for _, opt := range opts {
		opt(i)
	}

	if i.def == nil {
		return nil, NewConfigurationError("Intersection", "definition is nil")
	}
	if i.rec.crossingTime <= 0 || i.rec.extensionTime < 0 {
		return nil, NewConfigurationError("Intersection",
			fmt.Sprintf("invalid crossing time %d/%d", i.rec.crossingTime, i.rec.extensionTime))
	}

	i.machine = newMachine(i.def, InitialPhase(approaches), &i.rec, i.observers)
	return i, nil
}

// Approaches returns the approach wiring
func (i *Intersection) Approaches() [2]Approach {
	return i.approaches
}

// Definition returns the phase definition in use
func (i *Intersection) Definition() *Definition {
	return i.def
}

// AddObserver registers an observer
func (i *Intersection) AddObserver(o Observer) {
	i.observers.AddObserver(o)
}

// RemoveObserver unregisters an observer
func (i *Intersection) RemoveObserver(o Observer) {
	i.observers.RemoveObserver(o)
}

// Phase returns the current phase
func (i *Intersection) Phase() Phase {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.machine.Phase()
}

// Halted reports whether the halt override is engaged
func (i *Intersection) Halted() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.rec.halted
}

// HoldLatched reports whether a press-and-hold extension was granted this cycle
func (i *Intersection) HoldLatched() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.rec.request.HoldLatched()
}

// Snapshot returns a consistent copy of the state
func (i *Intersection) Snapshot() Snapshot {
	i.mu.Lock()
	defer i.mu.Unlock()
	return Snapshot{
		Phase:          i.machine.Phase(),
		PedestrianTime: i.rec.pedestrianTime,
		Request:        i.rec.request,
		Armed:          i.rec.armed,
		Halted:         i.rec.halted,
		Suppressed:     i.rec.suppressed,
		Cycle:          i.rec.cycle,
	}
}

// Ticket returns a ticket for the running cycle
func (i *Intersection) Ticket() Ticket {
	i.mu.Lock()
	defer i.mu.Unlock()
	return Ticket{Cycle: i.rec.cycle}
}

// Fire proposes an arbitrary event. The typed methods below are preferred.
func (i *Intersection) Fire(name string, ticket Ticket) *EventResult {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.fireLocked(name, ticket)
}

func (i *Intersection) fireLocked(name string, ticket Ticket) *EventResult {
	res := i.machine.Fire(NewEvent(name, ticket))
	res.Ticket = Ticket{Cycle: i.rec.cycle}
	return res
}

// RequestCrossing latches the single crossing trigger of a GREEN cycle and
// loads the base crossing time. The returned result carries the ticket the
// yellow timer must present.
func (i *Intersection) RequestCrossing() *EventResult {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.fireLocked(EventCrossingRequested, Ticket{Cycle: i.rec.cycle})
}

// ExpireTimer moves GREEN to YELLOW when the armed timer for ticket fires
func (i *Intersection) ExpireTimer(ticket Ticket) *EventResult {
	return i.Fire(EventTimerExpired, ticket)
}

// ElapseYellow moves YELLOW to RED once the yellow hold is over
func (i *Intersection) ElapseYellow(ticket Ticket) *EventResult {
	return i.Fire(EventYellowElapsed, ticket)
}

// CompleteWalk moves RED back to GREEN and closes the cycle
func (i *Intersection) CompleteWalk(ticket Ticket) *EventResult {
	return i.Fire(EventWalkComplete, ticket)
}

// EngageHalt forces RED and suspends normal sequencing
func (i *Intersection) EngageHalt() *EventResult {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.fireLocked(EventHaltEngage, Ticket{Cycle: i.rec.cycle})
}

// ReleaseHalt returns a halted intersection to GREEN
func (i *Intersection) ReleaseHalt() *EventResult {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.fireLocked(EventHaltRelease, Ticket{Cycle: i.rec.cycle})
}

// ToggleHalt engages the halt when it is released and releases it when engaged,
// deciding under the same lock that applies the change.
func (i *Intersection) ToggleHalt() *EventResult {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.rec.halted {
		return i.fireLocked(EventHaltRelease, Ticket{Cycle: i.rec.cycle})
	}
	return i.fireLocked(EventHaltEngage, Ticket{Cycle: i.rec.cycle})
}

// ButtonsReleased clears the request suppression a halt toggle leaves behind.
// The button task calls it with a ticket taken before it sampled every button
// up, so that a dual press released with a skew never reads as a
// single-approach request. A toggle after the sample makes the ticket stale
// and the suppression stays.
func (i *Intersection) ButtonsReleased(ticket Ticket) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if ticket.Cycle == i.rec.cycle {
		i.rec.suppressed = false
	}
}

// BeginHoldCheck opens a hold window for a press. It returns false when the
// intersection is halted, when requests are suppressed after a halt toggle,
// when a window is open or when the extension was already granted this cycle.
func (i *Intersection) BeginHoldCheck() (Ticket, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.rec.halted || i.rec.suppressed || !i.rec.request.CanBeginHoldCheck() {
		return Ticket{}, false
	}
	i.rec.setRequest(RequestPendingHoldCheck)
	return Ticket{Cycle: i.rec.cycle}, true
}

// ConfirmHold closes the hold window opened with ticket. When held is true
// the extension time is added and true is returned. A window that spans the
// end of its cycle is discarded with ErrStaleTicket.
func (i *Intersection) ConfirmHold(ticket Ticket, held bool) (bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if ticket.Cycle != i.rec.cycle {
		return false, ErrStaleTicket
	}
	next, err := i.rec.request.resolve(held)
	if err != nil {
		return false, err
	}
	i.rec.setRequest(next)
	if next == RequestHeld {
		i.rec.setPedestrianTime(i.rec.pedestrianTime + i.rec.extensionTime)
		return true, nil
	}
	return false, nil
}

// Countdown consumes one unit of crossing time. It returns the time left after
// the decrement and true, or false once the time is exhausted. ErrStaleTicket
// is returned when the cycle ended underneath the caller.
func (i *Intersection) Countdown(ticket Ticket) (int, bool, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if ticket.Cycle != i.rec.cycle {
		return 0, false, ErrStaleTicket
	}
	if i.rec.halted {
		return 0, false, ErrHalted
	}
	if i.rec.pedestrianTime <= 0 {
		return 0, false, nil
	}
	i.rec.setPedestrianTime(i.rec.pedestrianTime - 1)
	return i.rec.pedestrianTime, true, nil
}
