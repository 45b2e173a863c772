package tlc

import (
	"fmt"
	"sort"
	"strings"
)

// DefinitionBuilder is the entry point for describing the phase transitions
type DefinitionBuilder interface {
	From(phases ...Phase) TransitionBuilder
	Build() (*Definition, error)
}

// TransitionBuilder handles transition configuration with inline guards and actions
type TransitionBuilder interface {
	To(target Phase) TransitionBuilder
	On(event string) TransitionBuilder

	// Conditions; several When/Unless calls must all hold
	When(guard GuardFunc) TransitionBuilder
	Unless(guard GuardFunc) TransitionBuilder

	Do(action ActionFunc) TransitionBuilder

	// Start another transition
	From(phases ...Phase) TransitionBuilder
	Build() (*Definition, error)
}

type pendingTransition struct {
	sources []Phase
	target  Phase
	hasTo   bool
	event   string
	guards  []GuardFunc
	action  ActionFunc
}

type definitionBuilder struct {
	pending []*pendingTransition
}

// NewDefinition starts a new phase definition
func NewDefinition() DefinitionBuilder {
	return &definitionBuilder{}
}

func (b *definitionBuilder) From(phases ...Phase) TransitionBuilder {
	p := &pendingTransition{sources: phases}
	b.pending = append(b.pending, p)
	return &transitionBuilder{parent: b, current: p}
}

func (b *definitionBuilder) Build() (*Definition, error) {
	def := &Definition{transitions: make(map[Phase][]Transition)}
	seen := make(map[string]bool)

	for i, p := range b.pending {
		if len(p.sources) == 0 {
			return nil, NewConfigurationError("Definition", fmt.Sprintf("transition %d has no source phase", i))
		}
		if !p.hasTo || !p.target.Valid() {
			return nil, NewConfigurationError("Definition", fmt.Sprintf("transition %d has no valid target phase", i))
		}
		if strings.TrimSpace(p.event) == "" {
			return nil, NewConfigurationError("Definition", fmt.Sprintf("transition %d has no event", i))
		}

		for _, from := range p.sources {
			if !from.Valid() {
				return nil, NewConfigurationError("Definition", fmt.Sprintf("transition %d has invalid source %s", i, from))
			}
			key := from.String() + "/" + p.event
			if seen[key] {
				return nil, NewConfigurationError("Definition", fmt.Sprintf("duplicate transition from %s on %s", from, p.event))
			}
			seen[key] = true

			t := NewTransition(from, p.target, p.event)
			for _, g := range p.guards {
				t.WithGuard(g)
			}
			t.WithAction(p.action)
			def.transitions[from] = append(def.transitions[from], *t)
		}

		def.addEvent(p.event)
	}

	if len(def.transitions) == 0 {
		return nil, NewConfigurationError("Definition", "no transitions defined")
	}

	return def, nil
}

type transitionBuilder struct {
	parent  *definitionBuilder
	current *pendingTransition
}

func (tb *transitionBuilder) To(target Phase) TransitionBuilder {
	tb.current.target = target
	tb.current.hasTo = true
	return tb
}

func (tb *transitionBuilder) On(event string) TransitionBuilder {
	tb.current.event = event
	return tb
}

func (tb *transitionBuilder) When(guard GuardFunc) TransitionBuilder {
	if guard != nil {
		tb.current.guards = append(tb.current.guards, guard)
	}
	return tb
}

func (tb *transitionBuilder) Unless(guard GuardFunc) TransitionBuilder {
	if guard != nil {
		tb.current.guards = append(tb.current.guards, func(ctx *Context) bool {
			return !guard(ctx)
		})
	}
	return tb
}

func (tb *transitionBuilder) Do(action ActionFunc) TransitionBuilder {
	tb.current.action = action
	return tb
}

func (tb *transitionBuilder) From(phases ...Phase) TransitionBuilder {
	return tb.parent.From(phases...)
}

func (tb *transitionBuilder) Build() (*Definition, error) {
	return tb.parent.Build()
}

// Definition is an immutable set of phase transitions
type Definition struct {
	transitions map[Phase][]Transition
	events      []string
}

func (d *Definition) addEvent(event string) {
	for _, e := range d.events {
		if e == event {
			return
		}
	}
	d.events = append(d.events, event)
}

// Transitions returns the transitions leaving phase p in declaration order
func (d *Definition) Transitions(p Phase) []Transition {
	out := make([]Transition, len(d.transitions[p]))
	copy(out, d.transitions[p])
	return out
}

// All returns every transition ordered by source phase
func (d *Definition) All() []Transition {
	phases := make([]Phase, 0, len(d.transitions))
	for p := range d.transitions {
		phases = append(phases, p)
	}
	sort.Slice(phases, func(i, j int) bool { return phases[i] < phases[j] })

	var out []Transition
	for _, p := range phases {
		out = append(out, d.transitions[p]...)
	}
	return out
}

// Events returns the distinct event names in declaration order
func (d *Definition) Events() []string {
	out := make([]string, len(d.events))
	copy(out, d.events)
	return out
}

// Accepts reports whether event has a transition leaving phase p
func (d *Definition) Accepts(p Phase, event string) bool {
	for _, t := range d.transitions[p] {
		if t.Event == event {
			return true
		}
	}
	return false
}

func notHalted(ctx *Context) bool {
	if ctx.Halted() {
		return ctx.Deny("intersection is halted")
	}
	return true
}

func halted(ctx *Context) bool {
	if !ctx.Halted() {
		return ctx.Deny("intersection is not halted")
	}
	return true
}

func notSuppressed(ctx *Context) bool {
	if ctx.Suppressed() {
		return ctx.Deny("buttons not released since halt toggle")
	}
	return true
}

func notArmed(ctx *Context) bool {
	if ctx.Armed() {
		return ctx.Deny("crossing already requested this cycle")
	}
	return true
}

func armed(ctx *Context) bool {
	if !ctx.Armed() {
		return ctx.Deny("no crossing requested this cycle")
	}
	return true
}

func ticketCurrent(ctx *Context) bool {
	if !ctx.TicketCurrent() {
		return ctx.Deny("stale ticket")
	}
	return true
}

func armCrossing(ctx *Context) error {
	ctx.Arm()
	return nil
}

func endCycle(ctx *Context) error {
	ctx.EndCycle()
	return nil
}

func engageHalt(ctx *Context) error {
	ctx.SetHalted(true)
	ctx.EndCycle()
	return nil
}

func releaseHalt(ctx *Context) error {
	ctx.SetHalted(false)
	ctx.EndCycle()
	return nil
}

// DefaultDefinition returns the intersection's phase cycle:
// GREEN→YELLOW→RED→GREEN driven by the pedestrian timer, the yellow stage and
// the walk countdown, plus the halt override which may force RED from any
// phase and release back to GREEN.
func DefaultDefinition() *Definition {
	def, err := NewDefinition().
		From(Green).To(Green).On(EventCrossingRequested).When(notHalted).When(notSuppressed).When(notArmed).Do(armCrossing).
		From(Green).To(Yellow).On(EventTimerExpired).When(notHalted).When(armed).When(ticketCurrent).
		From(Yellow).To(Red).On(EventYellowElapsed).When(notHalted).When(ticketCurrent).
		From(Red).To(Green).On(EventWalkComplete).When(notHalted).When(ticketCurrent).Do(endCycle).
		From(Green, Yellow, Red).To(Red).On(EventHaltEngage).When(notHalted).Do(engageHalt).
		From(Red).To(Green).On(EventHaltRelease).When(halted).Do(releaseHalt).
		Build()
	if err != nil {
		panic(err)
	}
	return def
}
