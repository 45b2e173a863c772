package tlc

// GuardFunc decides whether a transition may be taken
type GuardFunc func(ctx *Context) bool

// ActionFunc runs while a transition is taken, before the phase changes.
// Returning an error aborts the transition.
type ActionFunc func(ctx *Context) error

// Transition represents a phase transition
type Transition struct {
	From   Phase
	To     Phase
	Event  string
	Guard  GuardFunc
	Action ActionFunc
}

// NewTransition creates a new transition
func NewTransition(from, to Phase, event string) *Transition {
	return &Transition{
		From:  from,
		To:    to,
		Event: event,
	}
}

// WithGuard adds a guard condition to the transition. Guards added later are
// combined with the existing one.
func (t *Transition) WithGuard(guard GuardFunc) *Transition {
	if t.Guard == nil {
		t.Guard = guard
		return t
	}
	prev := t.Guard
	t.Guard = func(ctx *Context) bool {
		return prev(ctx) && guard(ctx)
	}
	return t
}

// WithAction adds an action to the transition
func (t *Transition) WithAction(action ActionFunc) *Transition {
	t.Action = action
	return t
}
