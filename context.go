package tlc

// Context gives guards and actions access to the intersection record while a
// transition is being evaluated. It is only valid for the duration of the
// guard or action call and must not be retained.
type Context struct {
	event  Event
	from   Phase
	to     Phase
	rec    *record
	denial string
}

func newContext(ev Event, from, to Phase, rec *record) *Context {
	return &Context{
		event: ev,
		from:  from,
		to:    to,
		rec:   rec,
	}
}

// Event returns the event being processed
func (ctx *Context) Event() Event {
	return ctx.event
}

// SourcePhase returns the phase the transition leaves
func (ctx *Context) SourcePhase() Phase {
	return ctx.from
}

// TargetPhase returns the phase the transition enters
func (ctx *Context) TargetPhase() Phase {
	return ctx.to
}

// Halted reports whether the halt override is engaged
func (ctx *Context) Halted() bool {
	return ctx.rec.halted
}

// Suppressed reports whether requests are ignored until the buttons are released
func (ctx *Context) Suppressed() bool {
	return ctx.rec.suppressed
}

// Armed reports whether the yellow timer was armed during this cycle
func (ctx *Context) Armed() bool {
	return ctx.rec.armed
}

// PedestrianTime returns the remaining crossing time
func (ctx *Context) PedestrianTime() int {
	return ctx.rec.pedestrianTime
}

// Request returns the pedestrian debounce state
func (ctx *Context) Request() Request {
	return ctx.rec.request
}

// TicketCurrent reports whether the event's ticket belongs to the running cycle
func (ctx *Context) TicketCurrent() bool {
	return ctx.event.Ticket.Cycle == ctx.rec.cycle
}

// Deny records why a guard refused the transition and returns false so that
// guards can end with `return ctx.Deny("...")`.
func (ctx *Context) Deny(reason string) bool {
	ctx.denial = reason
	return false
}

// Arm latches the single crossing trigger for this cycle and loads the base crossing time.
func (ctx *Context) Arm() {
	ctx.rec.armed = true
	ctx.rec.setPedestrianTime(ctx.rec.crossingTime)
}

// SetHalted engages or releases the halt override flag. Either way the
// buttons that toggled it must be released before a request counts again.
func (ctx *Context) SetHalted(halted bool) {
	ctx.rec.halted = halted
	ctx.rec.suppressed = true
}

// EndCycle clears both pedestrian latches and the crossing time, and
// invalidates every ticket issued for the cycle that just ended.
func (ctx *Context) EndCycle() {
	ctx.rec.endCycle()
}
