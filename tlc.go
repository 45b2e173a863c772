// Package tlc holds the shared state of a two-approach intersection controller:
// the approaches, the phase definition and the single guarded record every
// controller task proposes changes to.
//
// Phase changes are expressed as events against a Definition. The default
// definition only allows GREEN→YELLOW→RED→GREEN, plus the halt override which
// forces RED from any phase and releases back to GREEN. Events carry a Ticket
// naming the cycle they were issued for, so a halt toggle invalidates timers,
// walk permits and hold checks that are still in flight.
package tlc
