package controller

import (
	"context"
	"sync"
	"time"

	"github.com/anggasct/tlc"
	"go.uber.org/zap"
)

// OneShot is the yellow timer. When it fires, on its own goroutine, it only
// hands the ticket it was armed with to the yellow stage; the phase change
// itself happens there.
type OneShot struct {
	mu     sync.Mutex
	timer  *time.Timer
	out    chan<- tlc.Ticket
	done   <-chan struct{}
	logger *zap.Logger
}

// NewOneShot creates a disarmed timer delivering to out. Deliveries are
// abandoned once done is closed.
func NewOneShot(out chan<- tlc.Ticket, done <-chan struct{}, logger *zap.Logger) *OneShot {
	return &OneShot{out: out, done: done, logger: logger}
}

// Arm starts the timer, replacing any pending expiry
func (o *OneShot) Arm(d time.Duration, ticket tlc.Ticket) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = time.AfterFunc(d, func() {
		select {
		case o.out <- ticket:
		case <-o.done:
			o.logger.Debug("timer expiry abandoned", zap.Uint64("cycle", ticket.Cycle))
		}
	})
}

// Stop disarms the timer. It reports whether a pending expiry was cancelled.
func (o *OneShot) Stop() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.timer == nil {
		return false
	}
	stopped := o.timer.Stop()
	o.timer = nil
	return stopped
}

// Permit is the one-slot walk permit. It is released once per RED transition
// and consumed once per walk countdown.
type Permit struct {
	c chan tlc.Ticket
}

// NewPermit creates an empty permit
func NewPermit() *Permit {
	return &Permit{c: make(chan tlc.Ticket, 1)}
}

// Release makes the permit available. It returns false when the permit was
// already available.
func (p *Permit) Release(ticket tlc.Ticket) bool {
	select {
	case p.c <- ticket:
		return true
	default:
		return false
	}
}

// Acquire blocks until the permit is released or ctx is done
func (p *Permit) Acquire(ctx context.Context) (tlc.Ticket, error) {
	select {
	case <-ctx.Done():
		return tlc.Ticket{}, ctx.Err()
	case t := <-p.c:
		return t, nil
	}
}

// Pending reports whether the permit is waiting to be acquired
func (p *Permit) Pending() bool {
	return len(p.c) > 0
}
