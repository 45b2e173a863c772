package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/anggasct/tlc"
)

// DefaultDepth is the telemetry queue capacity
const DefaultDepth = 2

// Sample is one mapped density reading
type Sample struct {
	Raw        uint16
	Congestion int
	At         time.Time
}

// Queue is a bounded FIFO of samples. Offers never block.
type Queue struct {
	c chan Sample
}

// NewQueue creates a queue holding at most depth samples
func NewQueue(depth int) (*Queue, error) {
	if depth < 1 {
		return nil, tlc.NewConfigurationError("Queue", fmt.Sprintf("depth must be at least 1, got %d", depth))
	}
	return &Queue{c: make(chan Sample, depth)}, nil
}

// Offer enqueues s. It returns false and drops s when the queue is full.
func (q *Queue) Offer(s Sample) bool {
	select {
	case q.c <- s:
		return true
	default:
		return false
	}
}

// Poll waits up to wait for a sample
func (q *Queue) Poll(ctx context.Context, wait time.Duration) (Sample, bool) {
	t := time.NewTimer(wait)
	defer t.Stop()

	select {
	case s := <-q.c:
		return s, true
	case <-t.C:
		return Sample{}, false
	case <-ctx.Done():
		return Sample{}, false
	}
}

// Len returns the number of queued samples
func (q *Queue) Len() int {
	return len(q.c)
}

// Cap returns the queue depth
func (q *Queue) Cap() int {
	return cap(q.c)
}
