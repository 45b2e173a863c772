package controller

import (
	"context"

	"github.com/anggasct/tlc"
	"go.uber.org/zap"
)

// Sequencer mirrors the current phase onto the lamps once per quantum. In
// YELLOW it runs the blink pattern instead of a steady lamp.
type Sequencer struct {
	isect   *tlc.Intersection
	sig     signals
	logger  *zap.Logger
	shown   tlc.Phase
	started bool
}

// Run loops until ctx is done
func (s *Sequencer) Run(ctx context.Context) error {
	for {
		if err := s.step(ctx); err != nil {
			return err
		}
	}
}

func (s *Sequencer) step(ctx context.Context) error {
	p := s.isect.Phase()
	if !s.started || p != s.shown {
		s.logger.Debug("showing phase", zap.Stringer("phase", p))
		s.shown, s.started = p, true
	}

	if p == tlc.Yellow {
		return s.sig.blinkYellow(ctx, func() bool {
			return s.isect.Phase() == tlc.Yellow
		})
	}
	s.sig.show(p)
	return sleep(ctx, s.sig.timings.Quantum)
}
