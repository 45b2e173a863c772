// Package controller runs the concurrent tasks of an intersection: the lamp
// sequencer, the request and override handlers, the yellow stage behind the
// one-shot timer, and the walk countdown.
package controller

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/anggasct/tlc"
	"github.com/anggasct/tlc/pkg/hal"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWarnBelow is the remaining crossing time at which the walk
	// indicator starts to blink
	DefaultWarnBelow = 10
	// DefaultBuzzerIntensity is the audible cue level for held requests
	DefaultBuzzerIntensity = 126
)

// ErrRunning is returned by Run when the controller is already running
var ErrRunning = errors.New("controller is already running")

// Config holds the controller settings
type Config struct {
	Timings         Timings `mapstructure:"timing"`
	WarnBelow       int     `mapstructure:"warnBelow"`
	BuzzerIntensity uint8   `mapstructure:"buzzerIntensity"`
}

// DefaultConfig returns the production settings
func DefaultConfig() Config {
	return Config{
		Timings:         DefaultTimings(),
		WarnBelow:       DefaultWarnBelow,
		BuzzerIntensity: DefaultBuzzerIntensity,
	}
}

// Validate checks the settings
func (c Config) Validate() error {
	err := c.Timings.Validate()
	if c.WarnBelow < 0 {
		err = multierr.Append(err, tlc.NewConfigurationError("Controller", "warnBelow must not be negative"))
	}
	if c.BuzzerIntensity == 0 {
		err = multierr.Append(err, tlc.NewConfigurationError("Controller", "buzzerIntensity must be positive"))
	}
	return err
}

// Controller owns the tasks driving one intersection
type Controller struct {
	id      string
	isect   *tlc.Intersection
	driver  hal.Driver
	cfg     Config
	logger  *zap.Logger
	running atomic.Bool
}

// New creates a controller. Nothing runs until Run is called.
func New(isect *tlc.Intersection, driver hal.Driver, cfg Config, logger *zap.Logger) (*Controller, error) {
	if isect == nil {
		return nil, tlc.NewConfigurationError("Controller", "intersection is nil")
	}
	if driver == nil {
		return nil, tlc.NewConfigurationError("Controller", "driver is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	id := uuid.New().String()
	return &Controller{
		id:     id,
		isect:  isect,
		driver: driver,
		cfg:    cfg,
		logger: logger.With(zap.String("run_id", id)),
	}, nil
}

// ID returns the run identifier attached to every log line
func (c *Controller) ID() string {
	return c.id
}

// Intersection returns the state the controller drives
func (c *Controller) Intersection() *tlc.Intersection {
	return c.isect
}

// Run starts every task and blocks until ctx is done or a task fails. All
// outputs are switched off before it returns.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer c.running.Store(false)

	approaches := c.isect.Approaches()
	sig := signals{driver: c.driver, approaches: approaches, timings: c.cfg.Timings}
	btn := buttons{driver: c.driver, approaches: approaches}

	done := make(chan struct{})
	wake := make(chan tlc.Ticket, 1)
	timer := NewOneShot(wake, done, c.logger.Named("timer"))
	permit := NewPermit()
	defer func() {
		timer.Stop()
		close(done)
		sig.dark()
	}()

	tasks := map[string]func(context.Context) error{
		"sequencer": (&Sequencer{
			isect:  c.isect,
			sig:    sig,
			logger: c.logger.Named("sequencer"),
		}).Run,
		"request": (&RequestHandler{
			isect:   c.isect,
			buttons: btn,
			timer:   timer,
			timings: c.cfg.Timings,
			logger:  c.logger.Named("request"),
		}).Run,
		"override": (&OverrideHandler{
			isect:   c.isect,
			buttons: btn,
			timer:   timer,
			timings: c.cfg.Timings,
			logger:  c.logger.Named("override"),
		}).Run,
		"yellow": (&YellowStage{
			isect:   c.isect,
			wake:    wake,
			permit:  permit,
			timings: c.cfg.Timings,
			logger:  c.logger.Named("yellow"),
		}).Run,
		"walk": (&Walk{
			isect:     c.isect,
			sig:       sig,
			permit:    permit,
			warnBelow: c.cfg.WarnBelow,
			intensity: c.cfg.BuzzerIntensity,
			logger:    c.logger.Named("walk"),
		}).Run,
	}

	c.logger.Info("controller starting", zap.Stringer("state", c.isect.Snapshot()))

	g, gctx := errgroup.WithContext(ctx)
	for name, run := range tasks {
		name, run := name, run
		g.Go(func() error {
			err := run(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				c.logger.Error("task failed", zap.String("task", name), zap.Error(err))
			}
			return err
		})
	}

	err := g.Wait()
	c.logger.Info("controller stopped", zap.Stringer("state", c.isect.Snapshot()))
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}
