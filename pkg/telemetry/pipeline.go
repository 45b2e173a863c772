package telemetry

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/anggasct/tlc"
	"github.com/anggasct/tlc/pkg/hal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Banner is written once to the serial stream at startup
const Banner = "\x1b[1;33m   __  __________________ \r\n" +
	"  / / / /_  __/ ____/ __ \\ \r\n" +
	" / / / / / / / __/ / /_/ / \r\n" +
	"/ /_/ / / / / /___/ ____/ \r\n" +
	"\\____/ /_/ /_____/_/ \r\n \x1b[1;39m \r\n"

// WriteBanner writes Banner to w
func WriteBanner(w io.Writer) error {
	_, err := io.WriteString(w, Banner)
	return err
}

// Recorder is told about every sample. The metrics observer implements it.
type Recorder interface {
	SampleRecorded(congestion int)
	SampleDropped()
	AlertRaised()
}

type nopRecorder struct{}

func (nopRecorder) SampleRecorded(int) {}
func (nopRecorder) SampleDropped()     {}
func (nopRecorder) AlertRaised()       {}

// Config holds the pipeline settings
type Config struct {
	Mapping Mapping       `mapstructure:"density"`
	Depth   int           `mapstructure:"depth"`
	Period  time.Duration `mapstructure:"period"`
	Wait    time.Duration `mapstructure:"wait"`
}

// DefaultConfig samples once a second into a queue of two
func DefaultConfig() Config {
	return Config{
		Mapping: DefaultMapping(),
		Depth:   DefaultDepth,
		Period:  time.Second,
		Wait:    100 * time.Millisecond,
	}
}

// Validate checks the settings
func (c Config) Validate() error {
	err := c.Mapping.Validate()
	if c.Depth < 1 {
		err = multierr.Append(err, tlc.NewConfigurationError("Telemetry", "depth must be at least 1"))
	}
	if c.Period <= 0 || c.Wait <= 0 {
		err = multierr.Append(err, tlc.NewConfigurationError("Telemetry", "period and wait must be positive"))
	}
	return err
}

// Producer samples the density sensor once per period
type Producer struct {
	sensor   hal.DensitySensor
	mapping  Mapping
	queue    *Queue
	period   time.Duration
	recorder Recorder
	logger   *zap.Logger
}

// Run loops until ctx is done
func (p *Producer) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	for {
		p.sample()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (p *Producer) sample() {
	raw := p.sensor.ReadDensity()
	s := Sample{Raw: raw, Congestion: p.mapping.Apply(int(raw)), At: time.Now()}
	if !p.queue.Offer(s) {
		p.recorder.SampleDropped()
		p.logger.Debug("telemetry queue full, sample dropped", zap.Int("congestion", s.Congestion))
	}
}

// Consumer drains the queue into a sink
type Consumer struct {
	queue    *Queue
	sink     Sink
	mapping  Mapping
	wait     time.Duration
	recorder Recorder
	logger   *zap.Logger
}

// Run loops until ctx is done
func (c *Consumer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, ok := c.queue.Poll(ctx, c.wait)
		if !ok {
			continue
		}
		c.report(ctx, s)
	}
}

func (c *Consumer) report(ctx context.Context, s Sample) {
	r := Report{
		Congestion: s.Congestion,
		Heavy:      c.mapping.Heavy(s.Congestion),
		Raw:        s.Raw,
		At:         s.At,
	}
	c.recorder.SampleRecorded(r.Congestion)
	if r.Heavy {
		c.recorder.AlertRaised()
	}
	if err := c.sink.Report(ctx, r); err != nil {
		c.logger.Warn("telemetry report failed", zap.Error(err))
	}
}

// Pipeline is the producer and consumer joined by their queue
type Pipeline struct {
	Producer *Producer
	Consumer *Consumer
	queue    *Queue
}

// NewPipeline wires sensor to sink. A nil recorder is allowed.
func NewPipeline(sensor hal.DensitySensor, sink Sink, cfg Config, recorder Recorder, logger *zap.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if sensor == nil || sink == nil {
		return nil, tlc.NewConfigurationError("Telemetry", "sensor and sink are required")
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	q, err := NewQueue(cfg.Depth)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		Producer: &Producer{
			sensor:   sensor,
			mapping:  cfg.Mapping,
			queue:    q,
			period:   cfg.Period,
			recorder: recorder,
			logger:   logger.Named("producer"),
		},
		Consumer: &Consumer{
			queue:    q,
			sink:     sink,
			mapping:  cfg.Mapping,
			wait:     cfg.Wait,
			recorder: recorder,
			logger:   logger.Named("consumer"),
		},
		queue: q,
	}, nil
}

// Queue returns the queue between producer and consumer
func (p *Pipeline) Queue() *Queue {
	return p.queue
}

// Run starts producer and consumer and blocks until ctx is done
func (p *Pipeline) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Producer.Run(gctx) })
	g.Go(func() error { return p.Consumer.Run(gctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
