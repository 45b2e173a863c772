// Command tlcd runs a two-approach intersection controller
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anggasct/tlc"
	"github.com/anggasct/tlc/pkg/config"
	"github.com/anggasct/tlc/pkg/controller"
	"github.com/anggasct/tlc/pkg/hal"
	"github.com/anggasct/tlc/pkg/logging"
	"github.com/anggasct/tlc/pkg/observers"
	"github.com/anggasct/tlc/pkg/telemetry"
	"github.com/anggasct/tlc/visualization"
	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(arguments []string) int {
	v := config.NewViper()
	fs := config.FlagSet(config.ApplicationName)
	if err := config.ParseAndBind(v, fs, arguments); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	cfg, err := config.Load(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.LogOutput(), config.ApplicationName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to create logger: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	if err := start(v.GetString("dot"), cfg, logger); err != nil {
		logger.Error("tlcd exited with error", zap.Error(err))
		return 1
	}
	return 0
}

func start(dotFile string, cfg *config.Config, logger *zap.Logger) error {
	approaches := cfg.Approaches()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observers.NewMetricsObserver(registry, tlc.InitialPhase(approaches))
	if err != nil {
		return err
	}

	opts := append(cfg.IntersectionOptions(),
		tlc.WithObserver(observers.NewDefaultLoggingObserver(logger)),
		tlc.WithObserver(metrics),
	)
	isect, err := tlc.NewIntersection(approaches, opts...)
	if err != nil {
		return err
	}

	if dotFile != "" {
		logger.Info("writing phase definition", zap.String("file", dotFile))
		return visualization.NewDOTGenerator(isect.Definition(), isect.Phase()).GenerateToFile(dotFile)
	}

	driver, sensor, err := newHardware(cfg, approaches, logger)
	if err != nil {
		return err
	}

	serial, err := openSerial(cfg.Serial)
	if err != nil {
		return err
	}
	defer serial.Close()

	var sink telemetry.Sink = telemetry.NewWriterSink(serial)
	if cfg.MQTT.Enabled() {
		client, err := telemetry.NewMQTTClient(cfg.MQTT, logger.Named("mqtt"))
		if err != nil {
			return err
		}
		defer client.Disconnect()
		sink = telemetry.MultiSink{sink, telemetry.NewMQTTSink(client, cfg.MQTT.Topic, cfg.MQTT.QoS)}
	}

	pipeline, err := telemetry.NewPipeline(sensor, sink, cfg.TelemetryConfig(), metrics, logger.Named("telemetry"))
	if err != nil {
		return err
	}

	ctrl, err := controller.New(isect, driver, cfg.ControllerConfig(), logger.Named("controller"))
	if err != nil {
		return err
	}

	if err := telemetry.WriteBanner(serial); err != nil {
		logger.Warn("unable to write banner", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("tlcd starting",
		zap.String("run_id", ctrl.ID()),
		zap.Stringer("orientation", cfg.Orientation),
		zap.String("driver", cfg.Driver),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ctrl.Run(gctx) })
	g.Go(func() error { return pipeline.Run(gctx) })

	if cfg.Metrics.Addr != "" {
		server := newMetricsServer(cfg.Metrics.Addr, registry, logger.Named("http"))
		g.Go(func() error {
			logger.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
			if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func newHardware(cfg *config.Config, approaches [2]tlc.Approach, logger *zap.Logger) (hal.Driver, hal.DensitySensor, error) {
	var (
		driver hal.Driver
		sensor hal.DensitySensor
	)

	switch cfg.Driver {
	case config.DriverPeriph:
		p, err := hal.NewPeriph(approaches, logger.Named("gpio"))
		if err != nil {
			return nil, nil, err
		}
		driver = p
	default:
		sim := hal.NewSim()
		driver, sensor = sim, sim
	}

	if cfg.Sensor.Path != "" {
		s, err := hal.NewIIOSensor(cfg.Sensor.Path, logger.Named("density"))
		if err != nil {
			return nil, nil, err
		}
		sensor = s
	}
	if sensor == nil {
		logger.Warn("no density input configured, reporting an empty road")
		sensor = hal.NewSim()
	}
	return driver, sensor, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openSerial opens the telemetry stream, stdout when no device is set
func openSerial(cfg config.Serial) (io.WriteCloser, error) {
	if cfg.Device == "" {
		return nopCloser{os.Stdout}, nil
	}
	return hal.OpenSerial(cfg.Device, cfg.Baud)
}

// accessLog logs every request at debug
func accessLog(logger *zap.Logger) alice.Constructor {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

func newMetricsServer(addr string, registry *prometheus.Registry, logger *zap.Logger) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodGet)

	return &http.Server{
		Addr:              addr,
		Handler:           alice.New(accessLog(logger)).Then(router),
		ReadHeaderTimeout: 5 * time.Second,
	}
}
