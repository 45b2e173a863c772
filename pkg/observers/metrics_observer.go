package observers

import (
	"github.com/anggasct/tlc"
	"github.com/anggasct/tlc/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus"
)

// Names for our metrics
const (
	Namespace = "tlc"

	TransitionsCounter    = "transitions_total"
	RejectionsCounter     = "rejected_events_total"
	PhaseGauge            = "phase"
	PedestrianTimeGauge   = "pedestrian_time"
	SamplesCounter        = "telemetry_samples_total"
	DroppedSamplesCounter = "telemetry_dropped_total"
	AlertsCounter         = "telemetry_alerts_total"
	CongestionGauge       = "congestion_cars"
)

// labels
const (
	FromLabel  = "from"
	ToLabel    = "to"
	EventLabel = "event"
	PhaseLabel = "phase"
)

// MetricsObserver exports intersection and telemetry metrics to Prometheus
type MetricsObserver struct {
	tlc.BaseObserver

	transitions    *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	phase          *prometheus.GaugeVec
	pedestrianTime prometheus.Gauge
	samples        prometheus.Counter
	dropped        prometheus.Counter
	alerts         prometheus.Counter
	congestion     prometheus.Gauge
}

var (
	_ tlc.ExtendedObserver = (*MetricsObserver)(nil)
	_ telemetry.Recorder   = (*MetricsObserver)(nil)
)

// NewMetricsObserver creates the collectors and registers them with r. The
// phase gauge starts at initial.
func NewMetricsObserver(r prometheus.Registerer, initial tlc.Phase) (*MetricsObserver, error) {
	o := &MetricsObserver{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      TransitionsCounter,
			Help:      "Phase transitions taken",
		}, []string{FromLabel, ToLabel, EventLabel}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      RejectionsCounter,
			Help:      "Proposed events the phase definition rejected",
		}, []string{EventLabel}),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      PhaseGauge,
			Help:      "1 for the current phase, 0 otherwise",
		}, []string{PhaseLabel}),
		pedestrianTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      PedestrianTimeGauge,
			Help:      "Remaining crossing time units",
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      SamplesCounter,
			Help:      "Density samples reported",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      DroppedSamplesCounter,
			Help:      "Density samples dropped on a full queue",
		}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      AlertsCounter,
			Help:      "Heavy traffic alerts raised",
		}),
		congestion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      CongestionGauge,
			Help:      "Last reported car count",
		}),
	}

	for _, c := range []prometheus.Collector{
		o.transitions, o.rejections, o.phase, o.pedestrianTime,
		o.samples, o.dropped, o.alerts, o.congestion,
	} {
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}

	o.setPhase(initial)
	return o, nil
}

func (o *MetricsObserver) setPhase(current tlc.Phase) {
	for _, p := range tlc.Phases() {
		v := 0.0
		if p == current {
			v = 1
		}
		o.phase.WithLabelValues(p.String()).Set(v)
	}
}

// OnTransition records transition metrics
func (o *MetricsObserver) OnTransition(from, to tlc.Phase, event tlc.Event) {
	o.transitions.WithLabelValues(from.String(), to.String(), event.Name).Inc()
	o.setPhase(to)
}

// OnEventRejected counts rejections
func (o *MetricsObserver) OnEventRejected(event tlc.Event, _ string) {
	o.rejections.WithLabelValues(event.Name).Inc()
}

// OnPedestrianTime tracks the crossing time
func (o *MetricsObserver) OnPedestrianTime(remaining int) {
	o.pedestrianTime.Set(float64(remaining))
}

// SampleRecorded implements telemetry.Recorder
func (o *MetricsObserver) SampleRecorded(congestion int) {
	o.samples.Inc()
	o.congestion.Set(float64(congestion))
}

// SampleDropped implements telemetry.Recorder
func (o *MetricsObserver) SampleDropped() {
	o.dropped.Inc()
}

// AlertRaised implements telemetry.Recorder
func (o *MetricsObserver) AlertRaised() {
	o.alerts.Inc()
}
