package observers

import (
	"strings"
	"testing"

	"github.com/anggasct/tlc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsObserverPhases(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := NewMetricsObserver(reg, tlc.Green)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.phase.WithLabelValues("GREEN")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.phase.WithLabelValues("RED")))

	i, err := tlc.NewIntersection(tlc.NorthSouthApproaches(), tlc.WithObserver(m))
	require.NoError(t, err)
	res := i.RequestCrossing()
	i.ExpireTimer(res.Ticket)
	i.ExpireTimer(res.Ticket)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.phase.WithLabelValues("YELLOW")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.phase.WithLabelValues("GREEN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("GREEN", "YELLOW", tlc.EventTimerExpired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues(tlc.EventTimerExpired)))
	assert.Equal(t, float64(tlc.DefaultCrossingTime), testutil.ToFloat64(m.pedestrianTime))

	expected := `
# HELP tlc_transitions_total Phase transitions taken
# TYPE tlc_transitions_total counter
tlc_transitions_total{event="crossing_requested",from="GREEN",to="GREEN"} 1
tlc_transitions_total{event="timer_expired",from="GREEN",to="YELLOW"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "tlc_transitions_total"))
}

func TestMetricsObserverTelemetry(t *testing.T) {
	m, err := NewMetricsObserver(prometheus.NewRegistry(), tlc.Red)
	require.NoError(t, err)

	m.SampleRecorded(7)
	m.SampleRecorded(19)
	m.AlertRaised()
	m.SampleDropped()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.samples))
	assert.Equal(t, 19.0, testutil.ToFloat64(m.congestion))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.alerts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped))
}

func TestMetricsObserverDoubleRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewMetricsObserver(reg, tlc.Green)
	require.NoError(t, err)

	_, err = NewMetricsObserver(reg, tlc.Green)
	assert.Error(t, err)
}
