package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/multierr"
)

const (
	reportFormat = "Traffic Congestion: %d\r\n"
	// Alert is written after a report above the heavy-traffic threshold
	Alert = "\x1b[1;31m Whoa Traffic is Heavy\x1b[1;39m\r\n"
)

// Report is what the consumer hands to its sink for each sample
type Report struct {
	Congestion int       `json:"congestion"`
	Heavy      bool      `json:"heavy"`
	Raw        uint16    `json:"raw"`
	At         time.Time `json:"at"`
}

// Sink receives telemetry reports
type Sink interface {
	Report(ctx context.Context, r Report) error
}

// WriterSink renders reports as text lines on a serial stream
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink creates a sink writing to w
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// Report implements Sink
func (s *WriterSink) Report(_ context.Context, r Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, reportFormat, r.Congestion); err != nil {
		return err
	}
	if r.Heavy {
		if _, err := io.WriteString(s.w, Alert); err != nil {
			return err
		}
	}
	return nil
}

// Publisher is the part of an MQTT client the MQTT sink needs
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTSink mirrors reports to an MQTT topic as JSON
type MQTTSink struct {
	pub   Publisher
	topic string
	qos   byte
}

// NewMQTTSink creates a sink publishing to topic
func NewMQTTSink(pub Publisher, topic string, qos byte) *MQTTSink {
	return &MQTTSink{pub: pub, topic: topic, qos: qos}
}

// Report implements Sink
func (s *MQTTSink) Report(_ context.Context, r Report) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.pub.Publish(s.topic, s.qos, false, payload)
}

// MultiSink fans a report out to several sinks. Every sink is tried; the
// errors are combined.
type MultiSink []Sink

// Report implements Sink
func (m MultiSink) Report(ctx context.Context, r Report) error {
	var err error
	for _, s := range m {
		err = multierr.Append(err, s.Report(ctx, r))
	}
	return err
}
