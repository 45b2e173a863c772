// Package observers provides observers for monitoring an intersection
package observers

import (
	"github.com/anggasct/tlc"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingObserver logs phase changes and rejected proposals
type LoggingObserver struct {
	tlc.BaseObserver
	logger *zap.Logger
	// rejections are routine (stale timers, presses in RED) so they are
	// logged at this level
	rejectLevel zapcore.Level
}

var _ tlc.ExtendedObserver = (*LoggingObserver)(nil)

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *zap.Logger, rejectLevel zapcore.Level) *LoggingObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingObserver{
		logger:      logger,
		rejectLevel: rejectLevel,
	}
}

// NewDefaultLoggingObserver logs rejections at debug under the "intersection" name
func NewDefaultLoggingObserver(logger *zap.Logger) *LoggingObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return NewLoggingObserver(logger.Named("intersection"), zapcore.DebugLevel)
}

// OnTransition logs transitions
func (o *LoggingObserver) OnTransition(from, to tlc.Phase, event tlc.Event) {
	o.logger.Info("transition",
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.String("event", event.Name),
		zap.Uint64("cycle", event.Ticket.Cycle),
		zap.String("event_id", event.ID),
	)
}

// OnEventRejected logs rejected proposals
func (o *LoggingObserver) OnEventRejected(event tlc.Event, reason string) {
	if ce := o.logger.Check(o.rejectLevel, "event rejected"); ce != nil {
		ce.Write(
			zap.String("event", event.Name),
			zap.Uint64("cycle", event.Ticket.Cycle),
			zap.String("reason", reason),
		)
	}
}

// OnPedestrianTime logs the crossing time
func (o *LoggingObserver) OnPedestrianTime(remaining int) {
	o.logger.Debug("crossing time", zap.Int("remaining", remaining))
}

// OnRequest logs debounce state changes
func (o *LoggingObserver) OnRequest(state tlc.Request) {
	o.logger.Debug("request state", zap.Stringer("state", state))
}
