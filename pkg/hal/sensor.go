package hal

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// IIOSensor reads the density input from a Linux industrial I/O attribute,
// for example /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
type IIOSensor struct {
	path   string
	logger *zap.Logger
}

var _ DensitySensor = (*IIOSensor)(nil)

// NewIIOSensor checks that path is readable and returns a sensor for it
func NewIIOSensor(path string, logger *zap.Logger) (*IIOSensor, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IIOSensor{path: path, logger: logger}, nil
}

// ReadDensity implements DensitySensor. A failed read counts as an empty road.
func (s *IIOSensor) ReadDensity() uint16 {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Warn("density read failed", zap.String("path", s.path), zap.Error(err))
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		s.logger.Warn("density value malformed", zap.String("path", s.path), zap.Error(err))
		return 0
	}
	switch {
	case v < 0:
		return 0
	case v > DensityMax:
		return DensityMax
	default:
		return uint16(v)
	}
}
