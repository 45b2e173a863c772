package hal

import (
	"fmt"
	"io"

	"go.bug.st/serial"
)

// DefaultBaudRate is the line rate of the telemetry stream
const DefaultBaudRate = 115200

// SerialMode returns 8N1 at baud. Flow control stays off.
func SerialMode(baud int) *serial.Mode {
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens device with SerialMode(baud)
func OpenSerial(device string, baud int) (io.WriteCloser, error) {
	if baud <= 0 {
		return nil, fmt.Errorf("open serial device %s: invalid baud rate %d", device, baud)
	}
	port, err := serial.Open(device, SerialMode(baud))
	if err != nil {
		return nil, fmt.Errorf("open serial device %s: %w", device, err)
	}
	return port, nil
}
