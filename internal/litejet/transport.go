package litejet

import (
	"bufio"
	"fmt"
	"strings"
	"sync"

	"go.bug.st/serial"
)

// terminator ends every line in the MCP dialect, both directions.
const terminator = '\r'

// LineTransport is the byte-stream boundary the engine talks through.
// ReadLine blocks until a full line arrives and returns it without the
// terminator; it returns an error once the transport is closed or lost.
// WriteLine appends the terminator and must be safe to call while a
// ReadLine is blocked.
type LineTransport interface {
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
}

// SerialConfig holds the physical port settings for a LiteJet MCP.
// The panel speaks 19200 8N1 regardless of board size.
type SerialConfig struct {
	Device   string `yaml:"device"`
	BaudRate int    `yaml:"baud_rate"`
}

// Validate checks the serial settings.
func (c SerialConfig) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("serial device is required")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("baud rate must be positive, got %d", c.BaudRate)
	}
	return nil
}

// DefaultSerialConfig returns factory MCP port settings.
func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		Device:   "/dev/ttyUSB0",
		BaudRate: 19200,
	}
}

// SerialTransport is the LineTransport over a real RS-232 port.
type SerialTransport struct {
	port    serial.Port
	reader  *bufio.Reader
	writeMu sync.Mutex
}

var _ LineTransport = (*SerialTransport)(nil)

// OpenSerial opens the serial device with MCP framing (8 data bits, no
// parity, one stop bit).
func OpenSerial(cfg SerialConfig) (*SerialTransport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrConnectionFailed, cfg.Device, err)
	}
	return &SerialTransport{
		port:   port,
		reader: bufio.NewReader(port),
	}, nil
}

// ReadLine blocks for the next CR-terminated line. Stray LF bytes some
// terminal gateways inject around the CR are stripped.
func (t *SerialTransport) ReadLine() (string, error) {
	line, err := t.reader.ReadString(terminator)
	if err != nil {
		return "", fmt.Errorf("serial read: %w", err)
	}
	return strings.Trim(line, "\r\n"), nil
}

// WriteLine sends one terminated line. Writes are serialized so two
// callers can never interleave bytes on the wire.
func (t *SerialTransport) WriteLine(line string) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := t.port.Write(append([]byte(line), terminator)); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	return nil
}

// Close releases the port, unblocking any pending ReadLine.
func (t *SerialTransport) Close() error {
	return t.port.Close()
}
