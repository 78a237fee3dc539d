package haptic

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go.bug.st/serial"
)

// Transport delivers commands to the belt hardware. Sends are
// fire-and-forget from the pipeline's perspective; a failed send is logged
// by the caller and never treated as pipeline-fatal.
type Transport interface {
	Send(ctx context.Context, cmd Command) error
	Close() error
}

// SerialBelt writes commands to the belt controller over a serial port.
// The wire format is one ASCII line per command: "<motor>,<intensity>\n".
type SerialBelt struct {
	port serial.Port
	mu   sync.Mutex
}

// OpenSerialBelt opens the belt's serial port at the given baud rate
// (8 data bits, no parity, one stop bit).
func OpenSerialBelt(portName string, baudRate int) (*SerialBelt, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("open belt port %s: %w", portName, err)
	}
	return &SerialBelt{port: port}, nil
}

// Send writes one command line to the port.
func (b *SerialBelt) Send(ctx context.Context, cmd Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.port.Write(WireFormat(cmd)); err != nil {
		return fmt.Errorf("write belt command: %w", err)
	}
	return nil
}

// Close closes the serial port.
func (b *SerialBelt) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port.Close()
}

// WireFormat encodes a command as the belt controller's line protocol.
func WireFormat(cmd Command) []byte {
	return []byte(fmt.Sprintf("%d,%d\n", cmd.Motor, cmd.Intensity))
}

// ConsoleTransport logs commands instead of sending them, for running the
// pipeline without belt hardware attached.
type ConsoleTransport struct{}

// Send logs the command's wire line.
func (ConsoleTransport) Send(ctx context.Context, cmd Command) error {
	log.Printf("belt (dry run): %d,%d", cmd.Motor, cmd.Intensity)
	return nil
}

// Close is a no-op for the console transport.
func (ConsoleTransport) Close() error { return nil }

// MockTransport records sent commands for tests.
type MockTransport struct {
	mu       sync.Mutex
	commands []Command
	err      error
}

// NewMockTransport creates an empty MockTransport.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// SetError sets the error returned by subsequent Sends.
func (t *MockTransport) SetError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.err = err
}

// Send records the command.
func (t *MockTransport) Send(ctx context.Context, cmd Command) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	t.commands = append(t.commands, cmd)
	return nil
}

// Commands returns a copy of everything sent so far.
func (t *MockTransport) Commands() []Command {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Command, len(t.commands))
	copy(out, t.commands)
	return out
}

// Close is a no-op for the mock transport.
func (t *MockTransport) Close() error {
	return nil
}
