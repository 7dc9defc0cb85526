package reader

import (
	"context"
	"fmt"
	"time"

	"go.bug.st/serial"
)

// SerialDialer opens an RFID reader over a serial port using
// go.bug.st/serial.
type SerialDialer struct {
	PortName string
	BaudRate int
	// ReadTimeout bounds a single blocking read. It must be short enough
	// that a stop request is honored promptly.
	ReadTimeout time.Duration
	// Kick briefly drops DTR/RTS after opening the port. A TSL 1128 that
	// has gone to sleep on USB starts responding again after the toggle.
	Kick bool
}

// Dial opens and configures the serial port.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := &serial.Mode{BaudRate: d.BaudRate}
	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}

	timeout := d.ReadTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}

	if d.Kick {
		if err := kickPort(port); err != nil {
			port.Close()
			return nil, fmt.Errorf("toggle control lines: %w", err)
		}
	}

	return &serialTransport{Port: port}, nil
}

// serialTransport absorbs read timeouts. The underlying port returns
// (0, nil) when the timeout elapses, which bufio.Scanner treats as a
// stalled reader; retrying keeps Read blocking until data arrives or
// the port is closed.
type serialTransport struct {
	serial.Port
}

func (t *serialTransport) Read(p []byte) (int, error) {
	for {
		n, err := t.Port.Read(p)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

// kickPort drops the control lines for 50ms and raises them again.
func kickPort(port serial.Port) error {
	if err := port.SetDTR(false); err != nil {
		return err
	}
	if err := port.SetRTS(false); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	if err := port.SetDTR(true); err != nil {
		return err
	}
	return port.SetRTS(true)
}
