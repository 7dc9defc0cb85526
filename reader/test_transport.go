package reader

import (
	"context"
	"io"
	"sync"

	"scanworks.io/rfid/tslgw/tsl"
)

// TestTransport is a test helper that simulates a blocking transport
// using channels. The Run loop's scanner goroutine continuously reads
// from the transport, and reads must block until data is available,
// like a real serial port would.
type TestTransport struct {
	mu       sync.Mutex
	readChan chan []byte
	writes   [][]byte
	closed   bool
}

// NewTestTransport creates a new test transport. Exported for use in
// tests.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan: make(chan []byte, 32),
	}
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	data, ok := <-t.readChan
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := make([]byte, len(p))
	copy(cp, p)
	t.writes = append(t.writes, cp)
	return len(p), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

// SendLine queues a CRLF-terminated line to be read from the transport.
// This simulates the device talking.
func (t *TestTransport) SendLine(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(line + tsl.CRLF)
	}
}

// Writes returns a copy of everything written to the transport so far.
func (t *TestTransport) Writes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.writes))
	for i, w := range t.writes {
		out[i] = string(w)
	}
	return out
}

// TestDialer hands out a fixed sequence of transports, one per Dial.
type TestDialer struct {
	mu         sync.Mutex
	transports []Transport
}

// NewTestDialer creates a dialer serving the given transports in order.
func NewTestDialer(transports ...Transport) *TestDialer {
	return &TestDialer{transports: transports}
}

// Dial returns the next transport, or ErrNotConnected when exhausted.
func (d *TestDialer) Dial(_ context.Context) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.transports) == 0 {
		return nil, ErrNotConnected
	}
	t := d.transports[0]
	d.transports = d.transports[1:]
	return t, nil
}
