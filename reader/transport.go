package reader

import (
	"context"
	"io"
)

//go:generate mockgen -source=transport.go -destination=mock_transport.go -package=reader

// Transport represents an established, bidirectional byte stream to an
// RFID reader.
//
// A Transport is assumed to be already connected and ready for use. It
// provides the low-level I/O primitives required to send commands and
// receive response lines. Typical implementations include serial ports,
// TCP bridges, or in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to an RFID reader.
//
// Dialer abstracts how the connection is created (for example, via a
// serial port or a test double). The Reader keeps the Dialer for the
// whole session lifetime so it can re-dial after a disconnect.
type Dialer interface {
	// Dial creates and returns a connected Transport. It may perform
	// blocking operations and should respect cancellation and deadlines
	// provided by the context. Dial returns an error if the transport
	// cannot be established.
	Dial(ctx context.Context) (Transport, error)
}
