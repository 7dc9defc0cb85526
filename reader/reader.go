// Package reader drives a TSL 1128 RFID reader over a line-oriented
// transport: it sends textual commands, reconstructs command/response
// transactions from the interleaved line stream, classifies unsolicited
// inventory reports and maintains aggregated per-tag statistics plus
// version and battery telemetry.
package reader

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"scanworks.io/rfid/tslgw/tsl"
)

// Reader owns one device session. All parsing, decoding and aggregate
// mutation happen on the single goroutine running Run; the transport is
// read by exactly one background scanner per connection. Commands from
// other goroutines are routed through the loop, which keeps multi-part
// writes atomic and the silent queue single-owner.
type Reader struct {
	config  Config
	logger  *slog.Logger
	state   *State
	session *session

	events chan Event
	sends  chan *sendRequest

	connected atomic.Bool
	running   atomic.Bool
}

// sendRequest is a command write routed to the loop goroutine.
type sendRequest struct {
	parts  []string
	silent bool
	errCh  chan error
}

// New creates a Reader. No connection is made until Run.
func New(config Config) (*Reader, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	r := &Reader{
		config: config,
		logger: config.Logger,
		state:  NewState(config.HistoryLimit),
		events: make(chan Event, config.EventBuffer),
		sends:  make(chan *sendRequest),
	}
	r.session = newSession(r.state, r.logger, r.emit)
	return r, nil
}

// Events returns the ordered session event stream. The channel is
// buffered; if the consumer falls behind, events are dropped rather
// than stalling the protocol loop.
func (r *Reader) Events() <-chan Event {
	return r.events
}

// Connected reports whether a device connection is currently up.
func (r *Reader) Connected() bool {
	return r.connected.Load()
}

// State returns the shared aggregate state (version, battery, tags).
func (r *Reader) State() *State {
	return r.state
}

// Send transmits a command string to the device. Multi-part commands
// (separated by ";") are written as an atomic sequence of whole lines.
// A silent send suppresses the echo and the eventual outcome of every
// part; it is used for background polling.
func (r *Reader) Send(ctx context.Context, cmd string, silent bool) error {
	parts := tsl.Split(cmd)
	if len(parts) == 0 {
		return ErrEmptyCommand
	}
	if !r.connected.Load() {
		return ErrNotConnected
	}

	req := &sendRequest{parts: parts, silent: silent, errCh: make(chan error, 1)}
	select {
	case r.sends <- req:
	case <-ctx.Done():
		return fmt.Errorf("command not sent: %w", ctx.Err())
	}
	select {
	case err := <-req.errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("command not confirmed: %w", ctx.Err())
	}
}

// Run connects to the device and processes its line stream until the
// context is cancelled. With AutoReconnect it re-dials after each
// disconnect; otherwise it returns the first connection error.
func (r *Reader) Run(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer r.running.Store(false)

	attempts := 0
	for {
		dialed, err := r.runConnection(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !r.config.AutoReconnect {
			return err
		}

		if dialed {
			attempts = 0
		} else {
			attempts++
			if r.config.MaxReconnects > 0 && attempts >= r.config.MaxReconnects {
				return fmt.Errorf("giving up after %d failed connection attempts: %w", attempts, err)
			}
		}
		r.logger.Warn("connection lost",
			"error", err, "retry_in", r.config.ReconnectDelay)
		if err := r.waitReconnect(ctx); err != nil {
			return err
		}
	}
}

// runConnection dials once and runs the session loop until the
// connection ends. dialed reports whether a transport was established.
func (r *Reader) runConnection(ctx context.Context) (dialed bool, err error) {
	transport, err := r.config.Dialer.Dial(ctx)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer transport.Close()

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r.connected.Store(true)
	r.emit(Event{Kind: EventConnected})
	defer func() {
		// Exactly one disconnect per connection; half-built transaction
		// state never crosses this boundary.
		r.connected.Store(false)
		r.session.ResetConnection()
		r.emit(Event{Kind: EventDisconnected})
	}()

	scanner := bufio.NewScanner(transport)
	scanner.Split(tsl.Splitter)

	lines := make(chan string, 10)
	scanErrs := make(chan error, 1)

	go func() {
		defer close(lines)
		for scanner.Scan() {
			token := scanner.Text()
			if strings.TrimSpace(token) == "" {
				continue
			}
			select {
			case lines <- token:
			case <-connCtx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			scanErrs <- err
		}
	}()

	// Rapid-poll handshake: query the version silently until a version
	// transaction completes or the timeout elapses.
	handshake := time.NewTicker(r.config.HandshakeInterval)
	defer handshake.Stop()
	deadline := time.Now().Add(r.config.HandshakeTimeout)
	established := false

	var poll *time.Ticker
	var pollC <-chan time.Time
	defer func() {
		if poll != nil {
			poll.Stop()
		}
	}()
	establish := func() {
		established = true
		handshake.Stop()
		if r.config.PollInterval > 0 {
			poll = time.NewTicker(r.config.PollInterval)
			pollC = poll.C
		}
	}

	if err := r.sendSilent(transport, tsl.CmdVersion); err != nil {
		return true, err
	}

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErrs:
					return true, fmt.Errorf("read: %w", err)
				default:
					return true, io.EOF
				}
			}
			tx := r.session.HandleLine(line)
			if tx != nil && tx.Command == tsl.CmdVersion && !established {
				r.logger.Debug("version handshake complete")
				establish()
			}

		case <-handshake.C:
			if established {
				continue
			}
			if time.Now().After(deadline) {
				r.logger.Warn("no version response within handshake timeout")
				// Drop the unanswered handshake queries and carry on;
				// the device may still serve inventory.
				r.session.ResetConnection()
				establish()
				continue
			}
			if err := r.sendSilent(transport, tsl.CmdVersion); err != nil {
				return true, err
			}

		case <-pollC:
			if err := r.sendSilent(transport, tsl.CmdVersion); err != nil {
				return true, err
			}
			if err := r.sendSilent(transport, tsl.CmdBattery); err != nil {
				return true, err
			}

		case req := <-r.sends:
			req.errCh <- r.write(transport, req)

		case err := <-scanErrs:
			return true, fmt.Errorf("read: %w", err)
		}
	}
}

// write pushes silent tokens onto the queue and transmits every part as
// its own line. Enqueue order equals transmission order, which the
// strict in-order response model depends on.
func (r *Reader) write(transport Transport, req *sendRequest) error {
	if req.silent {
		r.session.PushSilent(req.parts)
	}
	for _, part := range req.parts {
		if _, err := transport.Write([]byte(part + tsl.CRLF)); err != nil {
			return fmt.Errorf("write command %q: %w", part, err)
		}
		if !req.silent {
			r.emit(Event{Kind: EventSent, Line: part})
		}
	}
	return nil
}

func (r *Reader) sendSilent(transport Transport, cmd string) error {
	return r.write(transport, &sendRequest{parts: []string{cmd}, silent: true})
}

// waitReconnect sleeps between attempts while still answering Send
// callers with ErrNotConnected.
func (r *Reader) waitReconnect(ctx context.Context) error {
	timer := time.NewTimer(r.config.ReconnectDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case req := <-r.sends:
			req.errCh <- ErrNotConnected
		}
	}
}

// emit delivers an event without ever blocking the loop.
func (r *Reader) emit(ev Event) {
	select {
	case r.events <- ev:
	default:
	}
}
