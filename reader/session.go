package reader

import (
	"log/slog"
	"strings"

	"scanworks.io/rfid/tslgw/tsl"
)

// session holds the protocol bookkeeping for one transport connection:
// the response parser, the silent-command FIFO and the current-command
// reconciliation. It runs strictly on the Reader loop goroutine.
//
// The model is strict single-in-flight: the device answers commands in
// the order they were issued and one response completes before the next
// begins. Anything that contradicts that is a desync to recover from,
// never a case to optimize for.
type session struct {
	logger   *slog.Logger
	parser   Parser
	registry *Registry
	inv      *inventoryDecoder
	state    *State
	emit     func(Event)

	silentQueue   []string
	currentCmd    string
	currentSilent bool
}

func newSession(state *State, logger *slog.Logger, emit func(Event)) *session {
	s := &session{
		logger: logger,
		state:  state,
		emit:   emit,
	}
	s.inv = &inventoryDecoder{
		onTag: func(tag string, count int) {
			emit(Event{Kind: EventTag, Tag: tag, Count: count})
		},
	}
	s.registry = NewRegistry()
	s.registry.Register(tsl.CmdInventory, s.inv)
	return s
}

// HandleLine consumes one line from the transport and returns the
// transaction it completed, if any.
func (s *session) HandleLine(line string) *Transaction {
	if strings.HasPrefix(line, tsl.CommandStart) {
		s.currentCmd = tsl.Command(line)
		s.currentSilent = len(s.silentQueue) > 0 && s.silentQueue[0] == s.currentCmd
	}

	tx, captured := s.parser.Feed(line)
	if tx != nil {
		s.finish(tx)
		return tx
	}
	if captured {
		return nil
	}

	switch tsl.Classify(line) {
	case tsl.TypeSuccess, tsl.TypeError:
		// Terminator with nothing in flight. Drop it and stay idle.
		s.logger.Warn("orphan terminator dropped", "line", line)
	default:
		s.unsolicited(line)
	}
	return nil
}

// finish routes a completed transaction to the decoders and reconciles
// it against the silent queue.
func (s *session) finish(tx *Transaction) {
	s.registry.Decode(tx, s.state)

	if s.currentSilent {
		if len(s.silentQueue) > 0 {
			head := s.silentQueue[0]
			s.silentQueue = s.silentQueue[1:]
			if head != tx.Command {
				s.logger.Warn("silent queue desync",
					"expected", head, "completed", tx.Command)
			}
		} else {
			s.logger.Warn("silent completion with empty queue",
				"command", tx.Command)
		}
		// Suppressed: no outcome surfaces, success or not.
	} else {
		s.emit(Event{
			Kind:    EventTransaction,
			Command: tx.Command,
			Payload: tx.Payload,
			OK:      tx.OK,
			ErrCode: tx.ErrCode,
		})
	}

	s.currentCmd = ""
	s.currentSilent = false
}

// unsolicited handles a line outside any transaction. Inventory
// streaming lines feed the tag aggregates regardless of silence; the
// raw line is only surfaced when no silent command is in flight.
func (s *session) unsolicited(line string) {
	s.inv.DecodeLine(line, s.state)
	if !s.currentSilent {
		s.emit(Event{Kind: EventLine, Line: line})
	}
}

// PushSilent enqueues command tokens whose responses must be suppressed.
// Must happen before the tokens are written to the device so the FIFO
// order matches the device's response order.
func (s *session) PushSilent(parts []string) {
	s.silentQueue = append(s.silentQueue, parts...)
}

// SilentDepth returns the number of queued silent command tokens.
func (s *session) SilentDepth() int {
	return len(s.silentQueue)
}

// ResetConnection returns the session to a clean baseline. Half-built
// transactions are discarded, never merged into the next connection's
// timeline.
func (s *session) ResetConnection() {
	s.parser.Reset()
	s.inv.Reset()
	s.silentQueue = nil
	s.currentCmd = ""
	s.currentSilent = false
}
