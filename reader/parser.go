package reader

import (
	"strings"

	"scanworks.io/rfid/tslgw/tsl"
)

// Transaction is one command's complete request/response cycle as
// reconstructed from the line stream. It is immutable once returned
// by Parser.Feed.
type Transaction struct {
	// Command is the token announced by the CS: line.
	Command string
	// Payload holds every non-terminator line between the CS: line and
	// the terminator, verbatim and in arrival order.
	Payload []string
	// OK reports whether the transaction ended with the success
	// terminator. A device-reported error is a normal outcome variant,
	// not a Go error.
	OK bool
	// ErrCode carries the code from an ER: terminator.
	ErrCode string
}

// Parser reconstructs transactions from the CS:/OK:/ER: framing. It is
// a pure state machine over single lines; the transport must reassemble
// complete lines before feeding it.
//
// Parser is not safe for concurrent use. Exactly one parser exists per
// transport session and it is owned by the session loop.
type Parser struct {
	command string
	active  bool
	payload []string
}

// Active reports whether a transaction is currently being accumulated.
func (p *Parser) Active() bool {
	return p.active
}

// Command returns the command token of the transaction in flight, if any.
func (p *Parser) Command() string {
	return p.command
}

// Feed consumes one line.
//
// The returned Transaction is non-nil exactly when the line finalized
// one. captured reports whether the parser consumed the line: a command
// start, a payload line of an active transaction, or a terminator of an
// active transaction. Lines with captured == false are unsolicited and
// must be classified by the caller; orphan terminators are among them
// and yield no transaction.
func (p *Parser) Feed(line string) (tx *Transaction, captured bool) {
	switch {
	case strings.HasPrefix(line, tsl.CommandStart):
		// A new command start silently abandons any unfinished
		// transaction (at-most-one-in-flight).
		p.command = tsl.Command(line)
		p.active = true
		p.payload = nil
		return nil, true

	case line == tsl.Success:
		if !p.active {
			return nil, false
		}
		tx = &Transaction{Command: p.command, Payload: p.payload, OK: true}
		p.Reset()
		return tx, true

	case strings.HasPrefix(line, tsl.ErrorPrefix):
		if !p.active {
			return nil, false
		}
		tx = &Transaction{Command: p.command, Payload: p.payload, ErrCode: tsl.ErrorCode(line)}
		p.Reset()
		return tx, true

	default:
		if !p.active {
			return nil, false
		}
		p.payload = append(p.payload, line)
		return nil, true
	}
}

// Reset abandons any transaction in flight. Called after finalization
// and on disconnect, so no partial state leaks into the next connection.
func (p *Parser) Reset() {
	p.command = ""
	p.active = false
	p.payload = nil
}
