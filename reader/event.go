package reader

// EventKind names the session events surfaced to the presentation layer.
type EventKind string

const (
	// EventConnected fires once per established connection.
	EventConnected EventKind = "connected"
	// EventDisconnected fires exactly once when a connection ends, no
	// matter how it ended.
	EventDisconnected EventKind = "disconnected"
	// EventSent echoes a non-silent command part written to the device.
	EventSent EventKind = "sent"
	// EventTransaction carries a completed non-silent transaction.
	// Silent transaction outcomes are suppressed, even on error.
	EventTransaction EventKind = "transaction"
	// EventLine carries an unsolicited line observed outside any
	// transaction while no silent command is in flight.
	EventLine EventKind = "line"
	// EventTag reports an inventory read event for a tag.
	EventTag EventKind = "tag"
)

// Event is one entry of the ordered session event stream.
type Event struct {
	Kind EventKind `json:"kind"`

	// Line is set for EventSent and EventLine.
	Line string `json:"line,omitempty"`

	// Transaction fields, set for EventTransaction.
	Command string   `json:"command,omitempty"`
	Payload []string `json:"payload,omitempty"`
	OK      bool     `json:"ok,omitempty"`
	ErrCode string   `json:"error,omitempty"`

	// Tag fields, set for EventTag.
	Tag   string `json:"tag,omitempty"`
	Count int    `json:"count,omitempty"`
}
