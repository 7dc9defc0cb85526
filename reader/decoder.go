package reader

import (
	"strconv"
	"strings"

	"scanworks.io/rfid/tslgw/tsl"
)

// Decoder interprets a completed transaction's payload into typed
// updates on the shared state. Malformed payload lines are skipped, not
// surfaced; decoding must always consume the whole payload.
type Decoder interface {
	Decode(payload []string, state *State)
}

// Registry dispatches payloads to the decoder registered for a command
// token. A lookup miss is a no-op, not an error: unknown commands simply
// carry opaque payloads.
type Registry struct {
	decoders map[string]Decoder
}

// NewRegistry returns a registry with the built-in version, battery and
// inventory decoders installed.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]Decoder)}
	r.Register(tsl.CmdVersion, versionDecoder{})
	r.Register(tsl.CmdBattery, batteryDecoder{})
	r.Register(tsl.CmdInventory, &inventoryDecoder{})
	return r
}

// Register installs a decoder for a command token, replacing any
// previous one.
func (r *Registry) Register(command string, d Decoder) {
	r.decoders[command] = d
}

// Decode routes a finished transaction to its decoder, if one exists.
func (r *Registry) Decode(tx *Transaction, state *State) {
	if d, ok := r.decoders[tx.Command]; ok {
		d.Decode(tx.Payload, state)
	}
}

// versionDecoder interprets .vr payloads: KEY:VALUE lines mapped through
// the version label table. The battery voltage field gets an "mV" unit
// suffix on store.
type versionDecoder struct{}

func (versionDecoder) Decode(payload []string, state *State) {
	for _, line := range payload {
		key, value, ok := splitField(line)
		if !ok {
			continue
		}
		if key == tsl.FieldBatteryVoltage {
			value += "mV"
		}
		state.SetVersion(tsl.VersionLabel(key), value)
	}
}

// batteryDecoder interprets .bl payloads. The charge-percentage field is
// suffixed with "%" unless the device already included it; the voltage
// field gets "mV".
type batteryDecoder struct{}

func (batteryDecoder) Decode(payload []string, state *State) {
	for _, line := range payload {
		key, value, ok := splitField(line)
		if !ok {
			continue
		}
		switch key {
		case tsl.FieldBatteryVoltage:
			value += "mV"
		case tsl.FieldChargePercent, tsl.FieldChargePercent2:
			if !strings.HasSuffix(value, "%") {
				value += "%"
			}
		}
		state.SetBattery(tsl.BatteryLabel(key), value)
	}
}

// inventoryDecoder interprets inventory output: tag identifier lines
// alternating with strength readings. It serves double duty for the
// payload of a framed .iv transaction and for the unsolicited streaming
// lines emitted while echo mode is on; the session feeds the latter one
// line at a time via DecodeLine.
type inventoryDecoder struct {
	// pending is the tag whose strength reading has not arrived yet.
	pending string
	// onTag, when set, observes every counted read event.
	onTag func(tag string, count int)
}

func (d *inventoryDecoder) Decode(payload []string, state *State) {
	for _, line := range payload {
		d.DecodeLine(line, state)
	}
	// A trailing tag with no reading keeps its nil placeholder, but the
	// gap must not bleed into the next transaction.
	d.pending = ""
}

// DecodeLine consumes one inventory line. Tag lines open a read event
// with a placeholder sample; a following reading line resolves it. A
// reading with no pending tag, or a non-numeric reading, is skipped.
func (d *inventoryDecoder) DecodeLine(line string, state *State) {
	switch tsl.Classify(line) {
	case tsl.TypeTag:
		d.pending = tsl.Tag(line)
		count := state.Tags.Observe(d.pending)
		if d.onTag != nil {
			d.onTag(d.pending, count)
		}

	case tsl.TypeReading:
		if d.pending == "" {
			return
		}
		raw := tsl.Reading(line)
		dbm, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return
		}
		state.Tags.Resolve(d.pending, float64(tsl.StrengthPercent(dbm)))
		d.pending = ""
	}
}

// Reset drops the pending tag; used on disconnect so a half-read pair
// never spans two connections.
func (d *inventoryDecoder) Reset() {
	d.pending = ""
}

// splitField splits a KEY:VALUE payload line, trimming both sides.
// Lines without a colon do not match the shape and are skipped by the
// decoders.
func splitField(line string) (key, value string, ok bool) {
	k, v, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), true
}
