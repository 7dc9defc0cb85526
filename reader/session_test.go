package reader

import (
	"io"
	"log/slog"
	"testing"
)

func newTestSession() (*session, *[]Event) {
	events := &[]Event{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := newSession(NewState(10), logger, func(ev Event) {
		*events = append(*events, ev)
	})
	return s, events
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func TestSessionSilentSuppression(t *testing.T) {
	s, events := newTestSession()

	s.PushSilent([]string{".vr"})
	s.HandleLine("CS: .vr")
	s.HandleLine("MF: Acme")
	s.HandleLine("OK:")

	if got := s.state.Version()["Manufacturer"]; got != "Acme" {
		t.Errorf("version map not updated, got %q", got)
	}
	if len(*events) != 0 {
		t.Errorf("silent transaction must not surface, got %v", kinds(*events))
	}
	if s.SilentDepth() != 0 {
		t.Errorf("silent queue should be drained, depth %d", s.SilentDepth())
	}
}

func TestSessionSilentErrorAlsoSuppressed(t *testing.T) {
	s, events := newTestSession()

	s.PushSilent([]string{".bl"})
	s.HandleLine("CS: .bl")
	s.HandleLine("ER:006")

	if len(*events) != 0 {
		t.Errorf("silent error outcome must be suppressed, got %v", kinds(*events))
	}
	if s.SilentDepth() != 0 {
		t.Errorf("queue head should be popped on error too, depth %d", s.SilentDepth())
	}
}

func TestSessionNonSilentSurfaced(t *testing.T) {
	s, events := newTestSession()

	s.HandleLine("CS: .iv")
	s.HandleLine("EP:AA01")
	s.HandleLine("OK:")

	if len(*events) != 1 {
		t.Fatalf("expected exactly one event, got %v", kinds(*events))
	}
	ev := (*events)[0]
	if ev.Kind != EventTransaction || ev.Command != ".iv" || !ev.OK {
		t.Errorf("unexpected transaction event: %+v", ev)
	}
	if len(ev.Payload) != 1 || ev.Payload[0] != "EP:AA01" {
		t.Errorf("payload not carried verbatim: %v", ev.Payload)
	}
}

func TestSessionSilentPollScenario(t *testing.T) {
	// .vr then .bl sent silently; both responses arrive in order.
	s, events := newTestSession()

	s.PushSilent([]string{".vr"})
	s.PushSilent([]string{".bl"})

	for _, line := range []string{
		"CS: .vr", "MF:Acme", "OK:",
		"CS: .bl", "BP:80", "OK:",
	} {
		s.HandleLine(line)
	}

	if got := s.state.Version()["Manufacturer"]; got != "Acme" {
		t.Errorf("Manufacturer = %q, want Acme", got)
	}
	if got := s.state.Battery()["Charge level"]; got != "80%" {
		t.Errorf("Charge level = %q, want 80%%", got)
	}
	if s.SilentDepth() != 0 {
		t.Errorf("silent queue not empty: depth %d", s.SilentDepth())
	}
	if len(*events) != 0 {
		t.Errorf("no events should surface, got %v", kinds(*events))
	}
}

func TestSessionQueueMismatchRecovers(t *testing.T) {
	s, events := newTestSession()

	// Head says .vr, device completes .bl with matching CS: not seen as
	// silent. The queue is left alone and the outcome surfaces.
	s.PushSilent([]string{".vr"})
	s.HandleLine("CS: .bl")
	s.HandleLine("OK:")

	if s.SilentDepth() != 1 {
		t.Errorf("queue must not pop on a non-matching command, depth %d", s.SilentDepth())
	}
	if len(*events) != 1 || (*events)[0].Kind != EventTransaction {
		t.Errorf("non-silent outcome should surface, got %v", kinds(*events))
	}
}

func TestSessionOrphanTerminatorIgnored(t *testing.T) {
	s, events := newTestSession()

	s.HandleLine("OK:")
	s.HandleLine("ER:042")

	if len(*events) != 0 {
		t.Errorf("orphan terminators must yield nothing, got %v", kinds(*events))
	}
	if s.parser.Active() {
		t.Error("parser should remain idle")
	}
}

func TestSessionUnsolicitedInventoryStream(t *testing.T) {
	s, events := newTestSession()

	s.HandleLine("EP:AA01")
	s.HandleLine("RI:-57.5")
	s.HandleLine("EP:AA01")
	s.HandleLine("RI:-57.5")

	tags := s.state.Tags.Snapshot()
	st := tags["AA01"]
	if st.Count != 2 {
		t.Errorf("count = %d, want 2", st.Count)
	}
	if len(st.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(st.History))
	}
	if st.Min == nil || st.Max == nil || *st.Min != 50 || *st.Max != 50 {
		t.Errorf("extrema should both be 50, got min=%v max=%v", st.Min, st.Max)
	}

	// Two tag events plus four raw line events.
	var tagEvents, lineEvents int
	for _, ev := range *events {
		switch ev.Kind {
		case EventTag:
			tagEvents++
		case EventLine:
			lineEvents++
		}
	}
	if tagEvents != 2 || lineEvents != 4 {
		t.Errorf("got %d tag / %d line events, want 2/4", tagEvents, lineEvents)
	}
}

func TestSessionUnsolicitedGatedWhileSilent(t *testing.T) {
	s, events := newTestSession()

	s.PushSilent([]string{".vr"})
	s.HandleLine("CS: .vr")

	// A stray tag line while the silent response is in flight: it is a
	// payload line of the active transaction, not an unsolicited event.
	s.HandleLine("EP:AA01")
	s.HandleLine("OK:")

	if len(*events) != 0 {
		t.Errorf("nothing should surface during a silent transaction, got %v", kinds(*events))
	}
	if s.state.Tags.Len() != 0 {
		t.Error("payload lines of a non-inventory command must not feed the tag store")
	}
}

func TestSessionResetConnection(t *testing.T) {
	s, events := newTestSession()

	s.PushSilent([]string{".vr"})
	s.HandleLine("CS: .vr")
	s.HandleLine("MF: half-done")
	s.ResetConnection()

	// The next connection's first transaction is unaffected.
	s.HandleLine("CS: .bl")
	tx := s.HandleLine("OK:")
	if tx == nil {
		t.Fatal("expected a completed transaction after reconnect")
	}
	if tx.Command != ".bl" || len(tx.Payload) != 0 {
		t.Errorf("leaked state across reconnect: %+v", tx)
	}
	if s.SilentDepth() != 0 {
		t.Error("silent queue must be cleared on disconnect")
	}
	// The .bl completion surfaces because the stale silent entry is gone.
	if len(*events) != 1 || (*events)[0].Kind != EventTransaction {
		t.Errorf("expected the post-reconnect outcome to surface, got %v", kinds(*events))
	}
}
