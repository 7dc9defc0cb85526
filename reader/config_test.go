package reader_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"scanworks.io/rfid/tslgw/reader"
)

func TestConfigBuilderDefaults(t *testing.T) {
	cfg, err := reader.NewConfigBuilder().
		WithDialer(reader.NewTestDialer()).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Logger == nil {
		t.Error("Logger should default to slog.Default")
	}
	if cfg.HistoryLimit != 500 {
		t.Errorf("HistoryLimit = %d, want 500", cfg.HistoryLimit)
	}
	if cfg.PollInterval != 0 {
		t.Errorf("PollInterval = %v, want 0 (polling opt-in)", cfg.PollInterval)
	}
	if cfg.HandshakeInterval != 250*time.Millisecond {
		t.Errorf("HandshakeInterval = %v, want 250ms", cfg.HandshakeInterval)
	}
	if cfg.HandshakeTimeout != 5*time.Second {
		t.Errorf("HandshakeTimeout = %v, want 5s", cfg.HandshakeTimeout)
	}
	if cfg.ReconnectDelay != 2*time.Second {
		t.Errorf("ReconnectDelay = %v, want 2s", cfg.ReconnectDelay)
	}
	if cfg.EventBuffer != 128 {
		t.Errorf("EventBuffer = %d, want 128", cfg.EventBuffer)
	}
	if cfg.AutoReconnect {
		t.Error("AutoReconnect should default to off")
	}
}

func TestConfigBuilderOverrides(t *testing.T) {
	logger := quietLogger()
	cfg, err := reader.NewConfigBuilder().
		WithDialer(reader.NewTestDialer()).
		WithLogger(logger).
		WithHistoryLimit(64).
		WithPollInterval(10 * time.Second).
		WithHandshakeInterval(time.Second).
		WithHandshakeTimeout(3 * time.Second).
		WithAutoReconnect(true).
		WithReconnectDelay(time.Second).
		WithMaxReconnects(7).
		WithEventBuffer(16).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Logger != logger {
		t.Error("Logger override lost")
	}
	if cfg.HistoryLimit != 64 || cfg.EventBuffer != 16 || cfg.MaxReconnects != 7 {
		t.Errorf("numeric overrides lost: %+v", cfg)
	}
	if cfg.PollInterval != 10*time.Second || cfg.HandshakeInterval != time.Second ||
		cfg.HandshakeTimeout != 3*time.Second || cfg.ReconnectDelay != time.Second {
		t.Errorf("duration overrides lost: %+v", cfg)
	}
	if !cfg.AutoReconnect {
		t.Error("AutoReconnect override lost")
	}
}

func TestConfigValidation(t *testing.T) {
	_, err := reader.New(reader.Config{Logger: slog.Default()})
	if !errors.Is(err, reader.ErrNoDialer) {
		t.Errorf("expected ErrNoDialer, got: %v", err)
	}
}
