package reader

import (
	"log/slog"
	"time"
)

// Config controls a Reader session.
type Config struct {
	// Dialer establishes (and re-establishes) the device connection.
	Dialer Dialer
	// Logger receives protocol-level diagnostics. Defaults to slog.Default.
	Logger *slog.Logger

	// HistoryLimit bounds the per-tag strength history.
	HistoryLimit int
	// PollInterval is the period of the silent .vr/.bl status poll.
	// Zero disables routine polling.
	PollInterval time.Duration

	// HandshakeInterval is the rapid re-poll period of the version query
	// issued right after connecting.
	HandshakeInterval time.Duration
	// HandshakeTimeout bounds the whole post-connect handshake. When it
	// elapses without a version response the session proceeds anyway.
	HandshakeTimeout time.Duration

	// AutoReconnect re-dials after a disconnect instead of returning
	// from Run.
	AutoReconnect bool
	// ReconnectDelay is the pause between reconnect attempts.
	ReconnectDelay time.Duration
	// MaxReconnects caps consecutive failed attempts; zero means retry
	// forever.
	MaxReconnects int

	// EventBuffer sizes the events channel. When the consumer falls
	// behind, further events are dropped rather than blocking the loop.
	EventBuffer int
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 500
	}
	if c.HandshakeInterval == 0 {
		c.HandshakeInterval = 250 * time.Millisecond
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = 5 * time.Second
	}
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 2 * time.Second
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = 128
	}
}

// ConfigBuilder assembles a Config fluently.
type ConfigBuilder struct {
	config Config
}

// NewConfigBuilder returns a builder pre-loaded with nothing; defaults
// are applied on Build.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.Dialer = d
	return b
}

func (b *ConfigBuilder) WithLogger(l *slog.Logger) *ConfigBuilder {
	b.config.Logger = l
	return b
}

func (b *ConfigBuilder) WithHistoryLimit(n int) *ConfigBuilder {
	b.config.HistoryLimit = n
	return b
}

func (b *ConfigBuilder) WithPollInterval(d time.Duration) *ConfigBuilder {
	b.config.PollInterval = d
	return b
}

func (b *ConfigBuilder) WithHandshakeInterval(d time.Duration) *ConfigBuilder {
	b.config.HandshakeInterval = d
	return b
}

func (b *ConfigBuilder) WithHandshakeTimeout(d time.Duration) *ConfigBuilder {
	b.config.HandshakeTimeout = d
	return b
}

func (b *ConfigBuilder) WithAutoReconnect(on bool) *ConfigBuilder {
	b.config.AutoReconnect = on
	return b
}

func (b *ConfigBuilder) WithReconnectDelay(d time.Duration) *ConfigBuilder {
	b.config.ReconnectDelay = d
	return b
}

func (b *ConfigBuilder) WithMaxReconnects(n int) *ConfigBuilder {
	b.config.MaxReconnects = n
	return b
}

func (b *ConfigBuilder) WithEventBuffer(n int) *ConfigBuilder {
	b.config.EventBuffer = n
	return b
}

// Build validates the configuration and fills in defaults.
func (b *ConfigBuilder) Build() (Config, error) {
	if err := b.config.validate(); err != nil {
		return Config{}, err
	}
	cfg := b.config
	cfg.setDefaults()
	return cfg, nil
}
