package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scanworks.io/rfid/tslgw/reader"
)

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the RFID reader")
	flag.Int("baud-rate", 115200, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Int("history-limit", 500, "Per-tag signal strength history limit")
	flag.Duration("poll-interval", 10*time.Second, "Version/battery poll period (0 disables)")
	flag.String("mqtt-broker", "", "MQTT broker URL for the tag sink (empty disables)")
	flag.String("mqtt-topic", "rfid/tags", "MQTT topic for tag sightings")
	flag.String("redis-addr", "", "Redis address for the tag sink (empty disables)")
	configPath := flag.String("config", "", "Path to a YAML configuration file")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configPath), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	readerConfig, err := reader.NewConfigBuilder().
		WithLogger(logger.With("component", "reader")).
		WithHistoryLimit(config.HistoryLimit).
		WithPollInterval(config.PollInterval).
		WithAutoReconnect(true).
		WithReconnectDelay(config.ReconnectDelay).
		WithDialer(reader.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
			Kick:     true,
		}).
		Build()
	if err != nil {
		logger.Error("Failed to create reader config", "error", err)
		os.Exit(1)
	}

	rdr, err := reader.New(readerConfig)
	if err != nil {
		logger.Error("Failed to create reader", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Starting RFID gateway", "serial_port", config.SerialPort, "baud_rate", config.BaudRate)

	go func() {
		if err := rdr.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error("Reader loop exited", "error", err)
			os.Exit(1)
		}
	}()

	hub := newHub(logger.With("component", "hub"))
	go hub.run()

	sinks := openSinks(ctx, config, logger)
	defer func() {
		for _, s := range sinks {
			s.Close()
		}
	}()

	go pumpEvents(ctx, rdr, hub, sinks, logger.With("component", "events"))

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger: logger.With("component", "server"),
			Reader: rdr,
			Hub:    hub,
		},
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	logger.Info("Closing reader connection")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		os.Exit(1)
	}
}

// pumpEvents drains the reader's event stream, updating metrics,
// fanning events out to websocket clients and forwarding tag sightings
// to the configured sinks.
func pumpEvents(ctx context.Context, rdr *reader.Reader, hub *Hub, sinks []Sink, logger *slog.Logger) {
	connectedOnce := false
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-rdr.Events():
			switch ev.Kind {
			case reader.EventConnected:
				metricConnected.Set(1)
				if connectedOnce {
					metricReconnects.Inc()
				}
				connectedOnce = true
			case reader.EventDisconnected:
				metricConnected.Set(0)
			case reader.EventTransaction:
				outcome := "ok"
				if !ev.OK {
					outcome = "error"
				}
				metricTransactions.WithLabelValues(ev.Command, outcome).Inc()
			case reader.EventLine:
				metricLines.Inc()
			case reader.EventTag:
				metricTagReads.Inc()
				metricUniqueTags.Set(float64(rdr.State().Tags.Len()))
				for _, s := range sinks {
					if err := s.PublishTag(ctx, ev); err != nil {
						logger.Warn("Tag sink publish failed", "tag", ev.Tag, "error", err)
					}
				}
			}
			hub.Broadcast(ev)
		}
	}
}
