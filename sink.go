package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/redis/go-redis/v9"

	"scanworks.io/rfid/tslgw/reader"
)

// Sink receives every tag sighting for delivery to an external system.
type Sink interface {
	PublishTag(ctx context.Context, ev reader.Event) error
	Close() error
}

// tagMessage is the wire format shared by all sinks.
type tagMessage struct {
	Tag   string    `json:"tag"`
	Count int       `json:"count"`
	Seen  time.Time `json:"seen"`
}

func encodeTag(ev reader.Event) ([]byte, error) {
	return json.Marshal(tagMessage{Tag: ev.Tag, Count: ev.Count, Seen: time.Now().UTC()})
}

// mqttSink publishes tag sightings to an MQTT topic.
type mqttSink struct {
	client mqtt.Client
	topic  string
}

func newMQTTSink(cfg *Config) (*mqttSink, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.WaitTimeout(10*time.Second) && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return &mqttSink{client: client, topic: cfg.MQTTTopic}, nil
}

func (s *mqttSink) PublishTag(_ context.Context, ev reader.Event) error {
	payload, err := encodeTag(ev)
	if err != nil {
		return err
	}
	token := s.client.Publish(s.topic, 0, false, payload)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return fmt.Errorf("mqtt publish: %w", token.Error())
	}
	return nil
}

func (s *mqttSink) Close() error {
	s.client.Disconnect(250)
	return nil
}

// redisSink publishes tag sightings on a channel and keeps a capped
// list of the most recent ones.
type redisSink struct {
	client  *redis.Client
	channel string
}

const redisRecentKey = "rfid:tags:recent"

func newRedisSink(ctx context.Context, cfg *Config) (*redisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisSink{client: client, channel: cfg.RedisChannel}, nil
}

func (s *redisSink) PublishTag(ctx context.Context, ev reader.Event) error {
	payload, err := encodeTag(ev)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Publish(ctx, s.channel, payload)
	pipe.LPush(ctx, redisRecentKey, payload)
	pipe.LTrim(ctx, redisRecentKey, 0, 999)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (s *redisSink) Close() error {
	return s.client.Close()
}

// openSinks builds the sinks enabled by the configuration. A sink that
// fails to connect is logged and skipped rather than aborting startup.
func openSinks(ctx context.Context, cfg *Config, logger *slog.Logger) []Sink {
	var sinks []Sink
	if cfg.MQTTBroker != "" {
		s, err := newMQTTSink(cfg)
		if err != nil {
			logger.Error("MQTT sink unavailable", "broker", cfg.MQTTBroker, "error", err)
		} else {
			logger.Info("MQTT sink enabled", "broker", cfg.MQTTBroker, "topic", cfg.MQTTTopic)
			sinks = append(sinks, s)
		}
	}
	if cfg.RedisAddr != "" {
		s, err := newRedisSink(ctx, cfg)
		if err != nil {
			logger.Error("Redis sink unavailable", "addr", cfg.RedisAddr, "error", err)
		} else {
			logger.Info("Redis sink enabled", "addr", cfg.RedisAddr, "channel", cfg.RedisChannel)
			sinks = append(sinks, s)
		}
	}
	return sinks
}
