package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/config"
)

const (
	mqttConnectTimeout = 10 * time.Second
	mqttPublishTimeout = 5 * time.Second
)

// Channels under a user's topic
const (
	ChannelNotifications = "notifications"
	ChannelInvoices      = "invoices"
)

// Pusher sends realtime messages to a user's devices
type Pusher interface {
	Push(ctx context.Context, userID uuid.UUID, channel string, payload interface{}) error
}

// MQTTPusher publishes to <prefix>/<userID>/<channel>
type MQTTPusher struct {
	client mqtt.Client
	prefix string
	qos    byte
}

// NewMQTTPusher connects to the configured broker.
func NewMQTTPusher(cfg config.MQTTConfig) (*MQTTPusher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8]))
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(mqttConnectTimeout)
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.Info().Str("broker", cfg.Broker).Msg("MQTT client connected")
	})
	opts.SetConnectionLostHandler(func(client mqtt.Client, err error) {
		log.Error().Err(err).Str("broker", cfg.Broker).Msg("MQTT connection lost")
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("connect mqtt %s: timeout", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect mqtt %s: %w", cfg.Broker, err)
	}

	return NewMQTTPusherWithClient(client, cfg), nil
}

// NewMQTTPusherWithClient wraps an existing client.
func NewMQTTPusherWithClient(client mqtt.Client, cfg config.MQTTConfig) *MQTTPusher {
	return &MQTTPusher{client: client, prefix: cfg.TopicPrefix, qos: cfg.QoS}
}

// Topic returns the topic for a user's channel.
func (p *MQTTPusher) Topic(userID uuid.UUID, channel string) string {
	return fmt.Sprintf("%s/%s/%s", p.prefix, userID, channel)
}

func (p *MQTTPusher) Push(ctx context.Context, userID uuid.UUID, channel string, payload interface{}) error {
	if !p.client.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	topic := p.Topic(userID, channel)
	token := p.client.Publish(topic, p.qos, false, data)
	if !token.WaitTimeout(mqttPublishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPusher) Close() {
	p.client.Disconnect(250)
}
