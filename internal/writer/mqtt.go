// internal/writer/mqtt.go
package writer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/rover-logger/internal/config"
	"github.com/tamzrod/rover-logger/internal/poller"
)

const (
	mqttConnectTimeout = 5 * time.Second
	mqttPublishTimeout = 5 * time.Second
	mqttQuiesceMs      = 250
)

// publisher is the part of mqtt.Client the sink uses.
type publisher interface {
	IsConnected() bool
	Connect() mqtt.Token
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// mqttSink publishes each snapshot as a JSON record.
// A broker keeps no history, so pruning is a no-op.
type mqttSink struct {
	cfg    cfg.MQTTConfig
	client publisher
	log    zerolog.Logger
}

func newMQTTSink(c cfg.MQTTConfig, log zerolog.Logger) *mqttSink {
	log = log.With().Str("sink", "mqtt").Str("broker", c.Broker).Logger()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(c.Broker)
	opts.SetClientID(c.ClientID)
	if c.Username != "" {
		opts.SetUsername(c.Username)
		opts.SetPassword(c.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info().Msg("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	})

	return &mqttSink{cfg: c, client: mqtt.NewClient(opts), log: log}
}

// Init starts the connection. The client keeps retrying in the background,
// so a broker that is not up yet is logged rather than fatal.
func (s *mqttSink) Init(context.Context) error {
	if s.client.IsConnected() {
		return nil
	}
	tok := s.client.Connect()
	if !tok.WaitTimeout(mqttConnectTimeout) {
		s.log.Warn().Msg("mqtt broker not reachable yet, retrying in background")
		return nil
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt: connect: %w", err)
	}
	return nil
}

func (s *mqttSink) Append(_ context.Context, res poller.PollResult) error {
	if !s.client.IsConnected() {
		return errors.New("mqtt: not connected")
	}

	b, err := json.Marshal(NewRecord(res))
	if err != nil {
		return fmt.Errorf("mqtt: marshal: %w", err)
	}

	tok := s.client.Publish(s.cfg.Topic, s.cfg.QoS, s.cfg.Retained, b)
	if !tok.WaitTimeout(mqttPublishTimeout) {
		return errors.New("mqtt: publish timed out")
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt: publish: %w", err)
	}
	return nil
}

func (s *mqttSink) DeleteRecordsOlderThan(context.Context, int) error { return nil }

func (s *mqttSink) Close() error {
	s.client.Disconnect(mqttQuiesceMs)
	return nil
}
