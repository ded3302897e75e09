package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"

	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/config"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/metrics"
	"github.com/cinnamoroll16/reforestadmin-backend-sub000/internal/telemetry"
)

const subscribeQoS = byte(1)

// ReadingHandler processes one decoded and validated reading.
type ReadingHandler func(ctx context.Context, reading telemetry.Reading) error

// ReadingSource is what features need to attach to the sensor stream.
type ReadingSource interface {
	SetMessageHandler(handler ReadingHandler)
}

// Subscriber receives sensor readings from the broker and hands them to the
// registered handler.
type Subscriber struct {
	client    paho.Client
	cfg       config.Config
	logger    *slog.Logger
	mu        sync.RWMutex
	connected bool
	handler   ReadingHandler

	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewSubscriber(cfg config.Config, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Subscriber{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	opts := clientOptions(cfg, cfg.MQTTClientID)

	// Subscribing from the connect handler also restores the subscription after
	// an automatic reconnect.
	opts.SetOnConnectHandler(func(_ paho.Client) {
		s.setConnected(true)
		logger.Info("mqtt connected", "broker", cfg.MQTTBroker, "port", cfg.MQTTPort)
		go func() {
			if err := s.subscribe(); err != nil {
				logger.Error("mqtt subscribe failed", "topic", cfg.MQTTTopic, "error", err)
			}
		}()
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		s.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})

	s.client = paho.NewClient(opts)
	return s
}

func clientOptions(cfg config.Config, clientID string) *paho.ClientOptions {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTTBroker, cfg.MQTTPort))
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)

	opts.SetKeepAlive(30 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	return opts
}

// SetMessageHandler must be called before Connect; the broker may deliver
// queued messages right after CONNACK.
func (s *Subscriber) SetMessageHandler(handler ReadingHandler) {
	s.mu.Lock()
	s.handler = handler
	s.mu.Unlock()
}

// Connect waits for the first broker connection. It returns early when ctx is
// done or the subscriber has been stopped.
func (s *Subscriber) Connect(ctx context.Context) error {
	select {
	case <-s.stopCh:
		return fmt.Errorf("subscriber stopped")
	default:
	}

	if s.IsConnected() {
		return nil
	}

	token := s.client.Connect()

	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("mqtt connect: %w", err)
			}
			return nil
		}

		select {
		case <-ctx.Done():
			s.client.Disconnect(0)
			return ctx.Err()
		case <-s.stopCh:
			s.client.Disconnect(0)
			return fmt.Errorf("subscriber stopped")
		default:
		}
	}
}

func (s *Subscriber) subscribe() error {
	topic := s.cfg.MQTTTopic
	token := s.client.Subscribe(topic, subscribeQoS, func(_ paho.Client, msg paho.Message) {
		s.handleMessage(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("subscribe timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}

	s.logger.Info("subscribed to mqtt topic", "topic", topic, "qos", subscribeQoS)
	return nil
}

func (s *Subscriber) handleMessage(topic string, payload []byte) {
	s.logger.Debug("received mqtt message", "topic", topic, "size", len(payload))

	var reading telemetry.Reading
	if err := json.Unmarshal(payload, &reading); err != nil {
		metrics.RecordMQTTMessage(metrics.MQTTDecode)
		s.logger.Warn("failed to parse sensor reading",
			"topic", topic,
			"error", err,
			"payload", string(payload),
		)
		return
	}

	if err := telemetry.Validate(reading); err != nil {
		metrics.RecordMQTTMessage(metrics.MQTTInvalid)
		s.logger.Warn("invalid sensor reading",
			"topic", topic,
			"station_id", reading.StationID,
			"error", err,
		)
		return
	}

	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()
	if handler == nil {
		s.logger.Debug("no reading handler attached", "topic", topic)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := handler(ctx, reading); err != nil {
		metrics.RecordMQTTMessage(metrics.MQTTFailed)
		s.logger.Error("reading handler failed",
			"topic", topic,
			"station_id", reading.StationID,
			"error", err,
		)
		return
	}

	metrics.RecordMQTTMessage(metrics.MQTTAccepted)
	s.logger.Debug("processed sensor reading",
		"station_id", reading.StationID,
		"timestamp", reading.Timestamp,
	)
}

// IsConnected reports whether the broker connection is up.
func (s *Subscriber) IsConnected() bool {
	s.mu.RLock()
	connected := s.connected
	s.mu.RUnlock()
	return connected && s.client.IsConnected()
}

// Disconnect stops the subscriber. Idempotent; Connect fails afterwards.
func (s *Subscriber) Disconnect() {
	s.stopOnce.Do(func() { close(s.stopCh) })

	if s.client != nil && s.IsConnected() {
		token := s.client.Unsubscribe(s.cfg.MQTTTopic)
		token.WaitTimeout(2 * time.Second)
	}

	// paho quiesces in-flight work for up to 250ms; not under s.mu.
	if s.client != nil {
		s.client.Disconnect(250)
	}

	s.setConnected(false)
	s.logger.Info("mqtt subscriber disconnected")
}

func (s *Subscriber) setConnected(v bool) {
	s.mu.Lock()
	s.connected = v
	s.mu.Unlock()
}
