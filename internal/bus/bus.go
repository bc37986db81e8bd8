package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/config"
	"github.com/smartticket/platform/internal/events"
	"github.com/smartticket/platform/internal/observability"
)

const heartbeatInterval = 600 * time.Second

// amqpConnection and amqpChannel mirror the subset of the AMQP client
// the bus touches. Tests substitute both.
type amqpConnection interface {
	Channel() (amqpChannel, error)
	IsClosed() bool
	Close() error
}

type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

type realConnection struct {
	conn *amqp.Connection
}

func (c realConnection) Channel() (amqpChannel, error) {
	return c.conn.Channel()
}

func (c realConnection) IsClosed() bool { return c.conn.IsClosed() }
func (c realConnection) Close() error  { return c.conn.Close() }

// Bus is the explicit handle to the tickets exchange. It owns one
// connection and one channel, redialing transparently when either
// drops. Safe for concurrent use.
type Bus struct {
	service string
	cfg     config.BusConfig
	logger  *zap.Logger
	dial    func() (amqpConnection, error)

	mu      sync.Mutex
	conn    amqpConnection
	channel amqpChannel
}

// Dial connects to the broker, retrying ConnectMaxRetries times with a
// fixed delay between attempts.
func Dial(ctx context.Context, service string, cfg config.BusConfig, logger *zap.Logger) (*Bus, error) {
	b := &Bus{
		service: service,
		cfg:     cfg,
		logger:  logger,
		dial: func() (amqpConnection, error) {
			conn, err := amqp.DialConfig(cfg.URL, amqp.Config{Heartbeat: heartbeatInterval})
			if err != nil {
				return nil, err
			}
			return realConnection{conn: conn}, nil
		},
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.connectLocked(ctx); err != nil {
		return nil, err
	}
	return b, nil
}

// connectLocked dials until a connection and channel are open or the
// attempts run out. Callers hold b.mu.
func (b *Bus) connectLocked(ctx context.Context) error {
	retries := b.cfg.ConnectMaxRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		conn, err := b.dial()
		if err == nil {
			ch, chErr := conn.Channel()
			if chErr == nil {
				b.conn = conn
				b.channel = ch
				b.logger.Info("connected to rabbitmq")
				return nil
			}
			_ = conn.Close()
			err = chErr
		}

		lastErr = err
		b.logger.Warn("rabbitmq connection attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", retries),
			zap.Error(err))

		if attempt < retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.cfg.ConnectRetryDelay()):
			}
		}
	}
	return fmt.Errorf("bus: failed to connect to rabbitmq after %d attempts: %w", retries, lastErr)
}

// ensureChannel returns an open channel, reconnecting as needed.
func (b *Bus) ensureChannel(ctx context.Context) (amqpChannel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.conn != nil && b.conn.IsClosed() {
		b.closeLocked()
	}
	if b.channel != nil {
		return b.channel, nil
	}
	if b.conn != nil {
		ch, err := b.conn.Channel()
		if err == nil {
			b.channel = ch
			return b.channel, nil
		}
		b.logger.Warn("failed to reopen channel; reconnecting", zap.Error(err))
		b.closeLocked()
	}
	if err := b.connectLocked(ctx); err != nil {
		return nil, err
	}
	return b.channel, nil
}

// drop discards the connection and channel so the next use redials.
func (b *Bus) drop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeLocked()
}

func (b *Bus) closeLocked() {
	if b.conn != nil && !b.conn.IsClosed() {
		_ = b.conn.Close()
	}
	b.conn = nil
	b.channel = nil
}

// Publish sends an envelope to the exchange under the routing key for
// its type. Transport failures force a reconnect and are retried up to
// PublishMaxRetries times with a short growing backoff; the last error
// propagates so callers decide whether loss is tolerable.
func (b *Bus) Publish(ctx context.Context, env events.Envelope) error {
	key, err := events.RoutingKey(env.Type)
	if err != nil {
		return err
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("bus: marshal envelope %s: %w", env.EventID, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.EventID,
		Timestamp:    env.OccurredAt,
		Body:         body,
	}

	retries := b.cfg.PublishMaxRetries
	if retries < 1 {
		retries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		ch, err := b.ensureChannel(ctx)
		if err == nil {
			err = ch.PublishWithContext(ctx, b.cfg.Exchange, key, false, false, msg)
			if err == nil {
				observability.RecordEventPublished(b.service, string(env.Type), nil)
				b.logger.Debug("published event",
					zap.String("event_id", env.EventID),
					zap.String("routing_key", key))
				return nil
			}
		}

		lastErr = err
		b.logger.Warn("publish attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", retries),
			zap.String("routing_key", key),
			zap.Error(err))
		b.drop()

		if attempt < retries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}

	observability.RecordEventPublished(b.service, string(env.Type), lastErr)
	return fmt.Errorf("bus: failed to publish %s after %d attempts: %w", key, retries, lastErr)
}

// Close shuts the connection down.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn != nil {
		b.closeLocked()
		b.logger.Info("disconnected from rabbitmq")
	}
}
