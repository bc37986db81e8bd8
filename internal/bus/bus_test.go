package bus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/config"
	"github.com/smartticket/platform/internal/events"
)

type fakeChannel struct {
	failPublishes int
	published     []amqp.Publishing
	publishedKeys []string
	exchanges     []string
	queues        []string
	bindings      map[string]string
	closed        bool
}

func (c *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	c.exchanges = append(c.exchanges, name+"/"+kind)
	return nil
}

func (c *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	c.queues = append(c.queues, name)
	return amqp.Queue{Name: name}, nil
}

func (c *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	if c.bindings == nil {
		c.bindings = map[string]string{}
	}
	c.bindings[name] = key
	return nil
}

func (c *fakeChannel) Qos(prefetchCount, prefetchSize int, global bool) error { return nil }

func (c *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if c.failPublishes > 0 {
		c.failPublishes--
		return errors.New("broken pipe")
	}
	c.published = append(c.published, msg)
	c.publishedKeys = append(c.publishedKeys, key)
	return nil
}

func (c *fakeChannel) ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	ch := make(chan amqp.Delivery)
	close(ch)
	return ch, nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

type fakeConn struct {
	channel *fakeChannel
	closed  bool
}

func (c *fakeConn) Channel() (amqpChannel, error) { return c.channel, nil }
func (c *fakeConn) IsClosed() bool                { return c.closed }
func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func newTestBus(channel *fakeChannel, dials *int) *Bus {
	return &Bus{
		service: "test",
		cfg: config.BusConfig{
			Exchange:          "tickets",
			ConnectMaxRetries: 1,
			PublishMaxRetries: 3,
		},
		logger: zap.NewNop(),
		dial: func() (amqpConnection, error) {
			if dials != nil {
				*dials++
			}
			return &fakeConn{channel: channel}, nil
		},
	}
}

func testEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(events.EventTicketCategorized, events.TicketCategorized{
		TicketID:        1,
		Department:      "HR",
		ConfidenceScore: 80,
	})
	require.NoError(t, err)
	return env
}

func TestPublishDeliversOnceAfterTransientFailures(t *testing.T) {
	channel := &fakeChannel{failPublishes: 2}
	var dials int
	b := newTestBus(channel, &dials)

	require.NoError(t, b.Publish(context.Background(), testEnvelope(t)))

	require.Len(t, channel.published, 1)
	assert.Equal(t, "ticket.categorized", channel.publishedKeys[0])
	assert.Equal(t, 3, dials, "each failed attempt discards the connection")
}

func TestPublishFailsLoudlyAfterExhaustedRetries(t *testing.T) {
	channel := &fakeChannel{failPublishes: 3}
	b := newTestBus(channel, nil)

	err := b.Publish(context.Background(), testEnvelope(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Empty(t, channel.published)
}

func TestPublishSetsPersistentDeliveryAndMessageID(t *testing.T) {
	channel := &fakeChannel{}
	b := newTestBus(channel, nil)

	env := testEnvelope(t)
	require.NoError(t, b.Publish(context.Background(), env))

	require.Len(t, channel.published, 1)
	msg := channel.published[0]
	assert.Equal(t, uint8(amqp.Persistent), msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, env.EventID, msg.MessageId)

	var sent events.Envelope
	require.NoError(t, json.Unmarshal(msg.Body, &sent))
	assert.Equal(t, env.EventID, sent.EventID)
}

func TestPublishRejectsUnknownEventType(t *testing.T) {
	channel := &fakeChannel{}
	b := newTestBus(channel, nil)

	err := b.Publish(context.Background(), events.Envelope{Type: events.EventType("ticket.vanished")})
	assert.Error(t, err)
	assert.Empty(t, channel.published)
}

func TestDeclareTopologyDeclaresExchangeQueuesAndBindings(t *testing.T) {
	channel := &fakeChannel{}
	b := newTestBus(channel, nil)

	err := b.DeclareTopology(context.Background(), Topology{
		Exchange: "tickets",
		Bindings: []Binding{
			{Queue: "analytics.ticket.created", Key: "ticket.created"},
			{Queue: "analytics.ticket.routed", Key: "ticket.routed"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"tickets/topic"}, channel.exchanges)
	assert.Equal(t, []string{"analytics.ticket.created", "analytics.ticket.routed"}, channel.queues)
	assert.Equal(t, "ticket.created", channel.bindings["analytics.ticket.created"])
	assert.Equal(t, "ticket.routed", channel.bindings["analytics.ticket.routed"])
}

func TestConsumeRedialsAfterDeliveryStreamCloses(t *testing.T) {
	channel := &fakeChannel{}
	var dials int
	b := newTestBus(channel, &dials)

	err := b.Consume(context.Background(), "analytics.ticket.created", func(ctx context.Context, env events.Envelope) error {
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delivery stream closed")
	assert.Equal(t, 1, dials)

	// The retry must come up on a fresh connection, not the dead handle.
	err = b.Consume(context.Background(), "analytics.ticket.created", func(ctx context.Context, env events.Envelope) error {
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 2, dials)
}

func TestEnsureChannelDiscardsStaleChannelWhenConnectionDies(t *testing.T) {
	first := &fakeChannel{}
	second := &fakeChannel{}
	conns := []*fakeConn{{channel: first}, {channel: second}}
	var dials int
	b := &Bus{
		service: "test",
		cfg:     config.BusConfig{Exchange: "tickets", ConnectMaxRetries: 1},
		logger:  zap.NewNop(),
		dial: func() (amqpConnection, error) {
			conn := conns[dials]
			dials++
			return conn, nil
		},
	}

	ch, err := b.ensureChannel(context.Background())
	require.NoError(t, err)
	require.Same(t, first, ch)

	// Broker restart: the connection reports closed while the cached
	// channel pointer is still set.
	conns[0].closed = true

	ch, err = b.ensureChannel(context.Background())
	require.NoError(t, err)
	assert.Same(t, second, ch)
	assert.Equal(t, 2, dials)
}

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error { return nil }

func TestHandleDeliveryAcksOnSuccess(t *testing.T) {
	b := newTestBus(&fakeChannel{}, nil)
	ack := &fakeAcknowledger{}

	env := testEnvelope(t)
	body, err := json.Marshal(env)
	require.NoError(t, err)

	b.handleDelivery(context.Background(), "q", amqp.Delivery{Acknowledger: ack, Body: body},
		func(ctx context.Context, got events.Envelope) error {
			assert.Equal(t, env.EventID, got.EventID)
			return nil
		})

	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestHandleDeliveryDropsWithoutRequeueOnHandlerError(t *testing.T) {
	b := newTestBus(&fakeChannel{}, nil)
	ack := &fakeAcknowledger{}

	body, err := json.Marshal(testEnvelope(t))
	require.NoError(t, err)

	b.handleDelivery(context.Background(), "q", amqp.Delivery{Acknowledger: ack, Body: body},
		func(ctx context.Context, got events.Envelope) error {
			return errors.New("handler blew up")
		})

	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
	assert.False(t, ack.acked)
}

func TestHandleDeliveryDropsUndecodableBody(t *testing.T) {
	b := newTestBus(&fakeChannel{}, nil)
	ack := &fakeAcknowledger{}

	called := false
	b.handleDelivery(context.Background(), "q", amqp.Delivery{Acknowledger: ack, Body: []byte("not json")},
		func(ctx context.Context, got events.Envelope) error {
			called = true
			return nil
		})

	assert.False(t, called)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}
