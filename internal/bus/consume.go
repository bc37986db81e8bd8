package bus

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/events"
)

// Consume processes deliveries from queue one at a time until ctx is
// cancelled or the channel closes. A dead stream discards the handle
// so the caller's next attempt redials. Handler or decode failures
// drop the message without requeue; redelivering a message that fails
// deterministically would loop forever.
func (b *Bus) Consume(ctx context.Context, queue string, handler events.Handler) error {
	ch, err := b.ensureChannel(ctx)
	if err != nil {
		return err
	}
	if err := ch.Qos(1, 0, false); err != nil {
		b.drop()
		return fmt.Errorf("bus: set qos for %s: %w", queue, err)
	}

	deliveries, err := ch.ConsumeWithContext(ctx, queue, "", false, false, false, false, nil)
	if err != nil {
		b.drop()
		return fmt.Errorf("bus: consume %s: %w", queue, err)
	}
	b.logger.Info("consuming", zap.String("queue", queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				b.drop()
				return fmt.Errorf("bus: delivery stream closed for queue %s", queue)
			}
			b.handleDelivery(ctx, queue, d, handler)
		}
	}
}

func (b *Bus) handleDelivery(ctx context.Context, queue string, d amqp.Delivery, handler events.Handler) {
	var env events.Envelope
	if err := json.Unmarshal(d.Body, &env); err != nil {
		b.logger.Error("dropping undecodable message",
			zap.String("queue", queue),
			zap.ByteString("body", d.Body),
			zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	if err := handler(ctx, env); err != nil {
		b.logger.Error("handler failed; dropping message",
			zap.String("queue", queue),
			zap.String("event_id", env.EventID),
			zap.String("event_type", string(env.Type)),
			zap.Error(err))
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
