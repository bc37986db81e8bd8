package bus

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Binding attaches one durable queue to the exchange under a routing
// key pattern.
type Binding struct {
	Queue string
	Key   string
}

// Topology describes what a service needs declared before it can
// publish or consume. Declarations are idempotent.
type Topology struct {
	Exchange string
	Bindings []Binding
}

// DeclareTopology declares the durable topic exchange and every queue
// binding. Publisher-only services pass no bindings.
func (b *Bus) DeclareTopology(ctx context.Context, t Topology) error {
	ch, err := b.ensureChannel(ctx)
	if err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(t.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("bus: declare exchange %s: %w", t.Exchange, err)
	}
	b.logger.Info("declared exchange", zap.String("exchange", t.Exchange))

	for _, binding := range t.Bindings {
		if _, err := ch.QueueDeclare(binding.Queue, true, false, false, false, nil); err != nil {
			return fmt.Errorf("bus: declare queue %s: %w", binding.Queue, err)
		}
		if err := ch.QueueBind(binding.Queue, binding.Key, t.Exchange, false, nil); err != nil {
			return fmt.Errorf("bus: bind queue %s to %s: %w", binding.Queue, binding.Key, err)
		}
		b.logger.Info("bound queue",
			zap.String("queue", binding.Queue),
			zap.String("routing_key", binding.Key))
	}
	return nil
}
