package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/smartticket/platform/internal/bus"
	"github.com/smartticket/platform/internal/events"
	"github.com/smartticket/platform/internal/observability"
	"github.com/smartticket/platform/internal/service"
)

const consumeRestartDelay = 5 * time.Second

// Consumer binds one queue to a handler.
type Consumer struct {
	Queue   string
	Handler events.Handler
}

// Run drives all consumers until ctx is cancelled. A consume loop that
// dies with its connection is restarted after a short delay; the bus
// redials underneath.
func Run(ctx context.Context, b *bus.Bus, svc string, consumers []Consumer, logger *zap.Logger) {
	for _, consumer := range consumers {
		go runConsumer(ctx, b, svc, consumer, logger)
	}
}

func runConsumer(ctx context.Context, b *bus.Bus, svc string, consumer Consumer, logger *zap.Logger) {
	handler := recordOutcome(svc, consumer.Queue, consumer.Handler)
	for {
		err := b.Consume(ctx, consumer.Queue, handler)
		if ctx.Err() != nil {
			return
		}
		logger.Warn("consumer stopped; restarting",
			zap.String("queue", consumer.Queue),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(consumeRestartDelay):
		}
	}
}

// recordOutcome classifies every delivery for the consumption metric.
// Duplicate deliveries are acknowledged without counting as failures.
func recordOutcome(svc, queue string, handler events.Handler) events.Handler {
	return func(ctx context.Context, env events.Envelope) error {
		err := handler(ctx, env)
		switch {
		case err == nil:
			observability.RecordEventConsumed(svc, queue, "ok")
			return nil
		case errors.Is(err, service.ErrDuplicateEvent):
			observability.RecordEventConsumed(svc, queue, "duplicate")
			return nil
		default:
			observability.RecordEventConsumed(svc, queue, "dropped")
			return err
		}
	}
}

// typedHandler decodes the envelope payload and hands the concrete
// variant to fn. A payload of the wrong variant is a permanent error.
func typedHandler[P events.Payload](fn func(context.Context, P) error) events.Handler {
	return func(ctx context.Context, env events.Envelope) error {
		payload, err := env.DecodePayload()
		if err != nil {
			return err
		}
		typed, ok := payload.(P)
		if !ok {
			return fmt.Errorf("unexpected %T payload on %s event", payload, env.Type)
		}
		return fn(ctx, typed)
	}
}

// CategorizationConsumers feed created tickets to the categorizer.
func CategorizationConsumers(s *service.CategorizationService) []Consumer {
	return []Consumer{
		{Queue: QueueCategorizationCreated, Handler: typedHandler(s.HandleTicketCreated)},
	}
}

// RoutingConsumers feed categorization results to the routing
// recorder.
func RoutingConsumers(s *service.RoutingService) []Consumer {
	return []Consumer{
		{Queue: QueueRoutingCategorized, Handler: typedHandler(s.HandleTicketCategorized)},
	}
}

// AnalyticsConsumers feed every lifecycle event to the analytics log.
func AnalyticsConsumers(s *service.AnalyticsService) []Consumer {
	return []Consumer{
		{Queue: QueueAnalyticsCreated, Handler: s.HandleEvent},
		{Queue: QueueAnalyticsCategorized, Handler: s.HandleEvent},
		{Queue: QueueAnalyticsRouted, Handler: s.HandleEvent},
		{Queue: QueueAnalyticsStatus, Handler: s.HandleEvent},
	}
}
