package worker

import (
	"github.com/smartticket/platform/internal/bus"
	"github.com/smartticket/platform/internal/events"
)

// Queue names, one per consuming service and routing key, so every
// subscriber gets its own copy of the stream.
const (
	QueueCategorizationCreated = "categorization.ticket.created"
	QueueRoutingCategorized    = "routing.ticket.categorized"
	QueueAnalyticsCreated      = "analytics.ticket.created"
	QueueAnalyticsCategorized  = "analytics.ticket.categorized"
	QueueAnalyticsRouted       = "analytics.ticket.routed"
	QueueAnalyticsStatus       = "analytics.ticket.status.updated"
)

// PublisherTopology declares the exchange without any queues, for
// services that only publish.
func PublisherTopology(exchange string) bus.Topology {
	return bus.Topology{Exchange: exchange}
}

// CategorizationTopology binds the queue feeding the categorizer.
func CategorizationTopology(exchange string) bus.Topology {
	return bus.Topology{
		Exchange: exchange,
		Bindings: []bus.Binding{
			{Queue: QueueCategorizationCreated, Key: events.KeyTicketCreated},
		},
	}
}

// RoutingTopology binds the queue feeding the routing recorder.
func RoutingTopology(exchange string) bus.Topology {
	return bus.Topology{
		Exchange: exchange,
		Bindings: []bus.Binding{
			{Queue: QueueRoutingCategorized, Key: events.KeyTicketCategorized},
		},
	}
}

// AnalyticsTopology binds the queues feeding the analytics log.
func AnalyticsTopology(exchange string) bus.Topology {
	return bus.Topology{
		Exchange: exchange,
		Bindings: []bus.Binding{
			{Queue: QueueAnalyticsCreated, Key: events.KeyTicketCreated},
			{Queue: QueueAnalyticsCategorized, Key: events.KeyTicketCategorized},
			{Queue: QueueAnalyticsRouted, Key: events.KeyTicketRouted},
			{Queue: QueueAnalyticsStatus, Key: events.KeyStatusUpdated},
		},
	}
}
