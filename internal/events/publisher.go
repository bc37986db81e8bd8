package events

import "context"

// Handler processes one delivered envelope. A non-nil error tells the
// consumer to drop the message without requeue.
type Handler func(ctx context.Context, env Envelope) error

// Publisher interface allows event publication without binding
// services to the broker implementation.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}
