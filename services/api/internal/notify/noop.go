package notify

import "context"

// NoopPublisher drops every message (used when NATS is not configured).
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, msg any) error {
	return nil
}

func (n *NoopPublisher) Close() error {
	return nil
}
