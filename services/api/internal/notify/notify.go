package notify

import "context"

// Subjects published after an event write commits.
const (
	TopicEventCreated = "festival.event.created"
	TopicEventUpdated = "festival.event.updated"
	TopicEventDeleted = "festival.event.deleted"
)

// EventChanged is the payload of every festival.event.* message.
type EventChanged struct {
	EventID string `json:"event_id"`
}

// Publisher sends change notifications. Publish failures are reported to the
// caller, which decides whether they matter.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg any) error
	Close() error
}
