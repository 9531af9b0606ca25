package port

import "context"

type EventPublisher interface {
	// Publish sends an event body under a routing key. Publishing is
	// best-effort: it happens after commit and failures never roll back the
	// committed unit of work.
	Publish(ctx context.Context, key string, body []byte) error
}
