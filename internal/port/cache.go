package port

import "context"

type IdempotencyStore interface {
	// SetIdempotency claims a key for idempotency check, returns false if
	// already claimed.
	SetIdempotency(ctx context.Context, key string) (bool, error)

	// ReleaseIdempotency frees a claimed key so the same request can be
	// retried after a failure that produced no order.
	ReleaseIdempotency(ctx context.Context, key string) error
}
