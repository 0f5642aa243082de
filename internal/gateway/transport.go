package gateway

import (
	"context"
)

// Transport moves raw envelopes between this service and its callers. One
// queue in, one queue out; payloads are opaque JSON at this layer.
type Transport interface {
	// Receive blocks until an inbound envelope arrives or ctx is done.
	Receive(ctx context.Context) ([]byte, error)

	// Respond publishes one response envelope.
	Respond(ctx context.Context, payload []byte) error

	Close() error
}
