package resource

import "context"

// Bus broadcasts invalidation prefixes across gateway replicas. A
// mutation that invalidates keys locally also publishes the prefixes so
// other replicas drop their own last-known-good copies.
type Bus interface {
	// Publish broadcasts one invalidated key prefix.
	Publish(ctx context.Context, prefix Key) error
	// Close stops the subscribe loop.
	Close() error
}

// NopBus is the single-replica bus: publishing does nothing.
type NopBus struct{}

// Publish implements Bus.
func (NopBus) Publish(context.Context, Key) error { return nil }

// Close implements Bus.
func (NopBus) Close() error { return nil }
