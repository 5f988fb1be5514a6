// Package pubsub provides the ephemeral progress channel used by import
// tasks. Publishing is fire-and-forget: events sent while nobody listens
// are lost, there is no queue or replay.
package pubsub

import (
	"context"
	"time"
)

// Broker is a named-topic publish/subscribe abstraction.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (Subscription, error)
}

// Subscription is a live subscription to one channel. Callers must Close
// it when done so the underlying transport resources are released.
type Subscription interface {
	// Receive waits up to timeout for the next message. It returns
	// (nil, nil) when no message arrived within the window.
	Receive(ctx context.Context, timeout time.Duration) ([]byte, error)
	Close() error
}

// TaskChannel returns the progress channel name for a task identifier.
func TaskChannel(taskID string) string { return "task:" + taskID }
