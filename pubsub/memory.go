package pubsub

import (
	"context"
	"sync"
	"time"
)

const subscriberBuffer = 64

// MemoryBroker is an in-process Broker used in tests and single-node
// setups. Semantics match the Redis transport: slow or absent
// subscribers drop messages.
type MemoryBroker struct {
	mu   sync.RWMutex
	subs map[string][]*memorySubscription
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: make(map[string][]*memorySubscription)}
}

func (b *MemoryBroker) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs[channel] {
		select {
		case sub.ch <- payload:
		default:
			// Subscriber buffer full: drop, same as a lost pub/sub message.
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, channel string) (Subscription, error) {
	sub := &memorySubscription{
		broker:  b,
		channel: channel,
		ch:      make(chan []byte, subscriberBuffer),
	}
	b.mu.Lock()
	b.subs[channel] = append(b.subs[channel], sub)
	b.mu.Unlock()
	return sub, nil
}

type memorySubscription struct {
	broker  *MemoryBroker
	channel string
	ch      chan []byte

	closeOnce sync.Once
}

func (s *memorySubscription) Receive(ctx context.Context, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case payload, ok := <-s.ch:
		if !ok {
			return nil, nil
		}
		return payload, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *memorySubscription) Close() error {
	s.closeOnce.Do(func() {
		b := s.broker
		b.mu.Lock()
		subs := b.subs[s.channel]
		for i, sub := range subs {
			if sub == s {
				b.subs[s.channel] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subs[s.channel]) == 0 {
			delete(b.subs, s.channel)
		}
		b.mu.Unlock()
	})
	return nil
}
