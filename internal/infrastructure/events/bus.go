// Package events carries hub notifications to the presentation layer.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xaionaro-go/eventbus"

	"github.com/bnema/webhub/internal/application/port"
	"github.com/bnema/webhub/internal/logging"
)

const (
	subscriberBuffer = 8
	deliverTimeout   = 5 * time.Second
)

// topicBus is the subset of the eventbus API used here.
type topicBus interface {
	Publish(topic string, args ...interface{})
	SubscribeAsync(topic string, fn interface{}, transactional bool) error
	Unsubscribe(topic string, handler interface{}) error
	WaitAsync()
}

// Bus publishes switch-webapp events on an eventbus topic and fans them out
// to channel subscribers.
type Bus struct {
	bus topicBus
	ctx context.Context

	mu     sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64
	hooked bool
	closed bool
}

type subscription struct {
	mu     sync.Mutex
	ch     chan string
	closed bool
}

var _ port.EventPublisher = (*Bus)(nil)

// New creates an event bus.
func New(ctx context.Context) *Bus {
	return &Bus{
		bus:  eventbus.New(),
		ctx:  logging.WithComponent(context.WithoutCancel(ctx), "events"),
		subs: make(map[uint64]*subscription),
	}
}

// PublishSwitchWebApp announces that a shortcut resolved to webappID.
func (b *Bus) PublishSwitchWebApp(ctx context.Context, webappID string) {
	logging.FromContext(ctx).Debug().Str("topic", port.TopicSwitchWebApp).Str("webapp_id", webappID).Msg("publishing event")
	b.bus.Publish(port.TopicSwitchWebApp, webappID)
}

// SubscribeSwitchWebApp returns a channel receiving switch-webapp events until
// ctx is done, at which point the channel is closed.
func (b *Bus) SubscribeSwitchWebApp(ctx context.Context) (<-chan string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("event bus is closed")
	}
	if !b.hooked {
		if err := b.bus.SubscribeAsync(port.TopicSwitchWebApp, b.deliver, true); err != nil {
			return nil, fmt.Errorf("unable to subscribe: %w", err)
		}
		b.hooked = true
	}

	id := b.nextID
	b.nextID++
	sub := &subscription{ch: make(chan string, subscriberBuffer)}
	b.subs[id] = sub

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		sub.close()
	}()
	return sub.ch, nil
}

func (b *Bus) deliver(webappID string) {
	b.mu.Lock()
	subs := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		if !sub.send(webappID) {
			logging.FromContext(b.ctx).Error().
				Str("topic", port.TopicSwitchWebApp).
				Str("webapp_id", webappID).
				Msg("unable to notify subscriber: timeout")
		}
	}
}

func (s *subscription) send(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return true
	}
	select {
	case s.ch <- v:
		return true
	case <-time.After(deliverTimeout):
		return false
	}
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// Close detaches from the bus, waits for in-flight deliveries and closes
// every subscriber channel.
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	hooked := b.hooked
	subs := b.subs
	b.subs = make(map[uint64]*subscription)
	b.mu.Unlock()

	if hooked {
		if err := b.bus.Unsubscribe(port.TopicSwitchWebApp, b.deliver); err != nil {
			return fmt.Errorf("unable to unsubscribe: %w", err)
		}
	}
	b.bus.WaitAsync()
	for _, sub := range subs {
		sub.close()
	}
	return nil
}
