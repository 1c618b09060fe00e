// Package eventbus fans ledger events out to in-process subscribers.
// Publishing never blocks: a subscriber whose buffer is full misses the
// event and the drop is counted.
package eventbus

import (
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/yigit/transcriptledger/internal/ledger"
)

const (
	// Wildcard subscribes to every event type
	Wildcard ledger.EventType = "*"

	DefaultQueueSize = 64
)

var errSubscriberFull = errors.New("subscriber buffer full")

// SubscriberID identifies one subscription
type SubscriberID int

// HandlerFunc receives events delivered to a SubscribeFunc subscription
type HandlerFunc func(ledger.Event)

// Subscriber is a delivery target. Deliver must not block. Close must be
// idempotent.
type Subscriber interface {
	Deliver(ledger.Event) error
	Close()
}

type channelSubscriber struct {
	ch     chan ledger.Event
	mu     sync.RWMutex
	closed bool
}

func newChannelSubscriber(buffer int) *channelSubscriber {
	return &channelSubscriber{ch: make(chan ledger.Event, buffer)}
}

func (c *channelSubscriber) Deliver(evt ledger.Event) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	select {
	case c.ch <- evt:
		return nil
	default:
		return errSubscriberFull
	}
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

// EventBus is an in-process publish/subscribe hub keyed by event type
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[ledger.EventType]map[SubscriberID]Subscriber
	lastID      SubscriberID
	queueSize   int
	metrics     *busMetrics
	logger      zerolog.Logger
	handlers    sync.WaitGroup
}

// New creates an EventBus. promRegistry may be nil.
func New(promRegistry prometheus.Registerer, logger zerolog.Logger) *EventBus {
	b := &EventBus{
		subscribers: make(map[ledger.EventType]map[SubscriberID]Subscriber),
		queueSize:   DefaultQueueSize,
		logger:      logger,
	}
	if promRegistry != nil {
		b.metrics = newBusMetrics(promRegistry)
	}
	return b
}

// Subscribe returns a buffered channel receiving events of eventType, or of
// every type when eventType is Wildcard
func (b *EventBus) Subscribe(eventType ledger.EventType) (SubscriberID, <-chan ledger.Event) {
	sub := newChannelSubscriber(b.queueSize)
	id := b.register(eventType, sub, "in-memory")
	return id, sub.ch
}

// SubscribeFunc calls fn for every event of eventType on a dedicated goroutine
func (b *EventBus) SubscribeFunc(eventType ledger.EventType, fn HandlerFunc) SubscriberID {
	id, ch := b.Subscribe(eventType)
	b.handlers.Add(1)
	go func() {
		defer b.handlers.Done()
		for evt := range ch {
			fn(evt)
		}
	}()
	return id
}

// RegisterSubscriber attaches an external Subscriber such as a network sink
func (b *EventBus) RegisterSubscriber(eventType ledger.EventType, sub Subscriber) SubscriberID {
	return b.register(eventType, sub, "remote")
}

func (b *EventBus) register(eventType ledger.EventType, sub Subscriber, kind string) SubscriberID {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastID++
	id := b.lastID
	if _, ok := b.subscribers[eventType]; !ok {
		b.subscribers[eventType] = make(map[SubscriberID]Subscriber)
	}
	b.subscribers[eventType][id] = sub
	b.metrics.subscribed(eventType, kind, 1)
	return id
}

// Unsubscribe stops delivery to a subscription and closes it
func (b *EventBus) Unsubscribe(eventType ledger.EventType, id SubscriberID) {
	b.mu.Lock()
	var sub Subscriber
	if subs, ok := b.subscribers[eventType]; ok {
		if s, ok := subs[id]; ok {
			sub = s
			delete(subs, id)
			if len(subs) == 0 {
				delete(b.subscribers, eventType)
			}
			b.metrics.subscribed(eventType, kindOf(s), -1)
		}
	}
	b.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

type subItem struct {
	key ledger.EventType
	id  SubscriberID
	sub Subscriber
}

// Publish delivers evt to subscribers of its type and to wildcard
// subscribers. It implements ledger.Publisher.
func (b *EventBus) Publish(evt ledger.Event) {
	b.mu.RLock()
	items := make([]subItem, 0, len(b.subscribers[evt.Type])+len(b.subscribers[Wildcard]))
	for _, key := range []ledger.EventType{evt.Type, Wildcard} {
		for id, sub := range b.subscribers[key] {
			items = append(items, subItem{key: key, id: id, sub: sub})
		}
	}
	b.mu.RUnlock()

	for _, item := range items {
		err := deliver(item.sub, evt)
		switch {
		case err == nil:
		case errors.Is(err, errSubscriberFull):
			b.metrics.dropped(evt.Type)
			b.logger.Warn().Str("type", string(evt.Type)).Int("subscriber", int(item.id)).Msg("Subscriber buffer full, dropping event")
		default:
			b.metrics.deliveryError(evt.Type, kindOf(item.sub))
			b.logger.Error().Err(err).Str("type", string(evt.Type)).Int("subscriber", int(item.id)).Msg("Event delivery failed, removing subscriber")
			b.Unsubscribe(item.key, item.id)
		}
	}
	b.metrics.published(evt.Type)
}

func deliver(sub Subscriber, evt ledger.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber deliver panic: %v", r)
		}
	}()
	return sub.Deliver(evt)
}

// Stop closes every subscription and waits for SubscribeFunc handlers to
// return. The bus stays usable afterwards.
func (b *EventBus) Stop() {
	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = make(map[ledger.EventType]map[SubscriberID]Subscriber)
	b.mu.Unlock()

	for _, byID := range subs {
		for _, sub := range byID {
			sub.Close()
		}
	}
	b.metrics.reset()
	b.handlers.Wait()
}

func kindOf(sub Subscriber) string {
	if _, ok := sub.(*channelSubscriber); ok {
		return "in-memory"
	}
	return "remote"
}
