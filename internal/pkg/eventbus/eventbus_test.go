package eventbus_test

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yigit/transcriptledger/internal/ledger"
	"github.com/yigit/transcriptledger/internal/pkg/eventbus"
)

func testEvent(t ledger.EventType, seq uint64) ledger.Event {
	return ledger.Event{Type: t, Seq: seq, Timestamp: time.Now(), Data: seq}
}

func receive(t *testing.T, ch <-chan ledger.Event) ledger.Event {
	t.Helper()
	select {
	case evt, ok := <-ch:
		require.True(t, ok, "event channel closed unexpectedly")
		return evt
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
	return ledger.Event{}
}

func TestTypedAndWildcardSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := eventbus.New(nil, zerolog.Nop())
	defer bus.Stop()

	_, typed := bus.Subscribe(ledger.EventTranscriptCreated)
	_, all := bus.Subscribe(eventbus.Wildcard)

	bus.Publish(testEvent(ledger.EventStudentRegistered, 1))
	bus.Publish(testEvent(ledger.EventTranscriptCreated, 2))

	assert.Equal(t, uint64(2), receive(t, typed).Seq)
	assert.Equal(t, uint64(1), receive(t, all).Seq)
	assert.Equal(t, uint64(2), receive(t, all).Seq)

	select {
	case evt := <-typed:
		t.Fatalf("unexpected event %v", evt.Type)
	default:
	}
}

func TestSubscribeFunc(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := eventbus.New(nil, zerolog.Nop())

	var (
		mu   sync.Mutex
		seen []uint64
	)
	done := make(chan struct{})
	bus.SubscribeFunc(ledger.EventCourseAdded, func(evt ledger.Event) {
		mu.Lock()
		seen = append(seen, evt.Seq)
		n := len(seen)
		mu.Unlock()
		if n == 3 {
			close(done)
		}
	})

	for seq := uint64(1); seq <= 3; seq++ {
		bus.Publish(testEvent(ledger.EventCourseAdded, seq))
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for handler")
	}
	bus.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2, 3}, seen)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := eventbus.New(nil, zerolog.Nop())
	id, ch := bus.Subscribe(ledger.EventRoleGranted)
	bus.Unsubscribe(ledger.EventRoleGranted, id)

	_, ok := <-ch
	assert.False(t, ok)

	// publishing with no subscribers is fine
	bus.Publish(testEvent(ledger.EventRoleGranted, 1))
}

func TestFullSubscriberDoesNotBlockPublisher(t *testing.T) {
	defer goleak.VerifyNone(t)

	reg := prometheus.NewRegistry()
	bus := eventbus.New(reg, zerolog.Nop())
	defer bus.Stop()

	_, ch := bus.Subscribe(ledger.EventCourseAdded)

	total := eventbus.DefaultQueueSize + 10
	finished := make(chan struct{})
	go func() {
		for i := 0; i < total; i++ {
			bus.Publish(testEvent(ledger.EventCourseAdded, uint64(i+1)))
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}

	assert.Len(t, ch, eventbus.DefaultQueueSize)
	assert.Equal(t, float64(10), counterSum(t, reg, "eventbus_dropped_total"))
	assert.Equal(t, uint64(1), receive(t, ch).Seq)
}

type panickySubscriber struct {
	closed bool
}

func (p *panickySubscriber) Deliver(ledger.Event) error { panic("boom") }
func (p *panickySubscriber) Close()                     { p.closed = true }

func TestPanickingSubscriberIsRemoved(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := eventbus.New(prometheus.NewRegistry(), zerolog.Nop())
	defer bus.Stop()

	bad := &panickySubscriber{}
	bus.RegisterSubscriber(eventbus.Wildcard, bad)
	_, good := bus.Subscribe(ledger.EventTranscriptVerified)

	bus.Publish(testEvent(ledger.EventTranscriptVerified, 1))
	assert.True(t, bad.closed)
	assert.Equal(t, uint64(1), receive(t, good).Seq)

	bus.Publish(testEvent(ledger.EventTranscriptVerified, 2))
	assert.Equal(t, uint64(2), receive(t, good).Seq)
}

func TestStopClosesSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	bus := eventbus.New(nil, zerolog.Nop())
	_, a := bus.Subscribe(ledger.EventStudentRegistered)
	_, b := bus.Subscribe(eventbus.Wildcard)
	bus.Stop()

	_, ok := <-a
	assert.False(t, ok)
	_, ok = <-b
	assert.False(t, ok)

	// usable after stop
	_, c := bus.Subscribe(ledger.EventStudentRegistered)
	bus.Publish(testEvent(ledger.EventStudentRegistered, 9))
	assert.Equal(t, uint64(9), receive(t, c).Seq)
	bus.Stop()
}

func TestBusImplementsPublisher(t *testing.T) {
	var _ ledger.Publisher = eventbus.New(nil, zerolog.Nop())
}

func counterSum(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		var sum float64
		for _, m := range mf.GetMetric() {
			sum += m.GetCounter().GetValue()
		}
		return sum
	}
	t.Fatalf("metric %s not found", name)
	return 0
}
