// Package notifications forwards committed ledger events to NATS
package notifications

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yigit/transcriptledger/internal/ledger"
	"github.com/yigit/transcriptledger/internal/pkg/logger"
)

const DefaultSubjectPrefix = "transcriptledger.events"

// Publisher is the subset of *nats.Conn the sink needs
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSSink publishes every event as JSON on <prefix>.<EventType>.
// Publish failures are logged and counted; they never reach the ledger.
type NATSSink struct {
	pub      Publisher
	prefix   string
	conn     *nats.Conn
	failures prometheus.Counter
	closed   sync.Once
}

// Connect dials NATS and returns a sink that owns the connection
func Connect(url, prefix string, reg prometheus.Registerer) (*NATSSink, error) {
	conn, err := nats.Connect(url,
		nats.Name("transcript-ledger"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info().Str("url", c.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	logger.Info().Str("url", url).Msg("Connected to NATS")

	sink := NewNATSSink(conn, prefix, reg)
	sink.conn = conn
	return sink, nil
}

// NewNATSSink wraps an existing publisher
func NewNATSSink(pub Publisher, prefix string, reg prometheus.Registerer) *NATSSink {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	s := &NATSSink{
		pub:    pub,
		prefix: prefix,
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "notifications",
			Name:      "nats_publish_failures_total",
			Help:      "Ledger events that could not be published to NATS",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.failures)
	}
	return s
}

// Subject returns the subject an event type is published on
func (s *NATSSink) Subject(t ledger.EventType) string {
	return fmt.Sprintf("%s.%s", s.prefix, t)
}

// Deliver implements eventbus.Subscriber
func (s *NATSSink) Deliver(evt ledger.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		s.fail(evt, err)
		return nil
	}
	if err := s.pub.Publish(s.Subject(evt.Type), payload); err != nil {
		s.fail(evt, err)
	}
	return nil
}

func (s *NATSSink) fail(evt ledger.Event, err error) {
	s.failures.Inc()
	logger.Error().Err(err).
		Str("type", string(evt.Type)).
		Uint64("seq", evt.Seq).
		Msg("Failed to publish ledger event to NATS")
}

// Close drains the connection when the sink owns one
func (s *NATSSink) Close() {
	s.closed.Do(func() {
		if s.conn == nil {
			return
		}
		if err := s.conn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("Failed to drain NATS connection")
			s.conn.Close()
		}
	})
}
