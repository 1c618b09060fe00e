package notifications

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/transcriptledger/internal/ledger"
)

type published struct {
	subject string
	data    []byte
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, published{subject: subject, data: data})
	return nil
}

func TestDeliverPublishesOnTypedSubject(t *testing.T) {
	pub := &fakePublisher{}
	sink := NewNATSSink(pub, "", nil)

	evt := ledger.Event{
		Type:      ledger.EventTranscriptVerified,
		Seq:       7,
		Timestamp: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Data: ledger.TranscriptVerified{
			TranscriptID: 3,
			Verifier:     common.HexToAddress("0x4000000000000000000000000000000000000006"),
		},
	}
	require.NoError(t, sink.Deliver(evt))

	require.Len(t, pub.msgs, 1)
	assert.Equal(t, "transcriptledger.events.TranscriptVerified", pub.msgs[0].subject)

	var decoded struct {
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
		Data struct {
			TranscriptID uint64 `json:"transcriptId"`
			Verifier     string `json:"verifier"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(pub.msgs[0].data, &decoded))
	assert.Equal(t, "TranscriptVerified", decoded.Type)
	assert.Equal(t, uint64(7), decoded.Seq)
	assert.Equal(t, uint64(3), decoded.Data.TranscriptID)
	assert.Equal(t, "0x4000000000000000000000000000000000000006", decoded.Data.Verifier)
}

func TestDeliverSwallowsPublishFailures(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats: connection closed")}
	sink := NewNATSSink(pub, "ledger", prometheus.NewRegistry())

	err := sink.Deliver(ledger.Event{Type: ledger.EventCourseAdded, Seq: 1})
	assert.NoError(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(sink.failures))
	assert.Equal(t, "ledger.CourseAdded", sink.Subject(ledger.EventCourseAdded))

	// Close is safe without an owned connection
	sink.Close()
	sink.Close()
}
