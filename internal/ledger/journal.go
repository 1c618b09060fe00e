package ledger

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// GenesisHash is the PrevHash of the first journal entry
var GenesisHash = strings.Repeat("0", 64)

// Entry is one committed write. Entries form a hash chain: each Hash covers
// the entry fields and the PrevHash of its predecessor.
type Entry struct {
	Seq        uint64          `json:"seq"`
	Kind       EventType       `json:"kind"`
	Caller     common.Address  `json:"caller"`
	Payload    json.RawMessage `json:"payload"`
	PrevHash   string          `json:"prevHash"`
	Hash       string          `json:"hash"`
	RecordedAt time.Time       `json:"recordedAt"`
}

// Head identifies the last committed entry
type Head struct {
	Seq  uint64 `json:"seq"`
	Hash string `json:"hash"`
}

// Journal is the append-only store the registry is rebuilt from
type Journal interface {
	// Append stores e. It fails with ErrJournalConflict when e does not
	// extend the current head.
	Append(ctx context.Context, e Entry) error
	// Replay calls fn, in sequence order, for every entry whose Seq is
	// greater than after
	Replay(ctx context.Context, after uint64, fn func(Entry) error) error
}

// NewEntry builds the entry that follows head. RecordedAt is truncated to
// microseconds so the hash survives a round trip through Postgres.
func NewEntry(head Head, kind EventType, caller common.Address, payload any, at time.Time) (Entry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	e := Entry{
		Seq:        head.Seq + 1,
		Kind:       kind,
		Caller:     caller,
		Payload:    raw,
		PrevHash:   head.Hash,
		RecordedAt: at.UTC().Truncate(time.Microsecond),
	}
	if e.PrevHash == "" {
		e.PrevHash = GenesisHash
	}
	e.Hash = e.ComputeHash()
	return e, nil
}

// ComputeHash returns the hex SHA3-256 digest of the entry contents
func (e Entry) ComputeHash() string {
	h := sha3.New256()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], e.Seq)
	h.Write(buf[:])
	h.Write([]byte(e.Kind))
	h.Write([]byte{0})
	h.Write(e.Caller.Bytes())
	h.Write([]byte(e.PrevHash))
	binary.BigEndian.PutUint64(buf[:], uint64(e.RecordedAt.UnixMicro()))
	h.Write(buf[:])
	h.Write(e.Payload)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyLink checks that e is well formed and follows prev
func VerifyLink(prev Head, e Entry) error {
	if prevHash := headHash(prev); e.Seq != prev.Seq+1 || e.PrevHash != prevHash {
		return fmt.Errorf("%w: entry %d does not follow %d", ErrJournalCorrupt, e.Seq, prev.Seq)
	}
	if e.Hash != e.ComputeHash() {
		return fmt.Errorf("%w: entry %d hash mismatch", ErrJournalCorrupt, e.Seq)
	}
	return nil
}

// VerifyChain checks the hash chain of a full entry sequence and returns
// its head
func VerifyChain(entries []Entry) (Head, error) {
	var head Head
	for _, e := range entries {
		if err := VerifyLink(head, e); err != nil {
			return head, err
		}
		head = Head{Seq: e.Seq, Hash: e.Hash}
	}
	return head, nil
}

// VerifyJournal replays j and checks its hash chain
func VerifyJournal(ctx context.Context, j Journal) (Head, error) {
	var head Head
	err := j.Replay(ctx, 0, func(e Entry) error {
		if err := VerifyLink(head, e); err != nil {
			return err
		}
		head = Head{Seq: e.Seq, Hash: e.Hash}
		return nil
	})
	return head, err
}

func headHash(h Head) string {
	if h.Hash == "" {
		return GenesisHash
	}
	return h.Hash
}

// MemoryJournal keeps entries in process memory
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryJournal creates an empty MemoryJournal
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

// Append implements Journal
func (m *MemoryJournal) Append(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var head Head
	if n := len(m.entries); n > 0 {
		head = Head{Seq: m.entries[n-1].Seq, Hash: m.entries[n-1].Hash}
	}
	if e.Seq != head.Seq+1 || e.PrevHash != headHash(head) {
		return fmt.Errorf("%w: expected seq %d", ErrJournalConflict, head.Seq+1)
	}
	m.entries = append(m.entries, e)
	return nil
}

// Replay implements Journal
func (m *MemoryJournal) Replay(ctx context.Context, after uint64, fn func(Entry) error) error {
	for _, e := range m.Entries() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if e.Seq <= after {
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Entries returns a copy of the stored entries
func (m *MemoryJournal) Entries() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of stored entries
func (m *MemoryJournal) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
