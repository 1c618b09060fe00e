package noncestore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/transcriptledger/internal/pkg/apperrors"
)

var testAddr = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

func exerciseStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Take(ctx, testAddr)
	assert.ErrorIs(t, err, apperrors.ErrNonceNotFound)

	require.NoError(t, s.Put(ctx, testAddr, "first", time.Minute))
	require.NoError(t, s.Put(ctx, testAddr, "second", time.Minute))

	got, err := s.Take(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = s.Take(ctx, testAddr)
	assert.ErrorIs(t, err, apperrors.ErrNonceNotFound)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Put(ctx, testAddr, "challenge", time.Minute))
	now = now.Add(2 * time.Minute)

	_, err := s.Take(ctx, testAddr)
	assert.ErrorIs(t, err, apperrors.ErrNonceNotFound)
}

func TestOpenFallsBackToMemory(t *testing.T) {
	s := Open(context.Background(), RedisConfig{})
	_, ok := s.(*MemoryStore)
	assert.True(t, ok)

	s = Open(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	_, ok = s.(*MemoryStore)
	assert.True(t, ok)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(context.Background(), RedisConfig{Addr: addr})
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
}
