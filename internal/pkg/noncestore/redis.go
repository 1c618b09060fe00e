package noncestore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	goredis "github.com/redis/go-redis/v9"
	"github.com/yigit/transcriptledger/internal/pkg/apperrors"
	"github.com/yigit/transcriptledger/internal/pkg/logger"
)

const challengePrefix = "auth:challenge:"

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps challenges in Redis so they survive restarts and are
// shared between API replicas
type RedisStore struct {
	rdb *goredis.Client
}

// NewRedisStore connects to Redis and pings it
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	logger.Info().Str("addr", cfg.Addr).Msg("Connected to Redis")
	return &RedisStore{rdb: rdb}, nil
}

func challengeKey(addr common.Address) string {
	return challengePrefix + strings.ToLower(addr.Hex())
}

// Put implements Store
func (s *RedisStore) Put(ctx context.Context, addr common.Address, challenge string, ttl time.Duration) error {
	return s.rdb.Set(ctx, challengeKey(addr), challenge, ttl).Err()
}

// Take implements Store. GETDEL makes the challenge single-use even with
// concurrent logins.
func (s *RedisStore) Take(ctx context.Context, addr common.Address) (string, error) {
	challenge, err := s.rdb.GetDel(ctx, challengeKey(addr)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", apperrors.ErrNonceNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read challenge: %w", err)
	}
	return challenge, nil
}

// Close implements Store
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Open returns a RedisStore when addr is set and reachable. Otherwise it
// falls back to a MemoryStore and logs why.
func Open(ctx context.Context, cfg RedisConfig) Store {
	if cfg.Addr == "" {
		logger.Info().Msg("Redis not configured, using in-memory challenge store")
		return NewMemoryStore()
	}
	store, err := NewRedisStore(ctx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory challenge store")
		return NewMemoryStore()
	}
	return store
}
