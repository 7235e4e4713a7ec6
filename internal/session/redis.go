package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sess:"

// RedisStore keeps sessions in Redis with a per-key TTL, so expiry needs no
// sweeper: Redis drops the key and the session is gone on the next lookup.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing Redis client as a session store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Create(ctx context.Context, userID uint64, ttl time.Duration) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	key := redisKeyPrefix + hashToken(token)
	if err := s.rdb.Set(ctx, key, strconv.FormatUint(userID, 10), ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (uint64, error) {
	val, err := s.rdb.Get(ctx, redisKeyPrefix+hashToken(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	uid, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrNotFound
	}
	return uid, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	// DEL of a missing key is a no-op, which gives us idempotent logout.
	return s.rdb.Del(ctx, redisKeyPrefix+hashToken(token)).Err()
}
