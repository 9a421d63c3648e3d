package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore backs the Store interface with Redis so concurrent orchestrator
// instances share one dependency-result cache. TTL handling is delegated to
// Redis key expiry.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisStore connects to Redis at addr and verifies the connection.
func NewRedisStore(addr string, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client, prefix: "orchestrator:", logger: logger}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return data, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := s.client.Set(ctx, s.prefix+key, value, ttl).Err(); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	_ = s.client.Del(ctx, s.prefix+key).Err()
}

// Clear removes every orchestrator-prefixed key and returns how many were
// deleted.
func (s *RedisStore) Clear(ctx context.Context) int {
	var (
		cursor  uint64
		cleared int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			s.logger.Warn("Cache clear scan failed", zap.Error(err))
			return cleared
		}
		if len(keys) > 0 {
			if n, err := s.client.Del(ctx, keys...).Result(); err == nil {
				cleared += int(n)
			}
		}
		cursor = next
		if cursor == 0 {
			return cleared
		}
	}
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
