package usage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore counts usage with INCR, which is atomic server-side. Two
// concurrent requests from the same user always observe distinct counts, so
// the quota check cannot be raced past.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a usage store on an existing Redis connection
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) key(userID string) string {
	return s.prefix + dayKey(userID, time.Now())
}

func (s *RedisStore) Increment(ctx context.Context, userID string) (int, error) {
	key := s.key(userID)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// First increment of the day sets the expiry; later ones leave it alone.
	if count == 1 {
		s.client.Expire(ctx, key, counterTTL)
	}
	return int(count), nil
}

func (s *RedisStore) Peek(ctx context.Context, userID string) (int, error) {
	count, err := s.client.Get(ctx, s.key(userID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *RedisStore) Decrement(ctx context.Context, userID string) error {
	key := s.key(userID)

	// DECR only if the counter exists and is positive; a plain DECR could
	// push a missing key to -1.
	const script = `
local v = redis.call("GET", KEYS[1])
if v and tonumber(v) > 0 then
  return redis.call("DECR", KEYS[1])
end
return 0`
	return s.client.Eval(ctx, script, []string{key}).Err()
}

var _ Store = (*RedisStore)(nil)
