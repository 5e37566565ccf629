package nonce

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "siws:nonce:"

// compare-and-delete, so two concurrent verifications cannot both win
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore shares nonces across API instances and expires them after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Issue(ctx context.Context, publicKey string) (string, error) {
	n, err := generate(32)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, keyPrefix+publicKey, n, s.ttl).Err(); err != nil {
		return "", err
	}
	return n, nil
}

func (s *RedisStore) Consume(ctx context.Context, publicKey, nonce string) (bool, error) {
	if nonce == "" {
		return false, nil
	}
	deleted, err := consumeScript.Run(ctx, s.client, []string{keyPrefix + publicKey}, nonce).Int()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}
