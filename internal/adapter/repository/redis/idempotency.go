package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// placeholder marks a key whose first request is still being processed.
const placeholder = "processing"

// IdempotencyStore backs the Idempotency-Key middleware. A payment
// gateway that times out will retry its reservation call; the store lets
// the second attempt replay the first response instead of holding stock
// twice. Implements usecase.IdempotencyStore.
type IdempotencyStore struct {
	client *redis.Client
	prefix string
}

// NewIdempotencyStore creates an IdempotencyStore.
func NewIdempotencyStore(client *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{
		client: client,
		prefix: "idempotency:",
	}
}

// CheckAndSet reports whether key was seen before and returns whatever was
// stored for it. On a fresh key it either stores response, or claims the
// key with a placeholder when response is nil so concurrent duplicates see
// the claim.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.prefix + key

	existing, err := s.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return true, existing, nil
	}
	if err != redis.Nil {
		return false, nil, err
	}

	if response != nil {
		if err := s.client.Set(ctx, fullKey, response, ttl).Err(); err != nil {
			return false, nil, err
		}
		return false, nil, nil
	}

	set, err := s.client.SetNX(ctx, fullKey, placeholder, ttl).Result()
	if err != nil {
		return false, nil, err
	}
	if !set {
		// Lost the race: a duplicate claimed the key between Get and SetNX.
		existing, err := s.client.Get(ctx, fullKey).Bytes()
		if err != nil && err != redis.Nil {
			return false, nil, err
		}
		return true, existing, nil
	}

	return false, nil, nil
}

// Update replaces the placeholder with the final response.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return s.client.Set(ctx, s.prefix+key, response, ttl).Err()
}
