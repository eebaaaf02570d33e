package repos

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"vitashelf/internal/cart"
)

// guest carts expire after a month of inactivity
const cartTTL = 30 * 24 * time.Hour

// RedisCartStore is an alternate cart.Store for deployments that keep
// session state out of sqlite (CART_STORE=redis). Snapshots are stored as
// JSON under cart:<session id>.
type RedisCartStore struct{ client *redis.Client }

func NewRedisCartStore(addr string) *RedisCartStore {
	return &RedisCartStore{client: redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})}
}

func (s *RedisCartStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func cartKey(sid string) string { return "cart:" + sid }

func (s *RedisCartStore) Load(ctx context.Context, key string) (cart.Snapshot, bool, error) {
	raw, err := s.client.Get(ctx, cartKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return cart.Snapshot{}, false, nil
	}
	if err != nil {
		return cart.Snapshot{}, false, err
	}
	return cart.DecodeSnapshot(raw), true, nil
}

func (s *RedisCartStore) Save(ctx context.Context, key string, snap cart.Snapshot) error {
	raw, err := cart.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cartKey(key), raw, cartTTL).Err()
}

func (s *RedisCartStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, cartKey(key)).Err()
}
