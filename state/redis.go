package state

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/rustyeddy/sigmaguard/risk"
)

// KeyPrefix namespaces prior-state keys in Redis.
const KeyPrefix = "sigmaguard:prior:"

// RedisStore shares priors between hosts through Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &RedisStore{client: rdb}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(c *redis.Client) *RedisStore {
	return &RedisStore{client: c}
}

func (r *RedisStore) entry(ctx context.Context, ticker string) (Entry, error) {
	val, err := r.client.Get(ctx, KeyPrefix+ticker).Result()
	if err == redis.Nil {
		return Entry{}, nil
	}
	if err != nil {
		return Entry{}, fmt.Errorf("redis get: %w", err)
	}
	var e Entry
	if err := json.Unmarshal([]byte(val), &e); err != nil {
		return Entry{}, fmt.Errorf("decode state %s: %w", ticker, err)
	}
	return e, nil
}

func (r *RedisStore) Load(ctx context.Context, ticker string, before time.Time) (risk.Prior, error) {
	e, err := r.entry(ctx, ticker)
	if err != nil {
		return risk.Prior{}, err
	}
	if p, ok := e.Before(before); ok {
		return p, nil
	}
	return risk.Prior{}, ErrNotFound
}

// Save read-modify-writes the entry. Callers hold the ticker's lock.
func (r *RedisStore) Save(ctx context.Context, ticker string, p risk.Prior) error {
	e, err := r.entry(ctx, ticker)
	if err != nil {
		return err
	}
	body, err := json.Marshal(e.Push(p))
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, KeyPrefix+ticker, string(body), 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error { return r.client.Close() }
