package session

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "aether:session:"

// RedisStore keeps sessions in Redis so several bot replicas can share them.
// Writes are last-writer-wins; per-user ordering is the dispatcher's job.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return NewRedisStoreFromClient(client, "", ttl), nil
}

func NewRedisStoreFromClient(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(userID), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return &s, nil
}

func (r *RedisStore) Update(ctx context.Context, userID int64, mutate func(*Session)) (*Session, error) {
	s, err := r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	mutate(s)
	s.UpdatedAt = time.Now()

	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "encode session")
	}
	if err := r.client.Set(ctx, r.key(userID), data, r.ttl).Err(); err != nil {
		return nil, errors.Wrap(err, "redis set")
	}
	return s, nil
}

func (r *RedisStore) Clear(ctx context.Context, userID int64) (*Session, error) {
	return r.Update(ctx, userID, (*Session).Reset)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
