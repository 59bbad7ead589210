package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisAdapter implements Adapter over a *redis.Client. Each method maps
// onto the Redis command family it names in its doc comment; the claim
// script is submitted to Redis's EVAL, giving the claim its required
// atomicity for free from the server.
type RedisAdapter struct {
	client *redis.Client
}

// NewRedisAdapter wraps an already-configured *redis.Client.
func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

// RedisAdapterFromURL builds an adapter for the Redis server described by a
// redis:// URL (see redis.ParseURL), e.g. "redis://localhost:6379/0". It
// only parses the URL and constructs the client; no connection is made
// until the first command is issued.
func RedisAdapterFromURL(url string) (*RedisAdapter, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisAdapter(redis.NewClient(opts)), nil
}

// RPUSH.
func (r *RedisAdapter) ListPushTail(ctx context.Context, key string,
	value []byte) error {

	return r.client.RPush(ctx, key, value).Err()
}

// LPUSH.
func (r *RedisAdapter) ListPushHead(ctx context.Context, key string,
	value []byte) error {

	return r.client.LPush(ctx, key, value).Err()
}

// LPOP.
func (r *RedisAdapter) ListPopHead(ctx context.Context,
	key string) ([]byte, error) {

	return nilOnRedisNil(r.client.LPop(ctx, key).Bytes())
}

// RPOP.
func (r *RedisAdapter) ListPopTail(ctx context.Context,
	key string) ([]byte, error) {

	return nilOnRedisNil(r.client.RPop(ctx, key).Bytes())
}

// LLEN.
func (r *RedisAdapter) ListLength(ctx context.Context,
	key string) (int, error) {

	n, err := r.client.LLen(ctx, key).Result()
	return int(n), err
}

// HSET, or HSETNX when policy is OverwriteIfAbsent.
func (r *RedisAdapter) HashSet(ctx context.Context, key, field string,
	value []byte, policy OverwritePolicy) error {

	if policy == OverwriteIfAbsent {
		return r.client.HSetNX(ctx, key, field, value).Err()
	}
	return r.client.HSet(ctx, key, field, value).Err()
}

// HGET.
func (r *RedisAdapter) HashGet(ctx context.Context, key,
	field string) ([]byte, error) {

	return nilOnRedisNil(r.client.HGet(ctx, key, field).Bytes())
}

// HDEL.
func (r *RedisAdapter) HashDelete(ctx context.Context, key,
	field string) error {

	return r.client.HDel(ctx, key, field).Err()
}

// HGETALL.
func (r *RedisAdapter) HashScan(ctx context.Context,
	key string) (map[string][]byte, error) {

	raw, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(raw))
	for field, value := range raw {
		out[field] = []byte(value)
	}
	return out, nil
}

// EVAL.
func (r *RedisAdapter) Eval(ctx context.Context, script string,
	keys []string, args ...any) ([]byte, error) {

	return nilOnRedisNil(r.client.Eval(ctx, script, keys, args...).Bytes())
}

// PUBLISH.
func (r *RedisAdapter) Publish(ctx context.Context, channel,
	message string) error {

	return r.client.Publish(ctx, channel, message).Err()
}

// SUBSCRIBE, demultiplexed into onMsg until ctx is cancelled.
func (r *RedisAdapter) Subscribe(ctx context.Context, channel string,
	onMsg OnMessage) error {

	pubsub := r.client.Subscribe(ctx, channel)

	// Block on confirmation that the subscription is live before
	// returning, matching the interface contract.
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}

	go func() {
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				onMsg(msg.Payload)
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func nilOnRedisNil(b []byte, err error) ([]byte, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}
