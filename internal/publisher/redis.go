package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient is the subset of *redis.Client used here.
type redisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	Close() error
}

// RedisPublisher stores the latest ranking under <prefix>:ranking:latest and
// publishes it on the <prefix>:ranking channel.
type RedisPublisher struct {
	client redisClient
	prefix string
	ttl    time.Duration
}

// NewRedisPublisher connects and pings the server.
func NewRedisPublisher(addr, password string, db int, prefix string, ttl time.Duration) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return newRedisPublisher(client, prefix, ttl), nil
}

func newRedisPublisher(client redisClient, prefix string, ttl time.Duration) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix, ttl: ttl}
}

func (p *RedisPublisher) Name() string { return "redis" }

// LatestKey is the key holding the most recent ranking.
func (p *RedisPublisher) LatestKey() string { return p.prefix + ":ranking:latest" }

// Channel is the pub/sub channel rankings are announced on.
func (p *RedisPublisher) Channel() string { return p.prefix + ":ranking" }

func (p *RedisPublisher) Publish(ctx context.Context, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal ranking: %w", err)
	}
	if err := p.client.Set(ctx, p.LatestKey(), data, p.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	if err := p.client.Publish(ctx, p.Channel(), data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
