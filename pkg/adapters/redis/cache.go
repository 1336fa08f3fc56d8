package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the cache.
const DefaultPrefix = "parley:answer:"

// Cache implements ports.AnswerCache using Redis.
type Cache struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

var _ ports.AnswerCache = (*Cache)(nil)

type Option func(*Cache)

// WithTTL sets the expiration for cached answers.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithPrefix sets the key prefix for cached answers.
func WithPrefix(prefix string) Option {
	return func(c *Cache) {
		if prefix != "" {
			c.prefix = prefix
		}
	}
}

// New creates a new Redis cache with options.
func New(address, password string, db int, opts ...Option) *Cache {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis cache from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Cache {
	c := &Cache{
		client: client,
		prefix: DefaultPrefix,
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) key(question string) string {
	return c.prefix + question
}

func (c *Cache) indexKey() string {
	return c.prefix + "index"
}

// Ping checks connectivity.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to reach redis: %w", err)
	}
	return nil
}

// Get retrieves a cached answer.
func (c *Cache) Get(ctx context.Context, question string) (domain.AskResult, bool, error) {
	val, err := c.client.Get(ctx, c.key(question)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return domain.AskResult{}, false, nil
		}
		return domain.AskResult{}, false, fmt.Errorf("failed to get from redis: %w", err)
	}

	var res domain.AskResult
	if err := json.Unmarshal([]byte(val), &res); err != nil {
		return domain.AskResult{}, false, fmt.Errorf("failed to unmarshal answer: %w", err)
	}
	return res, true, nil
}

// Put stores an answer and records it in the index set.
func (c *Cache) Put(ctx context.Context, question string, result domain.AskResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}

	pipe := c.client.Pipeline()
	// 0 means no expiration.
	pipe.Set(ctx, c.key(question), data, c.ttl)
	pipe.SAdd(ctx, c.indexKey(), question)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Invalidate removes an answer.
func (c *Cache) Invalidate(ctx context.Context, question string) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, c.key(question))
	pipe.SRem(ctx, c.indexKey(), question)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to invalidate in redis: %w", err)
	}
	return nil
}

// Purge removes every answer written under the prefix.
func (c *Cache) Purge(ctx context.Context) (int, error) {
	questions, err := c.client.SMembers(ctx, c.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list cached answers: %w", err)
	}

	keys := make([]string, 0, len(questions)+1)
	for _, q := range questions {
		keys = append(keys, c.key(q))
	}
	keys = append(keys, c.indexKey())

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("failed to purge redis: %w", err)
	}
	return len(questions), nil
}

// Close closes the redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}
