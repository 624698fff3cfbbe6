// Package redis provides a Redis-backed ConfigStore, letting multiple editor
// replicas share the latest known per-question configuration.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/espalier/internal/dto"
	"github.com/aretw0/espalier/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.ConfigStore using Redis.
// Configs are persisted in their wire shape (internal/dto), so values written
// here round-trip with any other tooling honoring the storage contract.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored configs.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored configs.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "espalier:options:",
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(questionID string) string {
	return s.prefix + questionID
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save persists the config to Redis.
func (s *Store) Save(ctx context.Context, questionID string, cfg *domain.DynamicOptionsConfig) error {
	data, err := json.Marshal(dto.FromDomain(cfg))
	if err != nil {
		return fmt.Errorf("failed to marshal options config: %w", err)
	}

	pipe := s.client.Pipeline()

	// 1. Save JSON with TTL (0 means no expiration).
	pipe.Set(ctx, s.key(questionID), data, s.ttl)

	// 2. Add to index (ZSET). Score = expiry time; effectively infinite when
	// no TTL is set.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  score,
		Member: questionID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the config from Redis.
func (s *Store) Load(ctx context.Context, questionID string) (*domain.DynamicOptionsConfig, error) {
	val, err := s.client.Get(ctx, s.key(questionID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var wire dto.DynamicOptions
	if err := json.Unmarshal([]byte(val), &wire); err != nil {
		return nil, fmt.Errorf("failed to unmarshal options config: %w", err)
	}
	return wire.ToDomain()
}

// Delete removes the config.
func (s *Store) Delete(ctx context.Context, questionID string) error {
	pipe := s.client.Pipeline()

	pipe.Del(ctx, s.key(questionID))
	pipe.ZRem(ctx, s.indexKey(), questionID)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns question ids with a stored config, pruning expired index
// entries lazily.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	if err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err(); err != nil {
		return nil, fmt.Errorf("failed to prune expired configs: %w", err)
	}

	questions, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	return questions, nil
}
