package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis checkpoint backend, used when several
// benchmark hosts share run state.
type RedisConfig struct {
	// Address is the Redis server address (e.g. "localhost:6379").
	Address string

	// Password for authentication (optional).
	Password string

	// Database number (default 0).
	Database int

	// Prefix is prepended to all checkpoint keys.
	Prefix string

	// TTL for checkpoint keys (0 = no expiration).
	TTL time.Duration

	// Timeout for Redis operations.
	Timeout time.Duration
}

// DefaultRedisConfig returns sensible defaults.
func DefaultRedisConfig(address string) RedisConfig {
	return RedisConfig{
		Address: address,
		Prefix:  "dqbench:runs:",
		TTL:     24 * time.Hour,
		Timeout: 5 * time.Second,
	}
}

// RedisStore persists checkpoints in Redis.
type RedisStore struct {
	cfg    RedisConfig
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.Database,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("checkpoint: redis connection failed: %w", err)
	}

	return &RedisStore{cfg: cfg, client: client}, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) key(outputPath string) string {
	return s.cfg.Prefix + outputPath
}

func (s *RedisStore) Save(ctx context.Context, cp *Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(cp.OutputPath), data, s.cfg.TTL).Err()
}

func (s *RedisStore) Load(ctx context.Context, outputPath string) (*Checkpoint, error) {
	data, err := s.client.Get(ctx, s.key(outputPath)).Bytes()
	if err != nil {
		return nil, err
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *RedisStore) Delete(ctx context.Context, outputPath string) error {
	return s.client.Del(ctx, s.key(outputPath)).Err()
}
