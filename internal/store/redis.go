package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/robalobadob/numguess/internal/game"
)

const keyPrefix = "numguess:session:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string        // host:port
	Password string        // optional
	DB       int           // database number
	TTL      time.Duration // session expiry, refreshed on every Save
}

// RedisStore keeps sessions as JSON documents in Redis so several server
// instances can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Dur("ttl", cfg.TTL).
		Msg("connected to Redis session store")

	return newRedisStore(client, cfg.TTL, logger), nil
}

func newRedisStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func (r *RedisStore) Save(ctx context.Context, s *game.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	if err := r.client.Set(ctx, keyPrefix+s.ID, b, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.ID, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*game.Session, error) {
	b, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", id, err)
	}
	var s game.Session
	if err := json.Unmarshal(b, &s); err != nil {
		r.logger.Warn().Err(err).Str("gameId", id).Msg("dropping undecodable session")
		_ = r.client.Del(ctx, keyPrefix+id).Err()
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (r *RedisStore) Close() error { return r.client.Close() }
