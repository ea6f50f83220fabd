package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/andresuchdata/stockline/internal/config"
	"github.com/redis/go-redis/v9"
)

const (
	defaultTTL    = time.Minute
	pingTimeout   = 5 * time.Second
	scanBatchSize = 100
)

// jsonStore stores JSON documents under string keys with a fixed expiry
type jsonStore struct {
	client *redis.Client
	ttl    time.Duration
}

func dialJSONStore(cfg config.CacheConfig, ttlSeconds int) (*jsonStore, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}

	return &jsonStore{client: client, ttl: expiry(ttlSeconds)}, nil
}

// load decodes the document at key into dst; found is false on a miss
func (s *jsonStore) load(ctx context.Context, key string, dst any) (found bool, err error) {
	payload, err := s.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *jsonStore) store(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// purge deletes every key starting with prefix, one SCAN page at a time
func (s *jsonStore) purge(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, prefix+"*", scanBatchSize).Iterator()
	batch := make([]string, 0, scanBatchSize)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := s.client.Unlink(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis unlink: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", prefix, err)
	}
	if len(batch) > 0 {
		if err := s.client.Unlink(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis unlink: %w", err)
		}
	}
	return nil
}

func expiry(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultTTL
	}
	return time.Duration(seconds) * time.Second
}

// redisOptions prefers REDIS_URL and falls back to host, port and db number
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host, port := cfg.RedisHost, cfg.RedisPort
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}
