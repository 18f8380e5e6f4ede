package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yungbote/optima-backend/internal/config"
	"github.com/yungbote/optima-backend/internal/platform/logger"
)

// IntakeCache remembers parsed intake results by the text they came from.
type IntakeCache interface {
	Get(ctx context.Context, text string) (*IntakeResult, bool, error)
	Set(ctx context.Context, text string, res *IntakeResult) error
	Close() error
}

type noopIntakeCache struct{}

func NewNoopIntakeCache() IntakeCache { return noopIntakeCache{} }

func (noopIntakeCache) Get(context.Context, string) (*IntakeResult, bool, error) {
	return nil, false, nil
}

func (noopIntakeCache) Set(context.Context, string, *IntakeResult) error { return nil }

func (noopIntakeCache) Close() error { return nil }

type redisIntakeCache struct {
	log    *logger.Logger
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisIntakeCache(log *logger.Logger, cfg config.CacheConfig) (IntakeCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return newRedisIntakeCache(log, rdb, cfg), nil
}

func newRedisIntakeCache(log *logger.Logger, rdb *redis.Client, cfg config.CacheConfig) *redisIntakeCache {
	return &redisIntakeCache{
		log:    log.With("service", "RedisIntakeCache"),
		rdb:    rdb,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.TTL.Duration,
	}
}

func (c *redisIntakeCache) Get(ctx context.Context, text string) (*IntakeResult, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key(text)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var res IntakeResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, false, fmt.Errorf("decode cached intake: %w", err)
	}
	return &res, true, nil
}

func (c *redisIntakeCache) Set(ctx context.Context, text string, res *IntakeResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(text), raw, c.ttl).Err()
}

func (c *redisIntakeCache) Close() error {
	return c.rdb.Close()
}

func (c *redisIntakeCache) key(text string) string {
	return c.prefix + IntakeCacheKey(text)
}

// IntakeCacheKey hashes text with whitespace runs collapsed. Case is kept since
// subject names come back as written.
func IntakeCacheKey(text string) string {
	norm := strings.Join(strings.Fields(text), " ")
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])
}
