package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/twingraph-backend/internal/config"
	"github.com/yungbote/twingraph-backend/internal/platform/logger"
)

// ImpactCache memoizes impact results per graph generation. Every graph write bumps the
// generation, so entries computed before the write are never served after it.
type ImpactCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, gen int64, component string) ([]string, bool, error)
	Set(ctx context.Context, gen int64, component string, names []string) error
	Invalidate(ctx context.Context) error
}

type Noop struct{}

func (Noop) Generation(context.Context) (int64, error) { return 0, nil }
func (Noop) Get(context.Context, int64, string) ([]string, bool, error) {
	return nil, false, nil
}
func (Noop) Set(context.Context, int64, string, []string) error { return nil }
func (Noop) Invalidate(context.Context) error                  { return nil }

type RedisImpactCache struct {
	rdb    *goredis.Client
	ttl    time.Duration
	prefix string
	log    *logger.Logger
}

// NewRedis dials Redis and verifies it with a PING.
func NewRedis(ctx context.Context, cfg config.RedisConfig, log *logger.Logger) (*RedisImpactCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisWithClient(rdb, cfg.TTL, cfg.Prefix, log), nil
}

func NewRedisWithClient(rdb *goredis.Client, ttl time.Duration, prefix string, log *logger.Logger) *RedisImpactCache {
	if prefix == "" {
		prefix = "twingraph"
	}
	return &RedisImpactCache{
		rdb:    rdb,
		ttl:    ttl,
		prefix: prefix,
		log:    log.With("service", "RedisImpactCache"),
	}
}

func (c *RedisImpactCache) genKey() string {
	return c.prefix + ":impact:gen"
}

func (c *RedisImpactCache) entryKey(gen int64, component string) string {
	return c.prefix + ":impact:" + strconv.FormatInt(gen, 10) + ":" + component
}

func (c *RedisImpactCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.genKey()).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *RedisImpactCache) Get(ctx context.Context, gen int64, component string) ([]string, bool, error) {
	raw, err := c.rdb.Get(ctx, c.entryKey(gen, component)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, false, fmt.Errorf("decode cached impact: %w", err)
	}
	return names, true, nil
}

func (c *RedisImpactCache) Set(ctx context.Context, gen int64, component string, names []string) error {
	if names == nil {
		names = []string{}
	}
	raw, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.entryKey(gen, component), raw, c.ttl).Err()
}

func (c *RedisImpactCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, c.genKey()).Err()
}

func (c *RedisImpactCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
