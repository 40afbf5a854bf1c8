package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Ankursingh018as/public-pulse-ai/config"
	"github.com/Ankursingh018as/public-pulse-ai/internal/logger"
)

// Cache provides Redis-backed caching for risk assessments and executive
// summaries. When no Redis URL is configured every operation is a no-op
// miss so callers never need to branch on availability.
type Cache struct {
	redis      *redis.Client
	riskTTL    time.Duration
	summaryTTL time.Duration
}

// New creates a cache from config. An empty REDIS_URL disables caching.
func New(cfg config.RedisConfig) (*Cache, error) {
	if cfg.URL == "" {
		logger.Info("REDIS_URL not set; response caching disabled")
		return &Cache{riskTTL: cfg.RiskTTL, summaryTTL: cfg.SummaryTTL}, nil
	}

	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.Password != "" {
		opt.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opt.DB = cfg.DB
	}

	client := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("Redis cache connected", "risk_ttl", cfg.RiskTTL, "summary_ttl", cfg.SummaryTTL)
	return &Cache{redis: client, riskTTL: cfg.RiskTTL, summaryTTL: cfg.SummaryTTL}, nil
}

// Enabled reports whether a Redis backend is attached.
func (c *Cache) Enabled() bool { return c.redis != nil }

// Close releases the Redis connection.
func (c *Cache) Close() error {
	if c.redis == nil {
		return nil
	}
	return c.redis.Close()
}

func riskKey(area string) string     { return "risk:" + area }
func summaryKey(key string) string   { return "summary:" + key }
func briefingKey(area string) string { return "briefing:" + area }

// GetRisk loads a cached risk assessment for an area into dest. Returns
// false on a miss.
func (c *Cache) GetRisk(ctx context.Context, area string, dest any) (bool, error) {
	return c.get(ctx, riskKey(area), dest)
}

// SetRisk caches a risk assessment for an area.
func (c *Cache) SetRisk(ctx context.Context, area string, value any) error {
	return c.set(ctx, riskKey(area), value, c.riskTTL)
}

// GetSummary loads a cached executive summary into dest. Returns false on
// a miss.
func (c *Cache) GetSummary(ctx context.Context, key string, dest any) (bool, error) {
	return c.get(ctx, summaryKey(key), dest)
}

// SetSummary caches an executive summary.
func (c *Cache) SetSummary(ctx context.Context, key string, value any) error {
	return c.set(ctx, summaryKey(key), value, c.summaryTTL)
}

// GetBriefing loads a cached area briefing into dest. Returns false on a
// miss.
func (c *Cache) GetBriefing(ctx context.Context, area string, dest any) (bool, error) {
	return c.get(ctx, briefingKey(area), dest)
}

// SetBriefing caches an area briefing. Briefings share the summary TTL.
func (c *Cache) SetBriefing(ctx context.Context, area string, value any) error {
	return c.set(ctx, briefingKey(area), value, c.summaryTTL)
}

// InvalidateArea drops cached entries that a new issue in the area makes
// stale. Summaries are city-wide, so they are dropped too.
func (c *Cache) InvalidateArea(ctx context.Context, area string) error {
	if c.redis == nil {
		return nil
	}

	keys := []string{riskKey(area), briefingKey(area)}
	var cursor uint64
	for {
		batch, cur, err := c.redis.Scan(ctx, cursor, "summary:*", 100).Result()
		if err != nil {
			return err
		}
		keys = append(keys, batch...)
		cursor = cur
		if cursor == 0 {
			break
		}
	}

	return c.redis.Del(ctx, keys...).Err()
}

func (c *Cache) get(ctx context.Context, key string, dest any) (bool, error) {
	if c.redis == nil {
		return false, nil
	}

	data, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("unmarshal cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.redis == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.redis.Set(ctx, key, data, ttl).Err()
}
