// Package cache keeps rendered leaderboard pages in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/contesthub/models"
	"github.com/redis/go-redis/v9"
)

const leaderboardPrefix = "leaderboard:"

type LeaderboardCache interface {
	Get(ctx context.Context, page, limit int) (*models.LeaderboardPage, bool, error)
	Set(ctx context.Context, page *models.LeaderboardPage) error
	Invalidate(ctx context.Context) error
}

type redisLeaderboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLeaderboardCache(client *redis.Client, ttl time.Duration) LeaderboardCache {
	return &redisLeaderboardCache{client: client, ttl: ttl}
}

func pageKey(page, limit int) string {
	return fmt.Sprintf("%spage:%d:%d", leaderboardPrefix, page, limit)
}

func (c *redisLeaderboardCache) Get(ctx context.Context, page, limit int) (*models.LeaderboardPage, bool, error) {
	raw, err := c.client.Get(ctx, pageKey(page, limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read leaderboard page from cache: %w", err)
	}

	var p models.LeaderboardPage
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached leaderboard page: %w", err)
	}
	return &p, true, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, p *models.LeaderboardPage) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode leaderboard page: %w", err)
	}
	if err := c.client.Set(ctx, pageKey(p.Page, p.Limit), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write leaderboard page to cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached page.
func (c *redisLeaderboardCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, leaderboardPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan leaderboard keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete leaderboard keys: %w", err)
	}
	return nil
}

type noopLeaderboardCache struct{}

// NewNoopLeaderboardCache never stores anything; used when Redis is not configured.
func NewNoopLeaderboardCache() LeaderboardCache {
	return noopLeaderboardCache{}
}

func (noopLeaderboardCache) Get(context.Context, int, int) (*models.LeaderboardPage, bool, error) {
	return nil, false, nil
}

func (noopLeaderboardCache) Set(context.Context, *models.LeaderboardPage) error { return nil }

func (noopLeaderboardCache) Invalidate(context.Context) error { return nil }
