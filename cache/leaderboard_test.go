package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Dosada05/contesthub/models"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, LeaderboardCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(RedisConfig{Addr: mr.Addr()}, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisLeaderboardCache(client, ttl)
}

func samplePage(page, limit int) *models.LeaderboardPage {
	return &models.LeaderboardPage{
		Entries: []models.LeaderboardEntry{
			{Rank: 1, UserID: 4, Name: "ana", Wins: 3, Participated: 4, WinRate: 0.75, Role: models.RoleUser},
		},
		Page:  page,
		Limit: limit,
		Total: 1,
		Pages: 1,
	}
}

func TestRedisLeaderboardCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestCache(t, time.Minute)

	_, ok, err := c.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, samplePage(1, 10)))
	assert.True(t, mr.Exists("leaderboard:page:1:10"))

	got, ok, err := c.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, samplePage(1, 10), got)
}

func TestRedisLeaderboardCacheExpires(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestCache(t, 30*time.Second)

	require.NoError(t, c.Set(ctx, samplePage(1, 10)))
	mr.FastForward(31 * time.Second)

	_, ok, err := c.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisLeaderboardCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestCache(t, time.Minute)

	require.NoError(t, c.Set(ctx, samplePage(1, 10)))
	require.NoError(t, c.Set(ctx, samplePage(2, 10)))
	require.NoError(t, mr.Set("session:abc", "keep"))

	require.NoError(t, c.Invalidate(ctx))

	assert.False(t, mr.Exists("leaderboard:page:1:10"))
	assert.False(t, mr.Exists("leaderboard:page:2:10"))
	assert.True(t, mr.Exists("session:abc"))

	require.NoError(t, c.Invalidate(ctx))
}

func TestRedisLeaderboardCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	mr, c := newTestCache(t, time.Minute)

	require.NoError(t, mr.Set("leaderboard:page:1:10", "{not json"))
	_, ok, err := c.Get(ctx, 1, 10)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNoopLeaderboardCache(t *testing.T) {
	ctx := context.Background()
	c := NewNoopLeaderboardCache()

	require.NoError(t, c.Set(ctx, samplePage(1, 10)))
	_, ok, err := c.Get(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, c.Invalidate(ctx))
}
