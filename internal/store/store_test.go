package store

import (
	"context"
	"testing"
	"time"

	"aquawatch/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisKV(client)
}

func TestRedisKV(t *testing.T) {
	ctx := context.Background()
	mr, kv := newRedisKV(t)

	_, err := kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Set(ctx, "a:1", "one", time.Minute))
	require.NoError(t, kv.Set(ctx, "a:2", "two", 0))
	require.NoError(t, kv.Set(ctx, "b:1", "three", 0))

	v, err := kv.Get(ctx, "a:1")
	require.NoError(t, err)
	assert.Equal(t, "one", v)

	keys, err := kv.ScanKeys(ctx, "a:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a:1", "a:2"}, keys)

	require.NoError(t, kv.Del(ctx, "a:2"))
	_, err = kv.Get(ctx, "a:2")
	assert.ErrorIs(t, err, ErrMiss)

	mr.FastForward(2 * time.Minute)
	_, err = kv.Get(ctx, "a:1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryKV(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	now := time.Now()
	kv.now = func() time.Time { return now }

	require.NoError(t, kv.Set(ctx, "x:1", "v", time.Second))
	require.NoError(t, kv.Set(ctx, "x:2", "w", 0))

	v, err := kv.Get(ctx, "x:1")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	keys, err := kv.ScanKeys(ctx, "x:*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x:1", "x:2"}, keys)

	now = now.Add(2 * time.Second)
	_, err = kv.Get(ctx, "x:1")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, kv.Del(ctx, "x:2"))
	keys, err = kv.ScanKeys(ctx, "x:*")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestMemoryKV_ScanMatchesLikeRedis(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryKV()
	_, rkv := newRedisKV(t)

	keys := []string{"dev:plant/1:latest", "dev:esp32:latest", "dev:a?b:latest", "other:1"}
	for _, k := range keys {
		require.NoError(t, mem.Set(ctx, k, "v", 0))
		require.NoError(t, rkv.Set(ctx, k, "v", 0))
	}

	for _, pattern := range []string{"dev:*:latest", "dev:?????:latest", "dev:[ep]*", "*"} {
		want, err := rkv.ScanKeys(ctx, pattern)
		require.NoError(t, err)
		got, err := mem.ScanKeys(ctx, pattern)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, got, pattern)
	}

	got, err := mem.ScanKeys(ctx, "dev:*:latest")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"dev:plant/1:latest", "dev:esp32:latest", "dev:a?b:latest"}, got)

	got, err = mem.ScanKeys(ctx, "dev:a\\?b:*")
	require.NoError(t, err)
	assert.Equal(t, []string{"dev:a?b:latest"}, got)

	_, err = mem.ScanKeys(ctx, "dev:[abc")
	assert.Error(t, err)
}

func TestStatisticsCache(t *testing.T) {
	ctx := context.Background()
	mr, kv := newRedisKV(t)
	cache := NewStatisticsCache(kv, 10*time.Second)

	_, err := cache.Get(ctx)
	assert.ErrorIs(t, err, ErrMiss)

	stats := &models.Statistics{
		TotalReadings:     4,
		PotableCount:      3,
		NonPotableCount:   1,
		PotablePercentage: 75,
		ParameterStats: map[string]models.ParameterStats{
			"ph": {Mean: 7, Min: 6.5, Max: 7.5},
		},
	}
	require.NoError(t, cache.Set(ctx, stats))
	assert.Equal(t, 10*time.Second, mr.TTL(statisticsKey))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, stats, got)

	require.NoError(t, cache.Invalidate(ctx))
	_, err = cache.Get(ctx)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestDeviceStateCache(t *testing.T) {
	ctx := context.Background()
	_, kv := newRedisKV(t)
	cache := NewDeviceStateCache(kv, 0)

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, cache.SetLatest(ctx, models.NewReadingView(models.Reading{ID: 1, Timestamp: ts, DeviceID: "esp32-b", PH: 7, Potability: 1})))
	require.NoError(t, cache.SetLatest(ctx, models.NewReadingView(models.Reading{ID: 2, Timestamp: ts, DeviceID: "esp32-a", PH: 5})))
	require.NoError(t, cache.SetLatest(ctx, models.NewReadingView(models.Reading{ID: 3, Timestamp: ts, DeviceID: "esp32-a", PH: 6})))
	// readings without a device are not tracked
	require.NoError(t, cache.SetLatest(ctx, models.NewReadingView(models.Reading{ID: 4, Timestamp: ts})))

	views, err := cache.ListLatest(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "esp32-a", views[0].DeviceID)
	assert.Equal(t, int64(3), views[0].ID)
	assert.Equal(t, models.LabelPotable, views[1].PotabilityLabel)
}

func TestDeviceStateCache_MemorySlashedDeviceID(t *testing.T) {
	ctx := context.Background()
	cache := NewDeviceStateCache(NewMemoryKV(), 0)

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, cache.SetLatest(ctx, models.NewReadingView(models.Reading{ID: 1, Timestamp: ts, DeviceID: "plant/1", PH: 7})))
	require.NoError(t, cache.SetLatest(ctx, models.NewReadingView(models.Reading{ID: 2, Timestamp: ts, DeviceID: "esp32", PH: 7})))

	views, err := cache.ListLatest(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "esp32", views[0].DeviceID)
	assert.Equal(t, "plant/1", views[1].DeviceID)
}
