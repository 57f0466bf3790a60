package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"aquawatch/internal/models"
)

const (
	statisticsKey      = "water:stats:summary"
	deviceLatestPrefix = "water:device:"
	deviceLatestSuffix = ":latest"
)

// StatisticsCache caches the computed dashboard statistics.
type StatisticsCache struct {
	kv  KV
	ttl time.Duration
}

func NewStatisticsCache(kv KV, ttl time.Duration) *StatisticsCache {
	return &StatisticsCache{kv: kv, ttl: ttl}
}

// Get returns ErrMiss when nothing is cached.
func (c *StatisticsCache) Get(ctx context.Context) (*models.Statistics, error) {
	raw, err := c.kv.Get(ctx, statisticsKey)
	if err != nil {
		return nil, err
	}
	var stats models.Statistics
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return nil, fmt.Errorf("failed to decode cached statistics: %w", err)
	}
	return &stats, nil
}

func (c *StatisticsCache) Set(ctx context.Context, stats *models.Statistics) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, statisticsKey, string(data), c.ttl)
}

func (c *StatisticsCache) Invalidate(ctx context.Context) error {
	return c.kv.Del(ctx, statisticsKey)
}

// DeviceStateCache keeps the most recent reading per device.
type DeviceStateCache struct {
	kv  KV
	ttl time.Duration
}

// NewDeviceStateCache creates the cache; ttl 0 keeps entries forever.
func NewDeviceStateCache(kv KV, ttl time.Duration) *DeviceStateCache {
	return &DeviceStateCache{kv: kv, ttl: ttl}
}

func deviceKey(deviceID string) string {
	return deviceLatestPrefix + deviceID + deviceLatestSuffix
}

func (c *DeviceStateCache) SetLatest(ctx context.Context, view models.ReadingView) error {
	if view.DeviceID == "" {
		return nil
	}
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, deviceKey(view.DeviceID), string(data), c.ttl)
}

func (c *DeviceStateCache) GetLatest(ctx context.Context, deviceID string) (*models.ReadingView, error) {
	raw, err := c.kv.Get(ctx, deviceKey(deviceID))
	if err != nil {
		return nil, err
	}
	var view models.ReadingView
	if err := json.Unmarshal([]byte(raw), &view); err != nil {
		return nil, fmt.Errorf("failed to decode device state: %w", err)
	}
	return &view, nil
}

// ListLatest returns the latest reading of every known device, sorted by
// device id.
func (c *DeviceStateCache) ListLatest(ctx context.Context) ([]models.ReadingView, error) {
	keys, err := c.kv.ScanKeys(ctx, deviceLatestPrefix+"*"+deviceLatestSuffix)
	if err != nil {
		return nil, err
	}

	views := make([]models.ReadingView, 0, len(keys))
	for _, key := range keys {
		id := strings.TrimSuffix(strings.TrimPrefix(key, deviceLatestPrefix), deviceLatestSuffix)
		view, err := c.GetLatest(ctx, id)
		if errors.Is(err, ErrMiss) {
			continue
		}
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	sort.Slice(views, func(i, j int) bool { return views[i].DeviceID < views[j].DeviceID })
	return views, nil
}
