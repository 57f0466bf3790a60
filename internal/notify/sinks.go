package notify

import (
	"context"
	"errors"

	commonredis "aquawatch/common/redis"
	"aquawatch/internal/models"
	"aquawatch/internal/store"

	"github.com/go-redis/redis/v8"
)

// StreamSink appends every event to a Redis stream for downstream consumers.
type StreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewStreamSink creates a sink writing to stream, trimmed to about maxLen.
func NewStreamSink(client *redis.Client, stream string, maxLen int64) *StreamSink {
	return &StreamSink{client: client, stream: stream, maxLen: maxLen}
}

func (s *StreamSink) Name() string { return "redis-stream" }

func (s *StreamSink) Handle(ctx context.Context, evt models.ReadingEvent) error {
	_, err := commonredis.PublishJSONToStream(ctx, s.client, s.stream, s.maxLen, evt)
	return err
}

// CacheSink invalidates cached statistics and records the device's latest
// reading.
type CacheSink struct {
	stats   *store.StatisticsCache
	devices *store.DeviceStateCache
}

func NewCacheSink(stats *store.StatisticsCache, devices *store.DeviceStateCache) *CacheSink {
	return &CacheSink{stats: stats, devices: devices}
}

func (s *CacheSink) Name() string { return "cache" }

func (s *CacheSink) Handle(ctx context.Context, evt models.ReadingEvent) error {
	var errs []error
	if s.stats != nil {
		errs = append(errs, s.stats.Invalidate(ctx))
	}
	if s.devices != nil {
		errs = append(errs, s.devices.SetLatest(ctx, models.NewReadingView(evt.Reading)))
	}
	return errors.Join(errs...)
}

// SinkFunc adapts a function to Sink.
type SinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, evt models.ReadingEvent) error
}

func (f SinkFunc) Name() string { return f.SinkName }

func (f SinkFunc) Handle(ctx context.Context, evt models.ReadingEvent) error {
	return f.Fn(ctx, evt)
}
