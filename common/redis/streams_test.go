package redis

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestPublishToStream_FlattensValues(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	id, err := PublishToStream(ctx, client, "test:stream", 0, map[string]interface{}{
		"label":   "POTAVEL",
		"count":   3,
		"ph":      7.25,
		"potable": true,
		"extra":   map[string]int{"a": 1},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := client.XRange(ctx, "test:stream", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "POTAVEL", msgs[0].Values["label"])
	assert.Equal(t, "3", msgs[0].Values["count"])
	assert.Equal(t, "7.25", msgs[0].Values["ph"])
	assert.Equal(t, "true", msgs[0].Values["potable"])
	assert.Equal(t, `{"a":1}`, msgs[0].Values["extra"])
}

func TestPublishJSONToStream(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	payload := map[string]interface{}{"ph": 7.0, "device_id": "esp32-01"}
	_, err := PublishJSONToStream(ctx, client, "water:readings:stream", 100, payload)
	require.NoError(t, err)

	msgs, err := client.XRange(ctx, "water:readings:stream", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &decoded))
	assert.Equal(t, "esp32-01", decoded["device_id"])
	assert.NotEmpty(t, msgs[0].Values["timestamp"])
}
