package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/JerraForge/hydroponic-backend/internal/domain"

	rediscommon "github.com/JerraForge/hydroponic-backend/common/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisMeasurementStream_Publish(t *testing.T) {
	client := newTestRedis(t)
	pub := NewRedisMeasurementStream(client, "hydroponic:measurements:stream", 1000, zap.NewNop())

	system := &domain.System{SystemID: "sys-1", OwnerID: "alice"}
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ms := []*domain.Measurement{
		{ID: 1, SystemID: "sys-1", Timestamp: ts, Readings: domain.Readings{PH: 6.5, Temperature: 21, TDS: 800}},
		{ID: 2, SystemID: "sys-1", Timestamp: ts, Readings: domain.Readings{PH: 6.6, Temperature: 21.2, TDS: 810}},
	}
	require.NoError(t, pub.PublishMeasurementsCreated(context.Background(), system, ms))

	msgs, err := rediscommon.ReadRange(context.Background(), client, "hydroponic:measurements:stream", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	raw, ok := msgs[0].Values["data"].(string)
	require.True(t, ok)
	var event MeasurementCreatedEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &event))

	assert.Equal(t, EventMeasurementCreated, event.Event)
	assert.Equal(t, "sys-1", event.SystemID)
	assert.Equal(t, "alice", event.OwnerID)
	require.Len(t, event.Measurements, 2)
	assert.Equal(t, "2024-06-01T12:00:00Z", event.Measurements[0]["timestamp"])
	assert.Equal(t, 810.0, event.Measurements[1]["tds"])
}

func TestRedisMeasurementStream_EmptyBatchIsNoop(t *testing.T) {
	client := newTestRedis(t)
	pub := NewRedisMeasurementStream(client, "s", 0, zap.NewNop())

	require.NoError(t, pub.PublishMeasurementsCreated(context.Background(), &domain.System{SystemID: "x"}, nil))

	msgs, err := rediscommon.ReadRange(context.Background(), client, "s", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestRedisMeasurementStream_ConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	pub := NewRedisMeasurementStream(client, "s", 0, zap.NewNop())
	err := pub.PublishMeasurementsCreated(context.Background(), &domain.System{SystemID: "x"}, []*domain.Measurement{{ID: 1}})
	assert.Error(t, err)
}
