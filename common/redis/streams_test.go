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

func TestPublishJSONToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	require.NoError(t, Ping(ctx, client))

	id, err := PublishJSONToStream(ctx, client, "events", map[string]any{"n": 1}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	msgs, err := ReadRange(ctx, client, "events", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID)
	assert.Equal(t, "events", msgs[0].Stream)

	var payload map[string]int
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &payload))
	assert.Equal(t, 1, payload["n"])
	assert.NotEmpty(t, msgs[0].Values["timestamp"])
}

func TestReadRange_MissingStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	msgs, err := ReadRange(context.Background(), client, "nope", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestPublishJSONToStream_Unmarshalable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	_, err := PublishJSONToStream(context.Background(), client, "events", map[string]any{"ch": make(chan int)}, 0)
	assert.Error(t, err)
}
