package interaction

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testStream = "test:interactions"

func setupRedisSink(t *testing.T) (*RedisSink, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	cfg.Stream = testStream

	sink, err := NewRedisSink(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	reader := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = reader.Close() })
	return sink, reader
}

func readStream(t *testing.T, reader *redis.Client) []redis.XMessage {
	t.Helper()
	msgs, err := reader.XRange(context.Background(), testStream, "-", "+").Result()
	require.NoError(t, err)
	return msgs
}

func decodeStored(t *testing.T, msg redis.XMessage) Record {
	t.Helper()
	raw, ok := msg.Values["record"].(string)
	require.True(t, ok)
	var stored Record
	require.NoError(t, json.Unmarshal([]byte(raw), &stored))
	return stored
}

func TestRedisSink_AppendsToStream(t *testing.T) {
	sink, reader := setupRedisSink(t)

	rec := NewRecord("responses", "/v1/responses").
		WithMeta("phase", "stream_done").
		WithMeta("cost_usd", 0.000021)
	sink.Log(context.Background(), rec)

	msgs := readStream(t, reader)
	require.Len(t, msgs, 1)
	assert.Equal(t, "responses", msgs[0].Values["api"])
	assert.Equal(t, "/v1/responses", msgs[0].Values["endpoint"])

	stored := decodeStored(t, msgs[0])
	assert.Equal(t, rec.ID, stored.ID)
	assert.Equal(t, "stream_done", stored.Metadata["phase"])
}

func TestRedisSink_PreservesOrder(t *testing.T) {
	sink, reader := setupRedisSink(t)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		sink.Log(ctx, NewRecord("responses", "/v1/responses").WithMeta("sequence", i))
	}

	msgs := readStream(t, reader)
	require.Len(t, msgs, 5)
	for i, msg := range msgs {
		stored := decodeStored(t, msg)
		assert.Equal(t, float64(i), stored.Metadata["sequence"])
	}
}

func TestRedisSink_ErrorRecord(t *testing.T) {
	sink, reader := setupRedisSink(t)

	rec := NewRecord("video", "/v1/videos")
	rec.Error = &ErrorDetail{Message: "input rejected", Code: "moderation_blocked", Status: 400}
	sink.Log(context.Background(), rec)

	msgs := readStream(t, reader)
	require.Len(t, msgs, 1)

	stored := decodeStored(t, msgs[0])
	require.NotNil(t, stored.Error)
	assert.Equal(t, "moderation_blocked", stored.Error.Code)
	assert.Equal(t, 400, stored.Error.Status)
}

func TestNewRedisSink_ConnectFailure(t *testing.T) {
	cfg := DefaultRedisConfig()
	cfg.Addr = "127.0.0.1:1" // 不可达端口

	_, err := NewRedisSink(cfg, zaptest.NewLogger(t))
	require.Error(t, err)
}
