package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NeuralTrust/SafeChat/pkg/infra/cache"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SetNX(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	c := cache.NewFromRedis(redisClient)

	mock.ExpectSetNX("dedup:key", "1", time.Minute).SetVal(true)
	mock.ExpectSetNX("dedup:key", "1", time.Minute).SetVal(false)

	ok, err := c.SetNX(context.Background(), "dedup:key", "1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(context.Background(), "dedup:key", "1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_Ping(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	c := cache.NewFromRedis(redisClient)

	mock.ExpectPing().SetVal("PONG")
	mock.ExpectPing().SetErr(errors.New("connection refused"))

	assert.NoError(t, c.Ping(context.Background()))
	assert.Error(t, c.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClient_Publish(t *testing.T) {
	redisClient, mock := redismock.NewClientMock()
	c := cache.NewFromRedis(redisClient)

	mock.ExpectPublish("events", []byte(`{"a":1}`)).SetVal(1)
	mock.ExpectPublish("events", []byte(`{"a":2}`)).SetErr(errors.New("connection reset"))

	require.NoError(t, c.Publish(context.Background(), "events", []byte(`{"a":1}`)))
	assert.Error(t, c.Publish(context.Background(), "events", []byte(`{"a":2}`)))
	assert.NoError(t, mock.ExpectationsWereMet())
}
