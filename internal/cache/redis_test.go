package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tavolo/seating/internal/cache"
)

func TestGetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewRedis(db)

	mock.ExpectGet("avail:ONLINE:date:1:2").SetVal(`[{"date":"2026-09-04"}]`)

	bs, err := c.Get(context.Background(), "avail:ONLINE:date:1:2")
	require.NoError(t, err)
	assert.Equal(t, `[{"date":"2026-09-04"}]`, string(bs))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewRedis(db)

	mock.ExpectGet("avail:ONLINE:date:1:2").RedisNil()

	_, err := c.Get(context.Background(), "avail:ONLINE:date:1:2")
	assert.ErrorIs(t, err, cache.ErrMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetWithTTL(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewRedis(db)

	mock.ExpectSetEx("avail:ONLINE:instant:1:2", []byte(`[]`), 3*time.Minute).SetVal("OK")

	err := c.Set(context.Background(), "avail:ONLINE:instant:1:2", []byte(`[]`), 3*time.Minute)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByPatternWalksCursor(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewRedis(db)

	mock.ExpectScan(0, "avail:ONLINE:*", 100).SetVal([]string{"avail:ONLINE:a", "avail:ONLINE:b"}, 7)
	mock.ExpectDel("avail:ONLINE:a", "avail:ONLINE:b").SetVal(2)
	mock.ExpectScan(7, "avail:ONLINE:*", 100).SetVal([]string{"avail:ONLINE:c"}, 0)
	mock.ExpectDel("avail:ONLINE:c").SetVal(1)

	err := c.DeleteByPattern(context.Background(), "avail:ONLINE:*")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByPatternNoMatches(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := cache.NewRedis(db)

	mock.ExpectScan(0, "avail:IN_STORE:*", 100).SetVal([]string{}, 0)

	err := c.DeleteByPattern(context.Background(), "avail:IN_STORE:*")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
