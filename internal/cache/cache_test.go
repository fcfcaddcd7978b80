package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/shrimpsizemoose/roster/internal/models"
	"github.com/shrimpsizemoose/roster/internal/store/sqlite"
)

func sampleStudents() []models.Student {
	return []models.Student{
		{ID: "sv001", Name: "An", DOB: models.NewDate(2001, time.January, 2), SchoolYear: "2019", Email: "a@b.com", Phone: "0912345678"},
		{ID: "sv002", Name: "Bình", Email: "b@c.vn", Phone: "+84912345678"},
	}
}

func exerciseCache(t *testing.T, c SnapshotCache) {
	ctx := context.Background()

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "nothing cached yet")

	require.NoError(t, c.Save(ctx, sampleStudents()))
	got, err = c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleStudents(), got)

	require.NoError(t, c.Save(ctx, nil))
	got, err = c.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got, "an empty list is still a snapshot")
	assert.Empty(t, got)
}

func TestSQLCache(t *testing.T) {
	s, err := sqlite.NewSQLiteStore(":memory:", "../../migrations")
	require.NoError(t, err)

	c := NewSQLCache(s, "")
	defer c.Close()

	exerciseCache(t, c)
}

func TestRedisCache(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	defer container.Terminate(ctx)

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	c, err := NewRedisCache(url, "test:snapshot", time.Minute)
	require.NoError(t, err)
	defer c.Close()

	exerciseCache(t, c)

	ttl, err := c.redis.TTL(ctx, "test:snapshot").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache("not a url", "", 0)
	assert.Error(t, err)
}
