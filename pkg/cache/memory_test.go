package cache_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/diillson/user-service-go/internal/domain/model"
	"github.com/diillson/user-service-go/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute, 2*time.Minute, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	user := model.User{ID: "abc", Username: "maria", Email: "maria@example.com", Role: model.RoleUser}
	require.NoError(t, c.Set(ctx, "user:id:abc", &user, time.Minute))

	var got model.User
	found, err := c.Get(ctx, "user:id:abc", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, user, got)

	require.NoError(t, c.Delete(ctx, "user:id:abc"))

	found, err = c.Get(ctx, "user:id:abc", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_Clear(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute, 2*time.Minute, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, c.Clear(ctx))

	var got string
	found, err := c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryCache_ConcurrentAccess(t *testing.T) {
	c := cache.NewMemoryCache(time.Minute, 2*time.Minute, nil, zaptest.NewLogger(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)

		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n)
			_ = c.Set(ctx, key, fmt.Sprintf("value-%d", n), time.Minute)
		}(i)

		go func(n int) {
			defer wg.Done()
			var got string
			_, _ = c.Get(ctx, fmt.Sprintf("key-%d", n), &got)
		}(i)
	}
	wg.Wait()

	require.NoError(t, c.Ping(ctx))
}
