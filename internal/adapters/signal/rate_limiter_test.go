package signal

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomRateLimiter_SlidingWindow(t *testing.T) {
	ctx := context.Background()
	rl := NewRoomRateLimiter(2, time.Second)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for range 2 {
		ok, err := rl.Allow(ctx, "u1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := rl.Allow(ctx, "u1")
	assert.False(t, ok)

	ok, _ = rl.Allow(ctx, "u2")
	assert.True(t, ok, "keys are independent")

	now = now.Add(1100 * time.Millisecond)
	ok, _ = rl.Allow(ctx, "u1")
	assert.True(t, ok, "window slid past old attempts")
}

func TestRoomRateLimiter_ForgetsIdleKeys(t *testing.T) {
	ctx := context.Background()
	rl := NewRoomRateLimiter(2, time.Second)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for _, key := range []string{"sid-1", "sid-2", "u1"} {
		_, err := rl.Allow(ctx, key)
		require.NoError(t, err)
	}
	assert.Len(t, rl.history, 3)

	now = now.Add(500 * time.Millisecond)
	_, _ = rl.Allow(ctx, "u1")
	assert.Len(t, rl.history, 3, "nothing expires inside the window")

	now = now.Add(1200 * time.Millisecond)
	_, _ = rl.Allow(ctx, "u2")
	assert.Len(t, rl.history, 1)
	assert.Contains(t, rl.history, "u2")
}

func TestRedisRateLimiter_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	_, err := NewRedisRateLimiter(client, "test:", 1, time.Second).Allow(context.Background(), "u1")
	assert.Error(t, err)
}

func TestRedisRateLimiter_Integration(t *testing.T) {
	url := os.Getenv("CAMPFIRE_TEST_REDIS_URL")
	if url == "" {
		t.Skip("CAMPFIRE_TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}

	rl := NewRedisRateLimiter(client, "campfire-test:", 3, time.Minute)
	key := uuid.NewString()
	t.Cleanup(func() { _ = rl.Reset(ctx, key) })

	for range 3 {
		ok, err := rl.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := rl.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}
