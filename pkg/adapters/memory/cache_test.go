package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_Contract(t *testing.T) {
	ports.RunAnswerCacheContract(t, memory.NewCache())
}

func TestCache_TTL(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache := memory.NewCache(
		memory.WithCacheTTL(time.Minute),
		memory.WithCacheClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "q", domain.AskResult{Found: true, Answer: "a"}))

	_, ok, err := cache.Get(ctx, "q")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = cache.Get(ctx, "q")
	require.NoError(t, err)
	assert.False(t, ok, "entry expires once the TTL has elapsed")
	assert.Zero(t, cache.Len())
}

func TestCache_Isolation(t *testing.T) {
	cache := memory.NewCache()
	ctx := context.Background()

	res := domain.AskResult{Found: true, Answer: "a", Options: []string{"searchWeb"}}
	require.NoError(t, cache.Put(ctx, "q", res))
	res.Options[0] = "mutated"

	got, ok, err := cache.Get(ctx, "q")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"searchWeb"}, got.Options)
}
