package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, "k", sample{Name: "ABC123", Count: 5}, time.Minute)

	var got sample
	require.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, sample{Name: "ABC123", Count: 5}, got)
}

func TestMemoryCacheMiss(t *testing.T) {
	var got sample
	require.False(t, NewMemoryCache().Get(context.Background(), "absent", &got))
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, "k", sample{Count: 1}, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	var got sample
	require.False(t, c.Get(ctx, "k", &got))
}

func TestMemoryCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, "k", sample{Count: 1}, time.Minute)
	c.Delete(ctx, "k")

	var got sample
	require.False(t, c.Get(ctx, "k", &got))
}

func TestMemoryCacheFlushClearsEverything(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	c.Set(ctx, "a", sample{Count: 1}, time.Minute)
	c.Set(ctx, "b", sample{Count: 2}, time.Minute)
	c.Flush(ctx)

	var got sample
	assert.False(t, c.Get(ctx, "a", &got))
	assert.False(t, c.Get(ctx, "b", &got))
}

func TestMemoryCacheValueDoesNotAliasCaller(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()

	v := sample{Name: "ABC123", Count: 5}
	c.Set(ctx, "k", v, time.Minute)
	v.Count = 99

	var got sample
	require.True(t, c.Get(ctx, "k", &got))
	assert.EqualValues(t, 5, got.Count)
}
