package external

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ddi-checker/internal/domain"
)

func TestNewCacheClient_InvalidURL(t *testing.T) {
	_, err := NewCacheClient(context.Background(), domain.CacheConfig{RedisURL: "not a url"})
	assert.ErrorContains(t, err, "failed to parse Redis URL")
}

func TestSuggestionKey(t *testing.T) {
	assert.Equal(t, suggestionKey("warf"), suggestionKey("warf"))
	assert.NotEqual(t, suggestionKey("warf"), suggestionKey("warfa"))
	assert.Regexp(t, `^suggest:[0-9a-f]{16}$`, suggestionKey("sodium chloride"))
}

// Requires a running Redis, e.g. TEST_REDIS_URL=redis://localhost:6379/15
func TestCacheClient_Redis(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	ctx := context.Background()
	cache, err := NewCacheClient(ctx, domain.CacheConfig{RedisURL: url, RedisTTL: time.Minute})
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Ping(ctx))
	require.NoError(t, cache.InvalidateSuggestions(ctx))

	_, ok, err := cache.GetSuggestions(ctx, "warf")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.SetSuggestions(ctx, "warf", []string{"Warfarin"}, 0))
	names, ok, err := cache.GetSuggestions(ctx, "warf")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"Warfarin"}, names)

	require.NoError(t, cache.InvalidateSuggestions(ctx))
	_, ok, err = cache.GetSuggestions(ctx, "warf")
	require.NoError(t, err)
	assert.False(t, ok)
}
