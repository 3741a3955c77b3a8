package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestKeyBuilders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "campaign:analytics:v1:camp_1", AnalyticsKey("camp_1"))
	assert.Equal(t, "campaigns:featured:v1", FeaturedKey())
	assert.Equal(t, "org:search:v1:red cross|CA|health", OrgSearchKey("red cross|CA|health"))
}

func TestNilServiceIsNoop(t *testing.T) {
	t.Parallel()

	var c *CacheService
	ctx := context.Background()

	var dest map[string]string
	found, err := c.GetJSON(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.SetJSON(ctx, "k", map[string]string{"a": "b"}, time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))
	require.NoError(t, c.Close())

	hits, misses := c.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestStatsConcurrent(t *testing.T) {
	t.Parallel()

	c := NewCacheServiceFromClient(nil, zap.NewNop())

	// Handlers bump the counters from many goroutines while the
	// /metrics scrape reads them; totals must not be lost.
	const workers = 16
	const perWorker = 100

	var wg sync.WaitGroup
	wg.Add(workers + 1)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				c.hits.Add(1)
				c.misses.Add(1)
			}
		}()
	}
	go func() {
		defer wg.Done()
		for i := 0; i < perWorker; i++ {
			_, _ = c.Stats()
		}
	}()
	wg.Wait()

	hits, misses := c.Stats()
	assert.Equal(t, int64(workers*perWorker), hits)
	assert.Equal(t, int64(workers*perWorker), misses)
}
