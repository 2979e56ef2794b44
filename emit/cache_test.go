package emit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/richarddahl/sqlemit/emit"
)

type memoryCache struct {
	data map[string][]byte
	gets int
	sets int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.gets++
	return c.data[key], nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.sets++
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	in := &emit.Snapshot{
		Label:     "orders",
		Rendered:  []emit.Rendered{{Name: "a", Text: "CREATE TABLE a ();"}},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	b, err := emit.EncodeSnapshot(in)
	require.NoError(t, err)
	out, err := emit.DecodeSnapshot(b)
	require.NoError(t, err)
	assert.Equal(t, in.Label, out.Label)
	assert.Equal(t, in.Rendered, out.Rendered)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
}

func TestRenderCachedMissThenHit(t *testing.T) {
	t.Parallel()

	cache := newMemoryCache()
	e := emit.Static("orders", stmt(t, "b", "a"), stmt(t, "a"))

	first, err := emit.RenderCached(context.Background(), cache, e, time.Minute)
	require.NoError(t, err)
	require.Len(t, first.Rendered, 2)
	assert.Equal(t, "a", first.Rendered[0].Name)
	assert.Equal(t, "b", first.Rendered[1].Name)
	assert.Equal(t, 1, cache.sets)

	second, err := emit.RenderCached(context.Background(), cache, e, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, first.Rendered, second.Rendered)
	assert.Equal(t, 1, cache.sets, "hit must not re-render")
}

func TestRenderCachedCorruptEntry(t *testing.T) {
	t.Parallel()

	cache := newMemoryCache()
	e := emit.Static("orders", stmt(t, "a"))
	key := emit.SnapshotKey("orders")
	cache.data[key] = []byte("not msgpack")

	s, err := emit.RenderCached(context.Background(), cache, e, time.Minute)
	require.NoError(t, err)
	require.Len(t, s.Rendered, 1)
	assert.Equal(t, "a", s.Rendered[0].Name)

	// The corrupt entry was replaced with a decodable snapshot.
	got, err := emit.DecodeSnapshot(cache.data[key])
	require.NoError(t, err)
	assert.Equal(t, "orders", got.Label)
}

func TestRenderCachedGenerateFailure(t *testing.T) {
	t.Parallel()

	cache := newMemoryCache()
	e := emit.Static("orders", stmt(t, "b", "missing"))
	_, err := emit.RenderCached(context.Background(), cache, e, time.Minute)
	require.Error(t, err)
	assert.Equal(t, 0, cache.sets)
}
