package cache

import (
	"context"
	"testing"
	"time"

	"taskzone/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCachePutGet(t *testing.T) {
	t.Parallel()

	c := NewMemoryTaskCache(time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "t1")
	assert.False(t, ok, "empty cache should miss")

	task := &model.Task{ID: "t1", Title: "write report"}
	c.Put(ctx, "t1", task)

	got, ok := c.Get(ctx, "t1")
	require.True(t, ok)
	assert.Equal(t, "write report", got.Title)
}

func TestMemoryCacheReturnsCopy(t *testing.T) {
	t.Parallel()

	c := NewMemoryTaskCache(time.Minute)
	ctx := context.Background()

	c.Put(ctx, "t1", &model.Task{ID: "t1", Title: "original"})

	got, ok := c.Get(ctx, "t1")
	require.True(t, ok)
	got.Title = "mutated"

	again, ok := c.Get(ctx, "t1")
	require.True(t, ok)
	assert.Equal(t, "original", again.Title, "callers must not mutate the cached snapshot")
}

func TestMemoryCacheDetachesCollaborators(t *testing.T) {
	t.Parallel()

	c := NewMemoryTaskCache(time.Minute)
	ctx := context.Background()

	source := &model.Task{ID: "t1", Collaborators: []string{"alice", "bob"}}
	c.Put(ctx, "t1", source)

	// Mutating the slice that was handed to Put must not reach the snapshot.
	source.Collaborators[0] = "mallory"

	got, ok := c.Get(ctx, "t1")
	require.True(t, ok)
	assert.Equal(t, []string{"alice", "bob"}, got.Collaborators)

	// Nor must mutating a slice handed out by Get.
	got.Collaborators[1] = "mallory"

	again, ok := c.Get(ctx, "t1")
	require.True(t, ok)
	assert.Equal(t, []string{"alice", "bob"}, again.Collaborators)
}

func TestMemoryCacheExpiry(t *testing.T) {
	t.Parallel()

	c := NewMemoryTaskCache(30 * time.Millisecond)
	ctx := context.Background()

	c.Put(ctx, "t1", &model.Task{ID: "t1"})
	_, ok := c.Get(ctx, "t1")
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)
	_, ok = c.Get(ctx, "t1")
	assert.False(t, ok, "expired entry must read as absent")
}

func TestMemoryCachePutResetsTTL(t *testing.T) {
	t.Parallel()

	c := NewMemoryTaskCache(50 * time.Millisecond)
	ctx := context.Background()

	c.Put(ctx, "t1", &model.Task{ID: "t1"})
	time.Sleep(30 * time.Millisecond)
	c.Put(ctx, "t1", &model.Task{ID: "t1"})
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(ctx, "t1")
	assert.True(t, ok, "second Put should have reset the deadline")
}

func TestMemoryCacheInvalidate(t *testing.T) {
	t.Parallel()

	c := NewMemoryTaskCache(time.Minute)
	ctx := context.Background()

	c.Put(ctx, "t1", &model.Task{ID: "t1"})
	c.Invalidate(ctx, "t1")

	_, ok := c.Get(ctx, "t1")
	assert.False(t, ok)

	// Invalidating an absent key is a no-op.
	c.Invalidate(ctx, "does-not-exist")
}
