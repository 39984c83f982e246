package cache

import (
	"context"
	"sync"
	"time"

	"taskzone/internal/domain/model"
)

// TaskCache is a best-effort accelerator for single-task reads. It is never
// a source of truth: losing it only costs latency. Implementations must keep
// per-key operations atomic; no cross-key coordination is required.
type TaskCache interface {
	Get(ctx context.Context, taskID string) (*model.Task, bool)
	Put(ctx context.Context, taskID string, task *model.Task)
	Invalidate(ctx context.Context, taskID string)
}

type memoryEntry struct {
	task      model.Task
	expiresAt time.Time
}

// memoryTaskCache is the process-local default. Expired entries are dropped
// lazily on access; an expired entry is indistinguishable from a miss.
type memoryTaskCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

func NewMemoryTaskCache(ttl time.Duration) TaskCache {
	return &memoryTaskCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (c *memoryTaskCache) Get(_ context.Context, taskID string) (*model.Task, bool) {
	c.mu.RLock()
	entry, ok := c.entries[taskID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock: a concurrent Put may have renewed it.
		if current, still := c.entries[taskID]; still && time.Now().After(current.expiresAt) {
			delete(c.entries, taskID)
		}
		c.mu.Unlock()
		return nil, false
	}
	task := cloneTask(entry.task)
	return &task, true
}

func (c *memoryTaskCache) Put(_ context.Context, taskID string, task *model.Task) {
	if task == nil {
		return
	}
	snapshot := cloneTask(*task)
	c.mu.Lock()
	c.entries[taskID] = memoryEntry{task: snapshot, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// cloneTask detaches the collaborators slice so cached snapshots and
// caller-held tasks cannot alias the same backing array.
func cloneTask(task model.Task) model.Task {
	if task.Collaborators != nil {
		task.Collaborators = append([]string(nil), task.Collaborators...)
	}
	return task
}

func (c *memoryTaskCache) Invalidate(_ context.Context, taskID string) {
	c.mu.Lock()
	delete(c.entries, taskID)
	c.mu.Unlock()
}
