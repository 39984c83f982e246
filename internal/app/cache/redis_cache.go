package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"taskzone/internal/domain/model"

	"github.com/redis/go-redis/v9"
)

// redisTaskCache shares snapshots across processes. Errors degrade to a
// cache miss so Redis outages never fail a request.
type redisTaskCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTaskCache(rdb *redis.Client, ttl time.Duration) TaskCache {
	return &redisTaskCache{rdb: rdb, ttl: ttl}
}

func taskKey(taskID string) string {
	return "task:" + taskID
}

func (c *redisTaskCache) Get(ctx context.Context, taskID string) (*model.Task, bool) {
	payload, err := c.rdb.Get(ctx, taskKey(taskID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("WARN: redis cache get for task %s: %v", taskID, err)
		}
		return nil, false
	}
	task := &model.Task{}
	if err := json.Unmarshal(payload, task); err != nil {
		log.Printf("WARN: redis cache decode for task %s: %v", taskID, err)
		return nil, false
	}
	return task, true
}

func (c *redisTaskCache) Put(ctx context.Context, taskID string, task *model.Task) {
	if task == nil {
		return
	}
	payload, err := json.Marshal(task)
	if err != nil {
		log.Printf("WARN: redis cache encode for task %s: %v", taskID, err)
		return
	}
	if err := c.rdb.Set(ctx, taskKey(taskID), payload, c.ttl).Err(); err != nil {
		log.Printf("WARN: redis cache set for task %s: %v", taskID, err)
	}
}

func (c *redisTaskCache) Invalidate(ctx context.Context, taskID string) {
	if err := c.rdb.Del(ctx, taskKey(taskID)).Err(); err != nil {
		log.Printf("WARN: redis cache invalidate for task %s: %v", taskID, err)
	}
}
