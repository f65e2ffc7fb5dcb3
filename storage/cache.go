package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"taskboard/domain"
)

const tasksCacheKey = "tasks:all"

type backend interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id int) (domain.Task, error)
	CreateTask(ctx context.Context, in domain.CreateTaskInput) (domain.Task, error)
	UpdateTask(ctx context.Context, id int, in domain.UpdateTaskInput) (domain.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// Cache wraps a store with a Redis-backed copy of the full task list. The list
// is the only cached read; every confirmed mutation evicts it so the next list
// is served fresh from the backend.
type Cache struct {
	base  backend
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base backend, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base storage is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

// ListTasks serves the cached task list when present, otherwise reads through
// to the backend and repopulates the cache.
func (c *Cache) ListTasks(ctx context.Context) ([]domain.Task, error) {
	if tasks, ok := c.loadFromCache(ctx); ok {
		return tasks, nil
	}

	tasks, err := c.base.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, tasks)
	return tasks, nil
}

// GetTask always reads through; single-row reads are cheap and keeping them
// out of the cache avoids a second invalidation key.
func (c *Cache) GetTask(ctx context.Context, id int) (domain.Task, error) {
	return c.base.GetTask(ctx, id)
}

func (c *Cache) CreateTask(ctx context.Context, in domain.CreateTaskInput) (domain.Task, error) {
	task, err := c.base.CreateTask(ctx, in)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return task, nil
}

func (c *Cache) UpdateTask(ctx context.Context, id int, in domain.UpdateTaskInput) (domain.Task, error) {
	task, err := c.base.UpdateTask(ctx, id, in)
	if err != nil {
		return domain.Task{}, err
	}
	c.evict(ctx)
	return task, nil
}

func (c *Cache) DeleteTask(ctx context.Context, id int) error {
	if err := c.base.DeleteTask(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *Cache) loadFromCache(ctx context.Context) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, tasksCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing storage without failing.
			_ = c.redis.Del(ctx, tasksCacheKey).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, tasksCacheKey).Err()
		return nil, false
	}
	return tasks, true
}

func (c *Cache) store(ctx context.Context, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, tasksCacheKey, data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, tasksCacheKey).Result()
}
