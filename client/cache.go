package client

import (
	"context"
	"sync"

	"taskboard/domain"
)

// Cache keeps a single cached copy of the task list and routes mutations
// through the API, invalidating the list after every confirmed mutation. There
// is no optimistic merge: consistency comes from a full refetch on the next
// read. Callers hold the handle explicitly; there is no package-level cache.
type Cache struct {
	api *Client

	mu    sync.Mutex
	tasks []domain.Task
	valid bool
}

// NewCache creates a cache over the given API client.
func NewCache(api *Client) *Cache {
	return &Cache{api: api}
}

// Tasks returns the cached task list, refetching from the API when the cache
// is empty or was invalidated by a mutation.
func (c *Cache) Tasks(ctx context.Context) ([]domain.Task, error) {
	c.mu.Lock()
	if c.valid {
		tasks := append([]domain.Task(nil), c.tasks...)
		c.mu.Unlock()
		return tasks, nil
	}
	c.mu.Unlock()

	tasks, err := c.api.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.tasks = tasks
	c.valid = true
	c.mu.Unlock()
	return append([]domain.Task(nil), tasks...), nil
}

// Invalidate drops the cached list so the next read refetches.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.tasks = nil
	c.valid = false
	c.mu.Unlock()
}

// CreateTask creates a task and invalidates the list on success. A failed
// mutation leaves the cache untouched.
func (c *Cache) CreateTask(ctx context.Context, in domain.CreateTaskInput) (domain.Task, error) {
	task, err := c.api.CreateTask(ctx, in)
	if err != nil {
		return domain.Task{}, err
	}
	c.Invalidate()
	return task, nil
}

// UpdateTask applies a partial update and invalidates the list on success.
func (c *Cache) UpdateTask(ctx context.Context, id int, in domain.UpdateTaskInput) (domain.Task, error) {
	task, err := c.api.UpdateTask(ctx, id, in)
	if err != nil {
		return domain.Task{}, err
	}
	c.Invalidate()
	return task, nil
}

// DeleteTask deletes a task and invalidates the list on success.
func (c *Cache) DeleteTask(ctx context.Context, id int) error {
	if err := c.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	c.Invalidate()
	return nil
}
