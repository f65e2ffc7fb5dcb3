package api

import (
	"context"

	"taskboard/domain"
)

// Storage abstracts persistence for handlers.
type Storage interface {
	ListTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id int) (domain.Task, error)
	CreateTask(ctx context.Context, in domain.CreateTaskInput) (domain.Task, error)
	UpdateTask(ctx context.Context, id int, in domain.UpdateTaskInput) (domain.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

type errorResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type healthResponse struct {
	Status string `json:"status"`
}
