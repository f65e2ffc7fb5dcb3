package storage

import (
	"context"
	"errors"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"taskboard/domain"
)

// ErrTaskNotFound is returned when the referenced task id does not exist.
var ErrTaskNotFound = errors.New("task not found")

// Store provides durable CRUD operations over tasks on a relational backend.
type Store struct {
	db *gorm.DB
}

// New connects to the relational backend using the given connection string and
// ensures the tasks table exists. Connection failures are returned immediately
// so the caller can fail fast at boot.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewWithDB(db)
}

// NewWithDB wraps an already-open gorm handle. Used by tests to run against an
// in-memory database.
func NewWithDB(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&domain.Task{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// ListTasks retrieves every task. An empty board yields an empty slice, never
// an error.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks := []domain.Task{}
	if err := s.db.WithContext(ctx).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask retrieves a single task by id, reporting ErrTaskNotFound for absent
// ids.
func (s *Store) GetTask(ctx context.Context, id int) (domain.Task, error) {
	var task domain.Task
	err := s.db.WithContext(ctx).First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Task{}, ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// CreateTask persists a new task. The store assigns the id and defaults the
// status to todo when the input omits it. Input is assumed validated.
func (s *Store) CreateTask(ctx context.Context, in domain.CreateTaskInput) (domain.Task, error) {
	task := domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
	}
	if task.Status == "" {
		task.Status = domain.StatusTodo
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// UpdateTask applies only the supplied fields to an existing task and returns
// the updated entity. Absent ids report ErrTaskNotFound.
func (s *Store) UpdateTask(ctx context.Context, id int, in domain.UpdateTaskInput) (domain.Task, error) {
	task, err := s.GetTask(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}
	if in.Empty() {
		return task, nil
	}

	if in.Title != nil {
		task.Title = *in.Title
	}
	if in.Description != nil {
		task.Description = in.Description
	}
	if in.Status != nil {
		task.Status = *in.Status
	}
	// Full-row write: concurrent updates resolve as last write wins.
	if err := s.db.WithContext(ctx).Save(&task).Error; err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task permanently. Deleting an absent id reports
// ErrTaskNotFound, matching the get/update semantics.
func (s *Store) DeleteTask(ctx context.Context, id int) error {
	res := s.db.WithContext(ctx).Delete(&domain.Task{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
