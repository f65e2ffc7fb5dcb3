package domain

// Status is the closed set of board columns a task can occupy.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the three recognized statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task represents a single board item.
type Task struct {
	ID          int     `json:"id" gorm:"primaryKey"`
	Title       string  `json:"title" gorm:"not null"`
	Description *string `json:"description"`
	Status      Status  `json:"status" gorm:"type:varchar(50);not null;default:'todo'"`
}

// Validate checks an entity received over the wire. Persisted tasks always
// satisfy these rules, so a violation means the payload is malformed.
func (t Task) Validate() error {
	if t.ID <= 0 {
		return &ValidationError{Message: "id must be a positive integer", Field: "id"}
	}
	if t.Title == "" {
		return &ValidationError{Message: "title must not be empty", Field: "title"}
	}
	if !t.Status.Valid() {
		return &ValidationError{Message: "status must be one of todo, in_progress, done", Field: "status"}
	}
	return nil
}
