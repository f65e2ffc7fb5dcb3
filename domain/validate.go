package domain

// ValidationError reports client-supplied data that violates the task schema.
// Field names the offending field when one can be singled out.
type ValidationError struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CreateTaskInput is the accepted payload for creating a task.
type CreateTaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      Status  `json:"status"`
}

// Validate applies the creation schema: title is required, status is optional
// but must be a recognized value when present. Runs on both the server and the
// client so the two sides cannot drift.
func (in CreateTaskInput) Validate() *ValidationError {
	if in.Title == "" {
		return &ValidationError{Message: "title must not be empty", Field: "title"}
	}
	if in.Status != "" && !in.Status.Valid() {
		return &ValidationError{Message: "status must be one of todo, in_progress, done", Field: "status"}
	}
	return nil
}

// UpdateTaskInput is the accepted payload for a partial update. Nil fields are
// left unchanged.
type UpdateTaskInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *Status `json:"status"`
}

// Validate applies the update schema: every field is optional, but a supplied
// title must be non-empty and a supplied status must be a recognized value.
func (in UpdateTaskInput) Validate() *ValidationError {
	if in.Title != nil && *in.Title == "" {
		return &ValidationError{Message: "title must not be empty", Field: "title"}
	}
	if in.Status != nil && !in.Status.Valid() {
		return &ValidationError{Message: "status must be one of todo, in_progress, done", Field: "status"}
	}
	return nil
}

// Empty reports whether the update carries no fields at all.
func (in UpdateTaskInput) Empty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil
}
