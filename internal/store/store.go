// ABOUTME: Store interfaces and data types for taskboard persistence
// ABOUTME: Defines User, Task structs and the store interfaces for database operations

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when creating a user with an email that is already registered
var ErrEmailExists = errors.New("email already registered")

// Role constants for users
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Task status constants
const (
	StatusIncomplete = "incomplete"
	StatusCompleted  = "completed"
)

// User represents a registered account. PasswordHash is a bcrypt hash;
// the plaintext password is never stored.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         string // "user" or "admin"
	CreatedAt    time.Time
}

// Task represents a tracked task. CreatedBy is immutable after creation.
// CompletedAt is non-nil exactly when Status is "completed"; the status
// update path is the only writer that maintains this.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      string // "incomplete" or "completed"
	CreatedBy   string
	AssignedTo  *string
	CompletedAt *time.Time
	CreatedAt   time.Time
}

// TaskWithAssignee pairs a task with its assignee's username for display.
// AssigneeUsername is nil when the task is unassigned.
type TaskWithAssignee struct {
	Task
	AssigneeUsername *string
}

// UserStore defines the interface for user persistence.
// CreateUser hashes the password before writing; callers never pass a hash.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, password, role string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsernameOrEmail(ctx context.Context, identifier string) (*User, error)
}

// TaskStore defines the interface for task persistence
type TaskStore interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id string) (*Task, error)
	ListTasksByCreator(ctx context.Context, creatorID string) ([]*TaskWithAssignee, error)

	// UpdateTask overwrites title, description, status and assignee.
	// It deliberately does not touch completed_at; only UpdateTaskStatus does.
	UpdateTask(ctx context.Context, task *Task) error

	AssignTask(ctx context.Context, id, userID string) error
	UpdateTaskStatus(ctx context.Context, id, status string, completedAt *time.Time) error
	DeleteTask(ctx context.Context, id string) error
}
