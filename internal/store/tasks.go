// ABOUTME: SQLite implementation of TaskStore for task persistence.
// ABOUTME: Creator-scoped listing joins the assignee's username for display.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ensure SQLiteStore implements TaskStore.
var _ TaskStore = (*SQLiteStore)(nil)

// CreateTask creates a new task. The ID and CreatedAt are assigned here if
// unset; Status defaults to incomplete.
func (s *SQLiteStore) CreateTask(ctx context.Context, task *Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	if task.Status == "" {
		task.Status = StatusIncomplete
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO tasks (id, title, description, status, created_by, assigned_to, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.CreatedBy,
		task.AssignedTo,
		formatNullableTime(task.CompletedAt),
		task.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting task: %w", err)
	}

	s.logger.Info("created task", "id", task.ID, "created_by", task.CreatedBy)
	return nil
}

// GetTask retrieves a task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*Task, error) {
	query := `
		SELECT id, title, description, status, created_by, assigned_to, completed_at, created_at
		FROM tasks
		WHERE id = ?
	`

	var task Task
	var assignedTo sql.NullString
	var completedAtStr sql.NullString
	var createdAtStr string

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.CreatedBy,
		&assignedTo,
		&completedAtStr,
		&createdAtStr,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}

	if assignedTo.Valid {
		task.AssignedTo = &assignedTo.String
	}
	if task.CompletedAt, err = parseNullableTime(completedAtStr); err != nil {
		return nil, fmt.Errorf("parsing completed_at: %w", err)
	}
	if task.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &task, nil
}

// ListTasksByCreator returns all tasks created by the given user, newest
// first, with the assignee's username joined in for display.
func (s *SQLiteStore) ListTasksByCreator(ctx context.Context, creatorID string) ([]*TaskWithAssignee, error) {
	query := `
		SELECT t.id, t.title, t.description, t.status, t.created_by, t.assigned_to,
		       t.completed_at, t.created_at, u.username
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assigned_to
		WHERE t.created_by = ?
		ORDER BY t.created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*TaskWithAssignee
	for rows.Next() {
		var t TaskWithAssignee
		var assignedTo, completedAtStr, assigneeUsername sql.NullString
		var createdAtStr string

		if err := rows.Scan(
			&t.ID,
			&t.Title,
			&t.Description,
			&t.Status,
			&t.CreatedBy,
			&assignedTo,
			&completedAtStr,
			&createdAtStr,
			&assigneeUsername,
		); err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}

		if assignedTo.Valid {
			t.AssignedTo = &assignedTo.String
		}
		if assigneeUsername.Valid {
			t.AssigneeUsername = &assigneeUsername.String
		}
		if t.CompletedAt, err = parseNullableTime(completedAtStr); err != nil {
			return nil, fmt.Errorf("parsing completed_at: %w", err)
		}
		if t.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		tasks = append(tasks, &t)
	}

	return tasks, rows.Err()
}

// UpdateTask overwrites the task's title, description, status and assignee.
// completed_at is intentionally left alone here; UpdateTaskStatus is the
// only writer that maintains the completion timestamp.
func (s *SQLiteStore) UpdateTask(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, assigned_to = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.AssignedTo,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("updating task: %w", err)
	}

	return rowsAffectedOrNotFound(result)
}

// AssignTask sets the task's assignee. No other field changes.
func (s *SQLiteStore) AssignTask(ctx context.Context, id, userID string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tasks SET assigned_to = ? WHERE id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("assigning task: %w", err)
	}
	return rowsAffectedOrNotFound(result)
}

// UpdateTaskStatus sets the task's status and completion timestamp together.
func (s *SQLiteStore) UpdateTaskStatus(ctx context.Context, id, status string, completedAt *time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?`,
		status, formatNullableTime(completedAt), id,
	)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}
	return rowsAffectedOrNotFound(result)
}

// DeleteTask removes a task by ID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return rowsAffectedOrNotFound(result)
}

// rowsAffectedOrNotFound maps a zero-row write to ErrNotFound.
func rowsAffectedOrNotFound(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// formatNullableTime renders an optional timestamp for storage.
func formatNullableTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	str := t.Format(time.RFC3339)
	return &str
}

// parseNullableTime parses an optional stored timestamp.
func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
