// ABOUTME: Task CRUD handlers with ownership-based authorization
// ABOUTME: The status endpoint is the only path that maintains completedAt

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/2389/taskboard/internal/auth"
	"github.com/2389/taskboard/internal/store"
)

// CreateTaskRequest is the JSON request body for POST /api/tasks.
// The creator is always the caller; assignee and status are not settable
// at creation.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// UpdateTaskRequest is the JSON request body for PUT /api/tasks/{id}.
// All four fields are overwritten verbatim.
type UpdateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	AssignedTo  *string `json:"assignedTo"`
}

// AssignTaskRequest is the JSON request body for PUT /api/tasks/{id}/assign.
type AssignTaskRequest struct {
	UserID string `json:"userId"`
}

// UpdateStatusRequest is the JSON request body for PUT /api/tasks/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TaskResponse is the JSON shape of a task in responses. In listing
// responses AssignedTo carries the assignee's username; elsewhere it is the
// assignee's user id.
type TaskResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	CreatedBy   string  `json:"createdBy"`
	AssignedTo  *string `json:"assignedTo"`
	CompletedAt *string `json:"completedAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

// TaskMessageResponse wraps a task with a human-readable message, used by
// the delete and status endpoints.
type TaskMessageResponse struct {
	Message string       `json:"message"`
	Task    TaskResponse `json:"task"`
}

// taskResponse renders a task with assignedTo as the assignee's user id.
func taskResponse(t *store.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.CompletedAt != nil {
		str := t.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &str
	}
	return resp
}

// listTaskResponse renders a task for listing, with assignedTo resolved to
// the assignee's username. No other assignee fields are exposed.
func listTaskResponse(t *store.TaskWithAssignee) TaskResponse {
	resp := taskResponse(&t.Task)
	resp.AssignedTo = t.AssigneeUsername
	return resp
}

// handleCreateTask handles POST /api/tasks. Any authenticated caller may
// create a task; the creator is the caller, never settable in the body.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ident := auth.MustFromContext(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task := &store.Task{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   ident.UserID,
	}
	if err := s.store.CreateTask(r.Context(), task); err != nil {
		s.logger.Error("creating task", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusCreated, taskResponse(task))
}

// handleListTasks handles GET /api/tasks. Results are scoped to tasks the
// caller created; admins see no more than ordinary users here.
func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ident := auth.MustFromContext(r.Context())

	tasks, err := s.store.ListTasksByCreator(r.Context(), ident.UserID)
	if err != nil {
		s.logger.Error("listing tasks", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	response := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		response = append(response, listTaskResponse(t))
	}

	s.sendJSON(w, http.StatusOK, response)
}

// handleUpdateTask handles PUT /api/tasks/{id}. Permitted for the task's
// creator or an admin. All four fields are overwritten verbatim; the
// completion timestamp is not touched here, so flipping status through this
// path can leave completedAt stale. Only the status endpoint maintains it.
func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request, id string) {
	ident := auth.MustFromContext(r.Context())

	task, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "task not found")
			return
		}
		s.logger.Error("getting task", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !auth.OwnerOrAdmin(ident, task.CreatedBy) {
		s.sendJSONError(w, http.StatusForbidden, "permission denied")
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task.Title = req.Title
	task.Description = req.Description
	task.Status = req.Status
	task.AssignedTo = req.AssignedTo

	if err := s.store.UpdateTask(r.Context(), task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "task not found")
			return
		}
		s.logger.Error("updating task", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, taskResponse(task))
}

// handleAssignTask handles PUT /api/tasks/{id}/assign. The admin gate has
// already run; non-admin callers never reach this handler.
func (s *Server) handleAssignTask(w http.ResponseWriter, r *http.Request, id string) {
	var req AssignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "task not found")
			return
		}
		s.logger.Error("getting task", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	user, err := s.store.GetUser(r.Context(), req.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "user not found")
			return
		}
		s.logger.Error("getting user", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := s.store.AssignTask(r.Context(), task.ID, user.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "task not found")
			return
		}
		s.logger.Error("assigning task", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	task.AssignedTo = &user.ID
	s.sendJSON(w, http.StatusOK, taskResponse(task))
}

// handleUpdateTaskStatus handles PUT /api/tasks/{id}/status. The status
// value is validated before any store access. This is the one path that
// maintains the completedAt invariant: completed sets the timestamp,
// incomplete clears it.
func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request, id string) {
	ident := auth.MustFromContext(r.Context())

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Status != store.StatusCompleted && req.Status != store.StatusIncomplete {
		s.sendJSONError(w, http.StatusBadRequest, "invalid status value")
		return
	}

	task, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "task not found")
			return
		}
		s.logger.Error("getting task", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if !auth.OwnerOrAdmin(ident, task.CreatedBy) {
		s.sendJSONError(w, http.StatusForbidden, "permission denied")
		return
	}

	var completedAt *time.Time
	if req.Status == store.StatusCompleted {
		now := time.Now().UTC()
		completedAt = &now
	}

	if err := s.store.UpdateTaskStatus(r.Context(), task.ID, req.Status, completedAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "task not found")
			return
		}
		s.logger.Error("updating task status", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	task.Status = req.Status
	task.CompletedAt = completedAt
	s.sendJSON(w, http.StatusOK, TaskMessageResponse{
		Message: "task status updated",
		Task:    taskResponse(task),
	})
}

// handleDeleteTask handles DELETE /api/tasks/{id}. Any authenticated caller
// may delete any task; there is deliberately no ownership or role check on
// this path, unlike every other mutation.
func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request, id string) {
	task, err := s.store.GetTask(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "task not found")
			return
		}
		s.logger.Error("getting task", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := s.store.DeleteTask(r.Context(), task.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "task not found")
			return
		}
		s.logger.Error("deleting task", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, TaskMessageResponse{
		Message: "task deleted",
		Task:    taskResponse(task),
	})
}
