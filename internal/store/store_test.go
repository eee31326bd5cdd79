package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

func TestStore_CreateUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "alice@example.com", "s3cret", RoleUser)
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, RoleUser, user.Role)
	assert.False(t, user.CreatedAt.IsZero())
}

func TestStore_CreateUser_HashesPassword(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	user, err := store.CreateUser(ctx, "alice", "alice@example.com", "s3cret", RoleUser)
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret")))

	// The stored row carries the hash too
	stored, err := store.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", stored.PasswordHash)
}

func TestStore_CreateUser_DuplicateEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "alice", "alice@example.com", "s3cret", RoleUser)
	require.NoError(t, err)

	// Different username, same email
	_, err = store.CreateUser(ctx, "alice2", "alice@example.com", "s3cret", RoleUser)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestStore_CreateUser_DuplicateUsername(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.CreateUser(ctx, "alice", "alice@example.com", "s3cret", RoleUser)
	require.NoError(t, err)

	// Same username, different email: still rejected by the schema, but this
	// is not the email conflict
	_, err = store.CreateUser(ctx, "alice", "other@example.com", "s3cret", RoleUser)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailExists)
}

func TestStore_GetUserByUsernameOrEmail(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, "alice", "alice@example.com", "s3cret", RoleUser)
	require.NoError(t, err)

	byUsername, err := store.GetUserByUsernameOrEmail(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byUsername.ID)

	byEmail, err := store.GetUserByUsernameOrEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = store.GetUserByUsernameOrEmail(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GetUser_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	_, err := store.GetUser(ctx, "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func createTestUser(t *testing.T, s *SQLiteStore, username string) *User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), username, username+"@example.com", "s3cret", RoleUser)
	require.NoError(t, err)
	return user
}

func TestStore_CreateTask_Defaults(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "alice")

	task := &Task{
		Title:       "write report",
		Description: "quarterly numbers",
		CreatedBy:   user.ID,
	}
	require.NoError(t, store.CreateTask(ctx, task))

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, StatusIncomplete, task.Status)

	stored, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusIncomplete, stored.Status)
	assert.Nil(t, stored.AssignedTo)
	assert.Nil(t, stored.CompletedAt)
	assert.Equal(t, user.ID, stored.CreatedBy)
}

func TestStore_ListTasksByCreator_Scoped(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	require.NoError(t, store.CreateTask(ctx, &Task{Title: "a1", CreatedBy: alice.ID}))
	require.NoError(t, store.CreateTask(ctx, &Task{Title: "a2", CreatedBy: alice.ID}))
	require.NoError(t, store.CreateTask(ctx, &Task{Title: "b1", CreatedBy: bob.ID}))

	tasks, err := store.ListTasksByCreator(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.Equal(t, alice.ID, task.CreatedBy)
	}
}

func TestStore_ListTasksByCreator_ResolvesAssignee(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	task := &Task{Title: "a1", CreatedBy: alice.ID}
	require.NoError(t, store.CreateTask(ctx, task))
	require.NoError(t, store.AssignTask(ctx, task.ID, bob.ID))

	tasks, err := store.ListTasksByCreator(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].AssigneeUsername)
	assert.Equal(t, "bob", *tasks[0].AssigneeUsername)
}

func TestStore_UpdateTask_DoesNotTouchCompletedAt(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")

	task := &Task{Title: "a1", Description: "d", CreatedBy: alice.ID}
	require.NoError(t, store.CreateTask(ctx, task))

	completedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.UpdateTaskStatus(ctx, task.ID, StatusCompleted, &completedAt))

	// Flip status back to incomplete via the full-update path; completed_at
	// must survive untouched even though the status no longer matches it.
	task.Status = StatusIncomplete
	task.Title = "renamed"
	require.NoError(t, store.UpdateTask(ctx, task))

	stored, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusIncomplete, stored.Status)
	assert.Equal(t, "renamed", stored.Title)
	require.NotNil(t, stored.CompletedAt)
	assert.True(t, stored.CompletedAt.Equal(completedAt), "completed_at changed: %v != %v", stored.CompletedAt, completedAt)
}

func TestStore_UpdateTaskStatus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")

	task := &Task{Title: "a1", CreatedBy: alice.ID}
	require.NoError(t, store.CreateTask(ctx, task))

	completedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, store.UpdateTaskStatus(ctx, task.ID, StatusCompleted, &completedAt))

	stored, err := store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)

	require.NoError(t, store.UpdateTaskStatus(ctx, task.ID, StatusIncomplete, nil))

	stored, err = store.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusIncomplete, stored.Status)
	assert.Nil(t, stored.CompletedAt)
}

func TestStore_AssignTask_NotFound(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")

	err := store.AssignTask(ctx, "nonexistent", alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_DeleteTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice")

	task := &Task{Title: "a1", CreatedBy: alice.ID}
	require.NoError(t, store.CreateTask(ctx, task))

	require.NoError(t, store.DeleteTask(ctx, task.ID))

	_, err := store.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.DeleteTask(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
