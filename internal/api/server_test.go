// ABOUTME: Test helpers for the API package
// ABOUTME: Spins up a Server over a temp SQLite store with request helpers

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/2389/taskboard/internal/auth"
	"github.com/2389/taskboard/internal/config"
	"github.com/2389/taskboard/internal/store"
)

var apiTestSecret = "api-handler-test-secret-32-bytes!"

// setupTestServer creates a Server over a temporary SQLite store.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Server:   config.ServerConfig{HTTPAddr: ":0"},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "test.db")},
		Auth:     config.AuthConfig{JWTSecret: apiTestSecret, TokenTTL: time.Hour},
	}

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	require.NoError(t, err)
	t.Cleanup(func() { sqlStore.Close() })

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newServer(cfg, sqlStore, verifier, logger)
}

// doRequest performs a request against the server's mux. A non-empty token
// is sent as a bearer credential.
func doRequest(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

// decodeBody unmarshals a recorded JSON response body into v.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// signupUser signs up a user through the API and returns the issued token.
func signupUser(t *testing.T, s *Server, username string) string {
	t.Helper()

	rec := doRequest(t, s, http.MethodPost, "/api/users/signup", "", SignupRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "s3cret-" + username,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "signup failed: %s", rec.Body.String())

	var resp SignupResponse
	decodeBody(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

// createAdmin seeds an admin directly in the store (the HTTP surface never
// assigns roles) and returns a token for it plus the user record.
func createAdmin(t *testing.T, s *Server, username string) (string, *store.User) {
	t.Helper()

	admin, err := s.store.CreateUser(context.Background(), username, username+"@example.com", "s3cret", store.RoleAdmin)
	require.NoError(t, err)

	token, err := s.verifier.Generate(admin.ID, admin.Role, time.Hour)
	require.NoError(t, err)
	return token, admin
}

// createTask creates a task through the API and returns its response shape.
func createTask(t *testing.T, s *Server, token, title, description string) TaskResponse {
	t.Helper()

	rec := doRequest(t, s, http.MethodPost, "/api/tasks", token, CreateTaskRequest{
		Title:       title,
		Description: description,
	})
	require.Equal(t, http.StatusCreated, rec.Code, "create task failed: %s", rec.Body.String())

	var resp TaskResponse
	decodeBody(t, rec, &resp)
	return resp
}
