// ABOUTME: HTTP server wiring for the taskboard API
// ABOUTME: Registers routes, applies auth middleware, and runs the serve loop

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/2389/taskboard/internal/auth"
	"github.com/2389/taskboard/internal/config"
	"github.com/2389/taskboard/internal/store"
)

// Server hosts the taskboard HTTP API.
type Server struct {
	config     *config.Config
	store      *store.SQLiteStore
	verifier   *auth.JWTVerifier
	logger     *slog.Logger
	httpServer *http.Server

	adminGate func(http.Handler) http.Handler
}

// New creates a new Server, opening the store at the configured path.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("creating JWT verifier: %w", err)
	}

	return newServer(cfg, sqlStore, verifier, logger), nil
}

// newServer wires a Server around an already-open store.
func newServer(cfg *config.Config, sqlStore *store.SQLiteStore, verifier *auth.JWTVerifier, logger *slog.Logger) *Server {
	s := &Server{
		config:    cfg,
		store:     sqlStore,
		verifier:  verifier,
		logger:    logger.With("component", "api"),
		adminGate: auth.RequireAdmin(logger),
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// routes builds the request mux. Signup, login and health are public;
// everything under /api/tasks goes through the auth middleware.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/users/signup", s.handleSignup)
	mux.HandleFunc("/api/users/login", s.handleLogin)

	authMiddleware := auth.Middleware(s.verifier, s.logger)
	mux.Handle("/api/tasks", authMiddleware(http.HandlerFunc(s.handleTasks)))
	mux.Handle("/api/tasks/", authMiddleware(http.HandlerFunc(s.handleTaskRoutes)))

	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server fails. Shutdown is graceful with a bounded timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("shutdown error", "error", err)
	}

	if err := s.store.Close(); err != nil {
		s.logger.Error("closing store", "error", err)
	}

	return serverErr
}

// handleHealth returns 200 OK if the server is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTasks dispatches the /api/tasks collection endpoints.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateTask(w, r)
	case http.MethodGet:
		s.handleListTasks(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleTaskRoutes dispatches the /api/tasks/{id} endpoints and the
// {id}/assign and {id}/status sub-resources. Assignment goes through the
// admin gate before the handler runs.
func (s *Server) handleTaskRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	parts := strings.Split(rest, "/")
	id := parts[0]
	if id == "" {
		s.sendJSONError(w, http.StatusNotFound, "task not found")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodPut:
			s.handleUpdateTask(w, r, id)
		case http.MethodDelete:
			s.handleDeleteTask(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case len(parts) == 2 && parts[1] == "assign":
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.adminGate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s.handleAssignTask(w, r, id)
		})).ServeHTTP(w, r)
	case len(parts) == 2 && parts[1] == "status":
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		s.handleUpdateTaskStatus(w, r, id)
	default:
		s.sendJSONError(w, http.StatusNotFound, "task not found")
	}
}

// sendJSON writes a JSON response with the given status.
func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
