// Package api implements the taskboard HTTP/JSON surface.
//
// # Endpoints
//
//	POST   /api/users/signup          create an account, returns a token
//	POST   /api/users/login           authenticate, returns a token
//	POST   /api/tasks                 create a task (bearer)
//	GET    /api/tasks                 list the caller's tasks (bearer)
//	PUT    /api/tasks/{id}            full update (owner or admin)
//	PUT    /api/tasks/{id}/assign     assign a user (admin only)
//	PUT    /api/tasks/{id}/status     status transition (owner or admin)
//	DELETE /api/tasks/{id}            delete (any authenticated caller)
//	GET    /health                    liveness
//
// Error responses are flat JSON objects with a single human-readable
// message. Unexpected store failures collapse to a generic 500 with no
// detail leakage; expected conditions map to specific codes.
package api
