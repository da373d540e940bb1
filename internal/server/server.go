package server

import (
	"net/http"

	"github.com/wolfeidau/tasktracker/internal/auth"
	httpmiddleware "github.com/wolfeidau/tasktracker/internal/http"
	"github.com/wolfeidau/tasktracker/internal/store"
)

// Server serves the auth, project and task HTTP API.
type Server struct {
	auth      *auth.Service
	gate      *auth.Gate
	transport auth.Transport
	stores    store.Stores
}

// NewServer creates a server. The gate and verify endpoint read tokens with
// transport, which must be the same transport used to deliver them.
func NewServer(authService *auth.Service, transport auth.Transport, stores store.Stores) *Server {
	return &Server{
		auth:      authService,
		gate:      auth.NewGate(authService.Tokens(), transport),
		transport: transport,
		stores:    stores,
	}
}

// Handler returns the HTTP handler for the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint for load balancer
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpmiddleware.WriteJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Public auth endpoints
	mux.Handle("POST /auth/signup", s.handle(s.signup))
	mux.Handle("POST /auth/login", s.handle(s.login))
	mux.Handle("GET /auth/verify", s.handle(s.verify))
	mux.Handle("POST /auth/logout", s.handle(s.logout))

	// Everything below requires a valid session
	protect := func(fn handlerFunc) http.Handler {
		return s.gate.Middleware(s.handle(fn))
	}

	mux.Handle("GET /project", protect(s.listProjects))
	mux.Handle("POST /project", protect(s.createProject))
	mux.Handle("GET /project/{id}", protect(s.getProject))
	mux.Handle("PUT /project/{id}", protect(s.updateProject))
	mux.Handle("DELETE /project/{id}", protect(s.deleteProject))

	mux.Handle("GET /task/{projectId}", protect(s.listTasks))
	mux.Handle("POST /task", protect(s.createTask))
	mux.Handle("PUT /task/{taskId}", protect(s.updateTask))
	mux.Handle("DELETE /task/{taskId}", protect(s.deleteTask))

	return mux
}
