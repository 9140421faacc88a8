// Package health serves the /healthz endpoint of the serve command.
package health

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stats reports the number of boards and shown viewers.
type Stats func() (boards, viewers int)

// Server provides the HTTP health check endpoint.
type Server struct {
	addr   string
	pinger Pinger
	stats  Stats
	server *http.Server
}

// NewServer creates a health server listening on addr. stats may be nil.
func NewServer(addr string, pinger Pinger, stats Stats) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	return &Server{addr: addr, pinger: pinger, stats: stats}
}

// Handler returns the HTTP handler serving /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthCheckHandler)
	return mux
}

// Start starts the HTTP server in the background.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[Health] Server error: %v", err)
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Response is the JSON body of /healthz.
type Response struct {
	Status  string `json:"status"`
	Redis   string `json:"redis,omitempty"`
	Boards  int    `json:"boards"`
	Viewers int    `json:"viewers"`
	Error   string `json:"error,omitempty"`
}

// healthCheckHandler returns 200 OK if the backend answers a ping within two
// seconds, 503 Service Unavailable otherwise.
func (s *Server) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	response := Response{Status: "healthy", Redis: "connected"}
	if s.stats != nil {
		response.Boards, response.Viewers = s.stats()
	}

	status := http.StatusOK
	if err := s.pinger.Ping(ctx); err != nil {
		response.Status = "unhealthy"
		response.Redis = "disconnected"
		response.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
