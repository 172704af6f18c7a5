package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/fredcamaral/hotserve/internal/domain/entities"
	"github.com/fredcamaral/hotserve/internal/domain/ports"
)

// Server is the browser auto-refresh endpoint. A page includes the served
// client script; asset-only changes are pushed to it over the websocket so
// the page refreshes without a server restart.
type Server struct {
	config  entities.RefreshConfig
	server  *http.Server
	connMgr *ConnectionManager
	logger  *slog.Logger
	cancel  context.CancelFunc

	mu      sync.Mutex
	running bool
}

// NewServer creates a refresh server
func NewServer(config entities.RefreshConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		config:  config,
		connMgr: NewConnectionManager(),
		logger:  logger.With("service", "refresh"),
	}
}

// Start binds the listener and serves in the background
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("refresh server already running")
	}

	addr := fmt.Sprintf("%s:%d", s.config.GetHost(), s.config.GetPort())

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding refresh server to %s: %w", addr, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	go s.connMgr.Run(runCtx)

	router := mux.NewRouter()
	router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	router.HandleFunc("/hotserve.js", s.handleClientScript).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: s.config.GetCORSOrigins(),
		AllowedMethods: []string{http.MethodGet},
	})

	s.server = &http.Server{
		Handler:      corsMiddleware.Handler(router),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("refresh server error", slog.String("error", err.Error()))
		}
	}()

	s.running = true
	s.logger.Info("refresh server listening", slog.String("addr", addr))

	return nil
}

// Stop gracefully shuts the refresh server down
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	err := s.server.Shutdown(ctx)
	s.running = false
	return err
}

// IsRunning reports whether the server is active
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Notify broadcasts an event to all connected clients, implementing the
// refresh-notifier port
func (s *Server) Notify(event ports.UpdateEvent) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	if !running {
		return errors.New("refresh server not running")
	}

	s.connMgr.Broadcast(event)
	s.logger.Debug("refresh broadcast",
		slog.String("type", event.Type),
		slog.Int("clients", s.connMgr.Count()),
	)
	return nil
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleClientScript serves the browser-side refresh script
func (s *Server) handleClientScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/javascript")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(clientScript(s.config.GetHost(), s.config.GetPort()))); err != nil {
		s.logger.Error("failed to write client script", slog.String("error", err.Error()))
	}
}

// isValidOrigin validates the websocket upgrade origin against the
// configured CORS origins. Requests without an Origin header (curl, same
// host tools) are allowed.
func (s *Server) isValidOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range s.config.GetCORSOrigins() {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
