// Package server exposes the detection engine over HTTP for hosts that
// feed it text and consume its results.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/egressguard/egressguard/internal/cache"
	"github.com/egressguard/egressguard/internal/config"
	"github.com/egressguard/egressguard/internal/logger"
	"github.com/egressguard/egressguard/internal/security"
	"github.com/egressguard/egressguard/internal/websocket"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Server represents the scan API server.
type Server struct {
	mu      sync.RWMutex
	config  *config.Config
	logger  *logger.Logger
	router  *mux.Router
	server  *http.Server
	wsHub   *websocket.Hub
	cache   *cache.ResultCache
	limiter *security.RateLimiter

	startedAt       time.Time
	totalScans      int64
	totalDetections int64
}

// New creates a new scan API server instance.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	wsHub := websocket.NewHub(&websocket.HubConfig{
		BroadcastDetections: cfg.WebSocket.BroadcastDetections,
		BroadcastSystem:     cfg.WebSocket.BroadcastSystem,
		BroadcastConnects:   cfg.WebSocket.BroadcastConnects,
		AllowedOrigins:      cfg.WebSocket.AllowedOrigins,
	}, log.WithComponent("websocket").Logger)

	server := &Server{
		config:    cfg,
		logger:    log.WithComponent("server"),
		router:    mux.NewRouter(),
		wsHub:     wsHub,
		limiter:   security.NewRateLimiter(cfg.RateLimit),
		startedAt: time.Now(),
	}

	if cfg.Cache.Enabled {
		resultCache, err := cache.New(cfg.Cache, log.WithComponent("cache").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		server.cache = resultCache
	}

	server.setupRoutes()

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/info", s.handleInfo).Methods("GET")

	if s.config.WebSocket.Enabled {
		s.router.HandleFunc(s.config.WebSocket.Path, s.wsHub.HandleWebSocket).Methods("GET")
	}

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.loggingMiddleware)
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/scan", s.handleScan).Methods("POST")
	api.HandleFunc("/quickcheck", s.handleQuickCheck).Methods("POST")
	api.HandleFunc("/redact", s.handleRedact).Methods("POST")
	api.HandleFunc("/detectors", s.handleDetectors).Methods("GET")
}

// Start starts the HTTP server and the monitoring hub.
func (s *Server) Start() error {
	s.logger.Info("Starting scan API server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("cache_enabled", s.cache != nil),
		zap.Bool("websocket_enabled", s.config.WebSocket.Enabled),
	)

	go s.wsHub.Run()
	s.limiter.StartCleanupRoutine()
	go s.statusBroadcastLoop()

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping scan API server")
	if s.cache != nil {
		defer s.cache.Close()
	}
	return s.server.Shutdown(ctx)
}

// Reload swaps the active configuration. Routing and listeners are
// fixed at startup; detection defaults, rate limits and broadcast
// switches take effect on the next request.
func (s *Server) Reload(cfg *config.Config) {
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	s.limiter.UpdateConfig(cfg.RateLimit)
	s.wsHub.UpdateConfig(&websocket.HubConfig{
		BroadcastDetections: cfg.WebSocket.BroadcastDetections,
		BroadcastSystem:     cfg.WebSocket.BroadcastSystem,
		BroadcastConnects:   cfg.WebSocket.BroadcastConnects,
		AllowedOrigins:      cfg.WebSocket.AllowedOrigins,
	})

	s.logger.Info("Configuration reloaded",
		zap.String("sensitivity", cfg.Detection.Sensitivity),
		zap.Strings("detectors", cfg.Detection.Detectors),
	)
}

// currentConfig returns the active configuration snapshot.
func (s *Server) currentConfig() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// statusBroadcastLoop pushes periodic health events to monitors.
func (s *Server) statusBroadcastLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.wsHub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventTypeSystemStatus,
			Timestamp: time.Now(),
			Data: websocket.SystemStatusEvent{
				Status:           "ok",
				Uptime:           time.Since(s.startedAt).Round(time.Second).String(),
				TotalScans:       s.scanCount(),
				TotalDetections:  s.detectionCount(),
				ConnectedClients: s.wsHub.ClientCount(),
			},
		})
	}
}
