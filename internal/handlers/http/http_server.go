package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/dzikowski/barbell-bot/internal/domain/repository"
	"github.com/dzikowski/barbell-bot/internal/domain/service"
	"github.com/dzikowski/barbell-bot/internal/handlers/websocket"
)

// CycleSource exposes the most recent finished cycle, if any.
type CycleSource interface {
	LastCycle() *service.CycleResult
}

// Server represents an HTTP server with all routes configured
type Server struct {
	cycles      CycleSource
	prices      repository.PriceCache
	broadcaster *websocket.WebSocketBroadcaster
	mux         *http.ServeMux
	server      *http.Server
}

// NewServer creates a new HTTP server with configured routes. prices may be
// nil when no cache is wired.
func NewServer(addr string, cycles CycleSource, prices repository.PriceCache, broadcaster *websocket.WebSocketBroadcaster) *Server {
	mux := http.NewServeMux()

	server := &Server{
		cycles:      cycles,
		prices:      prices,
		broadcaster: broadcaster,
		mux:         mux,
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	// Register routes
	server.registerRoutes()

	return server
}

// registerRoutes configures all HTTP routes
func (s *Server) registerRoutes() {
	// Latest cycle result
	s.mux.HandleFunc("/cycle", s.handleCycle)

	// Latest sampled prices
	s.mux.HandleFunc("/prices", s.handlePrices)

	// Health check endpoint
	s.mux.HandleFunc("/health", s.handleHealth)

	// WebSocket endpoint
	s.mux.HandleFunc("/ws", s.broadcaster.Handler())
}

// handleCycle returns the most recent cycle result.
func (s *Server) handleCycle(w http.ResponseWriter, r *http.Request) {
	result := s.cycles.LastCycle()
	if result == nil {
		http.Error(w, "no cycle has completed yet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("failed to encode cycle result: %v", err)
	}
}

// handlePrices returns the freshest cached price per pair.
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if s.prices == nil {
		http.Error(w, "price cache not configured", http.StatusServiceUnavailable)
		return
	}

	prices, err := s.prices.GetAllLatestPrices(r.Context())
	if err != nil {
		http.Error(w, "failed to get prices", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(prices); err != nil {
		log.Printf("failed to encode prices: %v", err)
	}
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
