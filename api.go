package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"poemrace/store"
)

// APIServer is the REST admin/status surface that runs alongside the
// WebSocket transport.
type APIServer struct {
	echo      *echo.Echo
	cfg       Config
	loop      *TickLoop
	mm        *Matchmaker
	engine    *RoundEngine
	transport *WSTransport
	store     *store.Store
}

// NewAPIServer wires every read-only admin endpoint to its collaborator.
func NewAPIServer(cfg Config, loop *TickLoop, mm *Matchmaker, engine *RoundEngine, transport *WSTransport, st *store.Store) *APIServer {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	s := &APIServer{echo: e, cfg: cfg, loop: loop, mm: mm, engine: engine, transport: transport, store: st}
	s.registerRoutes()
	return s
}

func (s *APIServer) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/api/stats", s.handleStats)
	s.echo.GET("/api/config", s.handleConfig)
	s.echo.GET("/api/leaderboard", s.handleLeaderboard)
}

// Start listens on the configured API port. Blocks until the server stops.
func (s *APIServer) Start() error {
	return s.echo.Start(":" + strconv.Itoa(s.cfg.APIPort))
}

// Shutdown gracefully stops the echo server.
func (s *APIServer) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *APIServer) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *APIServer) handleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"pending_pool":    s.mm.PendingLen(),
		"active_games":    len(s.engine.games),
		"inbound_queue":   s.loop.InboundLen(),
		"outbound_queue":  s.engine.dispatcher.QueueLen(),
		"connected_count": s.transport.ClientCount(),
	})
}

func (s *APIServer) handleConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, s.cfg)
}

func (s *APIServer) handleLeaderboard(c echo.Context) error {
	top, err := s.store.TopLeaderboard(100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, top)
}
