// Package api provides the HTTP and WebSocket status server.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/internal/autonomous"
	"github.com/atlas-desktop/recall-agent/internal/strategy"
	"github.com/atlas-desktop/recall-agent/pkg/types"
	"github.com/atlas-desktop/recall-agent/pkg/utils"
)

// Agent is the subset of the trading agent the server drives.
type Agent interface {
	Start(ctx context.Context) error
	Stop() error
	Pause()
	Resume()
	RunCycle(ctx context.Context) (autonomous.CycleReport, error)
	GetStatus() autonomous.AgentStatus
	Strategy(name string) (strategy.Strategy, bool)
	AvailableStrategies() []string
	AddStrategy(config types.StrategyConfig) (strategy.Strategy, error)
	UpdateStrategy(name string, update types.StrategyUpdate) (autonomous.StrategyStatus, error)
	RemoveStrategy(name string) error
	GetTradeHistory(ctx context.Context, limit int) ([]types.Trade, error)
	GetPositions(ctx context.Context) ([]types.Position, error)
	GetBalances(ctx context.Context) ([]types.Balance, error)
}

var _ Agent = (*autonomous.TradingAgent)(nil)

// Server is the HTTP/WebSocket API server.
type Server struct {
	logger     *zap.Logger
	config     types.ServerConfig
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	hub        *Hub
	agent      Agent
	baseCtx    context.Context
	metrics    http.Handler
}

// NewServer creates a new API server. baseCtx bounds agents started through
// the API; metrics may be nil to disable /metrics.
func NewServer(baseCtx context.Context, logger *zap.Logger, config types.ServerConfig, agent Agent, hub *Hub, metrics http.Handler) *Server {
	if config.WebSocketPath == "" {
		config.WebSocketPath = "/ws"
	}
	server := &Server{
		logger:  logger.Named("api"),
		config:  config,
		router:  mux.NewRouter(),
		hub:     hub,
		agent:   agent,
		baseCtx: baseCtx,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/v1/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/v1/status", s.handleStatus).Methods("GET")

	// Agent control
	s.router.HandleFunc("/api/v1/agent/start", s.handleStart).Methods("POST")
	s.router.HandleFunc("/api/v1/agent/stop", s.handleStop).Methods("POST")
	s.router.HandleFunc("/api/v1/agent/pause", s.handlePause).Methods("POST")
	s.router.HandleFunc("/api/v1/agent/resume", s.handleResume).Methods("POST")
	s.router.HandleFunc("/api/v1/agent/cycle", s.handleRunCycle).Methods("POST")

	// Strategies
	s.router.HandleFunc("/api/v1/strategies", s.handleListStrategies).Methods("GET")
	s.router.HandleFunc("/api/v1/strategies", s.handleAddStrategy).Methods("POST")
	s.router.HandleFunc("/api/v1/strategies/{name}", s.handleUpdateStrategy).Methods("PATCH")
	s.router.HandleFunc("/api/v1/strategies/{name}", s.handleRemoveStrategy).Methods("DELETE")
	s.router.HandleFunc("/api/v1/strategies/{name}/history/{token}", s.handlePriceHistory).Methods("GET")
	s.router.HandleFunc("/api/v1/strategies/{name}/reset", s.handleResetHistory).Methods("POST")

	// Account
	s.router.HandleFunc("/api/v1/trades", s.handleTrades).Methods("GET")
	s.router.HandleFunc("/api/v1/positions", s.handlePositions).Methods("GET")
	s.router.HandleFunc("/api/v1/balances", s.handleBalances).Methods("GET")

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods("GET")
	}

	if s.hub != nil {
		s.router.HandleFunc(s.config.WebSocketPath, s.handleWebSocket)
	}
}

// Router returns the HTTP handler, for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting API server", zap.String("addr", addr))

	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
	})
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// handleStatus returns the agent status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.agent.GetStatus()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"uptime": utils.FormatDuration(status.Uptime),
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.agent.Start(s.baseCtx); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	s.broadcastStatus()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Agent started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.agent.Stop(); err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}
	s.broadcastStatus()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Agent stopped"})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.agent.Pause()
	s.broadcastStatus()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "paused": s.agent.GetStatus().IsPaused})
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.agent.Resume()
	s.broadcastStatus()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "paused": s.agent.GetStatus().IsPaused})
}

func (s *Server) handleRunCycle(w http.ResponseWriter, r *http.Request) {
	report, err := s.agent.RunCycle(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"strategies": s.agent.GetStatus().Strategies,
		"available":  s.agent.AvailableStrategies(),
	})
}

func (s *Server) handleAddStrategy(w http.ResponseWriter, r *http.Request) {
	var config types.StrategyConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	st, err := s.agent.AddStrategy(config)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, strategy.ErrUnknownStrategy) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}

	writeJSON(w, http.StatusCreated, autonomous.StrategyStatus{
		Name:        st.Name(),
		Kind:        st.Kind(),
		Description: st.Description(),
		Enabled:     st.Enabled(),
		Config:      st.Config(),
	})
}

func (s *Server) handleUpdateStrategy(w http.ResponseWriter, r *http.Request) {
	var update types.StrategyUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	status, err := s.agent.UpdateStrategy(mux.Vars(r)["name"], update)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleRemoveStrategy(w http.ResponseWriter, r *http.Request) {
	if err := s.agent.RemoveStrategy(mux.Vars(r)["name"]); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePriceHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	st, ok := s.agent.Strategy(vars["name"])
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", autonomous.ErrStrategyNotFound, vars["name"]))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"strategy": st.Name(),
		"token":    vars["token"],
		"prices":   st.PriceHistory(vars["token"]),
	})
}

func (s *Server) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	st, ok := s.agent.Strategy(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", autonomous.ErrStrategyNotFound, name))
		return
	}
	st.ResetHistory()
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	trades, err := s.agent.GetTradeHistory(r.Context(), limit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"trades": trades, "count": len(trades)})
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.agent.GetPositions(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"positions": positions})
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.agent.GetBalances(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"balances": balances})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, autonomous.ErrStrategyNotFound):
		return http.StatusNotFound
	case errors.Is(err, autonomous.ErrNotSupported):
		return http.StatusNotImplemented
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) broadcastStatus() {
	if s.hub != nil {
		s.hub.BroadcastAgentStatus(s.agent.GetStatus())
	}
}

// handleWebSocket upgrades the connection and attaches it to the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(uuid.New().String(), s.hub, conn)
	if !s.hub.Attach(client) {
		conn.Close()
		return
	}
	s.logger.Info("WebSocket client connected", zap.String("id", client.id))
}
