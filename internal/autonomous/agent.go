// Package autonomous provides the autonomous trading agent.
package autonomous

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/internal/execution"
	"github.com/atlas-desktop/recall-agent/internal/metrics"
	"github.com/atlas-desktop/recall-agent/internal/strategy"
	"github.com/atlas-desktop/recall-agent/pkg/types"
)

// ConfidenceFloor is the minimum confidence a signal needs to be executed,
// regardless of the producing strategy's own minimum.
const ConfidenceFloor = 0.5

// DefaultTradeAmount is used for signals that carry no suggested amount.
const DefaultTradeAmount = "10"

var (
	// ErrStrategyNotFound is returned when no loaded strategy matches a name.
	ErrStrategyNotFound = errors.New("strategy not found")
	// ErrNotSupported is returned when the execution venue does not expose
	// account information.
	ErrNotSupported = execution.ErrNotSupported
)

// MarketDataSource supplies one market data batch per cycle.
type MarketDataSource interface {
	GetMarketData(ctx context.Context, chain string) ([]types.MarketData, error)
}

// HealthChecker is implemented by collaborators that can report liveness.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// ChainLister is implemented by collaborators that know the tradable chains.
type ChainLister interface {
	GetSupportedChains(ctx context.Context) ([]string, error)
}

// TradingAgent polls market data, runs every enabled strategy over it and
// executes the resulting signals.
type TradingAgent struct {
	logger   *zap.Logger
	config   AgentConfig
	mu       sync.RWMutex
	cycleMu  sync.Mutex
	feed     MarketDataSource
	executor execution.Executor
	factory  *strategy.Factory
	metrics  *metrics.Metrics

	strategies []strategy.Strategy

	// State
	initialized bool
	isRunning   bool
	isPaused    bool
	startTime   time.Time
	stats       AgentMetrics
	lastCycle   *CycleReport

	// Control
	stopChan chan struct{}
	doneChan chan struct{}

	// Event callbacks
	onTrade  func(types.TradingSignal, types.TradeExecutionRequest, *types.TradeExecutionResponse)
	onSignal func(types.TradingSignal)
	onCycle  func(CycleReport)
	onError  func(error)
}

// AgentConfig contains agent configuration.
type AgentConfig struct {
	Chain              string                 `json:"chain"`
	QuoteToken         string                 `json:"quoteToken"`
	DefaultTradeAmount string                 `json:"defaultTradeAmount"`
	Interval           time.Duration          `json:"interval"`
	PaperTrading       bool                   `json:"paperTrading"`
	Strategies         []types.StrategyConfig `json:"strategies"`
}

// DefaultAgentConfig returns default agent configuration.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Chain:              "ethereum",
		QuoteToken:         "USDC",
		DefaultTradeAmount: DefaultTradeAmount,
		Interval:           30 * time.Second,
		PaperTrading:       true,
		Strategies: []types.StrategyConfig{
			types.DefaultMovingAverageConfig(),
			types.DefaultSimpleTriggerConfig(),
		},
	}
}

// AgentMetrics contains running counters.
type AgentMetrics struct {
	CyclesRun        int       `json:"cyclesRun"`
	SignalsGenerated int       `json:"signalsGenerated"`
	SignalsProcessed int       `json:"signalsProcessed"`
	SignalsAccepted  int       `json:"signalsAccepted"`
	SignalsRejected  int       `json:"signalsRejected"`
	HoldSignals      int       `json:"holdSignals"`
	TradesExecuted   int       `json:"tradesExecuted"`
	TradesFailed     int       `json:"tradesFailed"`
	StrategyFaults   int       `json:"strategyFaults"`
	LastCycleTime    time.Time `json:"lastCycleTime,omitempty"`
	LastTradeTime    time.Time `json:"lastTradeTime,omitempty"`
}

// CycleReport summarizes one trading cycle.
type CycleReport struct {
	ID               string        `json:"id"`
	StartedAt        time.Time     `json:"startedAt"`
	Duration         time.Duration `json:"duration"`
	MarketData       int           `json:"marketData"`
	SignalsGenerated int           `json:"signalsGenerated"`
	SignalsFiltered  int           `json:"signalsFiltered"`
	HoldSignals      int           `json:"holdSignals"`
	TradesExecuted   int           `json:"tradesExecuted"`
	TradesFailed     int           `json:"tradesFailed"`
	StrategyFaults   int           `json:"strategyFaults"`
}

// StrategyStatus describes a loaded strategy.
type StrategyStatus struct {
	Name        string               `json:"name"`
	Kind        strategy.Kind        `json:"kind"`
	Description string               `json:"description"`
	Enabled     bool                 `json:"enabled"`
	Config      types.StrategyConfig `json:"config"`
}

// AgentStatus represents the agent's current status.
type AgentStatus struct {
	IsRunning       bool             `json:"isRunning"`
	IsPaused        bool             `json:"isPaused"`
	Uptime          time.Duration    `json:"uptime"`
	Chain           string           `json:"chain"`
	QuoteToken      string           `json:"quoteToken"`
	Interval        time.Duration    `json:"interval"`
	PaperTrading    bool             `json:"paperTrading"`
	ConfidenceFloor float64          `json:"confidenceFloor"`
	Strategies      []StrategyStatus `json:"strategies"`
	Metrics         AgentMetrics     `json:"metrics"`
	LastCycle       *CycleReport     `json:"lastCycle,omitempty"`
}

// NewTradingAgent creates a new trading agent. m may be nil.
func NewTradingAgent(
	logger *zap.Logger,
	config AgentConfig,
	feed MarketDataSource,
	executor execution.Executor,
	m *metrics.Metrics,
) *TradingAgent {
	if config.QuoteToken == "" {
		config.QuoteToken = "USDC"
	}
	if config.DefaultTradeAmount == "" {
		config.DefaultTradeAmount = DefaultTradeAmount
	}
	if config.Interval <= 0 {
		config.Interval = 30 * time.Second
	}
	return &TradingAgent{
		logger:   logger.Named("trading-agent"),
		config:   config,
		feed:     feed,
		executor: executor,
		factory:  strategy.NewFactory(logger),
		metrics:  m,
	}
}

// Initialize checks the collaborators and loads the configured strategies.
// Strategy entries that fail to build are logged and skipped.
func (ta *TradingAgent) Initialize(ctx context.Context) error {
	ta.logger.Info("Initializing trading agent",
		zap.String("chain", ta.config.Chain),
		zap.Bool("paperTrading", ta.config.PaperTrading))

	collaborators := []any{ta.feed}
	if any(ta.executor) != any(ta.feed) {
		collaborators = append(collaborators, ta.executor)
	}
	for _, c := range collaborators {
		if hc, ok := c.(HealthChecker); ok && !hc.HealthCheck(ctx) {
			return fmt.Errorf("execution venue health check failed")
		}
		if cl, ok := c.(ChainLister); ok {
			chains, err := cl.GetSupportedChains(ctx)
			if err != nil {
				ta.logger.Warn("Failed to list supported chains", zap.Error(err))
			} else {
				ta.logger.Info("Supported chains", zap.Strings("chains", chains))
			}
		}
	}

	ta.mu.Lock()
	if ta.initialized {
		ta.mu.Unlock()
		return nil
	}
	ta.initialized = true
	ta.mu.Unlock()

	for _, cfg := range ta.config.Strategies {
		if _, err := ta.AddStrategy(cfg); err != nil {
			ta.logger.Error("Skipping strategy", zap.String("name", cfg.Name), zap.Error(err))
		}
	}

	if account, ok := ta.executor.(execution.Account); ok {
		balances, err := account.GetBalances(ctx, ta.config.Chain)
		if err != nil {
			ta.logger.Warn("Failed to fetch initial balances", zap.Error(err))
		}
		for _, b := range balances {
			ta.logger.Info("Balance",
				zap.String("category", "balance"),
				zap.String("token", b.Token),
				zap.String("amount", b.Amount),
				zap.Float64("value", b.Value))
		}
	}

	ta.logger.Info("Trading agent initialized", zap.Int("strategies", len(ta.Strategies())))
	return nil
}

// Start initializes the agent if needed, runs one cycle immediately and then
// one per configured interval until Stop is called or ctx is done.
func (ta *TradingAgent) Start(ctx context.Context) error {
	ta.mu.RLock()
	running := ta.isRunning
	initialized := ta.initialized
	ta.mu.RUnlock()
	if running {
		return fmt.Errorf("agent already running")
	}

	if !initialized {
		if err := ta.Initialize(ctx); err != nil {
			return err
		}
	}

	ta.mu.Lock()
	if ta.isRunning {
		ta.mu.Unlock()
		return fmt.Errorf("agent already running")
	}
	ta.isRunning = true
	ta.isPaused = false
	ta.startTime = time.Now()
	ta.stopChan = make(chan struct{})
	ta.doneChan = make(chan struct{})
	stop, done := ta.stopChan, ta.doneChan
	ta.mu.Unlock()

	ta.logger.Info("Starting trading agent",
		zap.Duration("interval", ta.config.Interval),
		zap.Int("strategies", len(ta.Strategies())))

	go ta.mainLoop(ctx, stop, done)
	return nil
}

// Stop prevents further cycles. A cycle already in progress runs to
// completion; Done is closed once it has.
func (ta *TradingAgent) Stop() error {
	ta.mu.Lock()
	if !ta.isRunning {
		ta.mu.Unlock()
		return fmt.Errorf("agent not running")
	}
	ta.isRunning = false
	close(ta.stopChan)
	ta.mu.Unlock()

	ta.logger.Info("Stopping trading agent")
	return nil
}

// Done returns a channel closed when the scheduling loop has exited. It is
// nil if the agent was never started.
func (ta *TradingAgent) Done() <-chan struct{} {
	ta.mu.RLock()
	defer ta.mu.RUnlock()
	return ta.doneChan
}

// Pause skips scheduled cycles until Resume.
func (ta *TradingAgent) Pause() {
	ta.mu.Lock()
	defer ta.mu.Unlock()

	if ta.isRunning && !ta.isPaused {
		ta.isPaused = true
		ta.logger.Info("Trading paused")
	}
}

// Resume resumes scheduled cycles.
func (ta *TradingAgent) Resume() {
	ta.mu.Lock()
	defer ta.mu.Unlock()

	if ta.isRunning && ta.isPaused {
		ta.isPaused = false
		ta.logger.Info("Trading resumed")
	}
}

// IsRunning reports whether the scheduling loop is active.
func (ta *TradingAgent) IsRunning() bool {
	ta.mu.RLock()
	defer ta.mu.RUnlock()
	return ta.isRunning
}

// mainLoop is the main trading loop.
func (ta *TradingAgent) mainLoop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(ta.config.Interval)
	defer ticker.Stop()

	ta.scheduledCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			ta.mu.Lock()
			if ta.isRunning && ta.doneChan == done {
				ta.isRunning = false
				close(ta.stopChan)
			}
			ta.mu.Unlock()
			return
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			ta.scheduledCycle(ctx)
		}
	}
}

func (ta *TradingAgent) scheduledCycle(ctx context.Context) {
	ta.mu.RLock()
	paused := ta.isPaused
	ta.mu.RUnlock()
	if paused {
		return
	}

	if _, err := ta.RunCycle(ctx); err != nil {
		ta.logger.Error("Trading cycle failed", zap.Error(err))
	}
}

// RunCycle runs one complete cycle: fetch market data, analyze it with every
// enabled strategy and execute the surviving signals. Cycles never overlap.
func (ta *TradingAgent) RunCycle(ctx context.Context) (CycleReport, error) {
	ta.cycleMu.Lock()
	defer ta.cycleMu.Unlock()

	report := CycleReport{ID: uuid.New().String(), StartedAt: time.Now()}
	ta.logger.Debug("Starting trading cycle", zap.String("cycleId", report.ID))

	batch, err := ta.feed.GetMarketData(ctx, ta.config.Chain)
	if err != nil {
		err = fmt.Errorf("fetch market data: %w", err)
		ta.reportError(err)
		return report, err
	}
	report.MarketData = len(batch)

	if len(batch) == 0 {
		ta.logger.Warn("No market data available")
		ta.finishCycle(&report)
		return report, nil
	}

	if observer, ok := ta.executor.(execution.PriceObserver); ok {
		observer.ObservePrices(batch)
	}
	ta.logBalances(ctx)

	signals, faults := ta.analyze(ctx, batch)
	report.SignalsGenerated = len(signals)
	report.StrategyFaults = faults

	ta.processSignals(ctx, signals, &report)
	ta.finishCycle(&report)

	ta.logger.Info("Trading cycle complete",
		zap.String("cycleId", report.ID),
		zap.Int("marketData", report.MarketData),
		zap.Int("signals", report.SignalsGenerated),
		zap.Int("executed", report.TradesExecuted),
		zap.Int("failed", report.TradesFailed),
		zap.Duration("duration", report.Duration))

	return report, nil
}

func (ta *TradingAgent) finishCycle(report *CycleReport) {
	report.Duration = time.Since(report.StartedAt)

	ta.mu.Lock()
	ta.stats.CyclesRun++
	ta.stats.LastCycleTime = report.StartedAt
	r := *report
	ta.lastCycle = &r
	onCycle := ta.onCycle
	ta.mu.Unlock()

	ta.metrics.CycleCompleted(report.Duration)
	if onCycle != nil {
		onCycle(*report)
	}
}

// Analyze runs every enabled strategy over batch and returns the pooled
// signals in registration order. A failing strategy is logged and skipped.
func (ta *TradingAgent) Analyze(ctx context.Context, batch []types.MarketData) []types.TradingSignal {
	signals, _ := ta.analyze(ctx, batch)
	return signals
}

func (ta *TradingAgent) analyze(ctx context.Context, batch []types.MarketData) ([]types.TradingSignal, int) {
	var pooled []types.TradingSignal
	faults := 0

	for _, s := range ta.Strategies() {
		if !s.Enabled() {
			continue
		}

		signals, err := ta.runStrategy(ctx, s, slices.Clone(batch))
		if err != nil {
			faults++
			ta.metrics.StrategyFault(s.Kind().String())
			ta.logger.Error("Strategy analysis failed",
				zap.String("strategy", s.Name()),
				zap.Error(err))
			ta.reportError(fmt.Errorf("strategy %s: %w", s.Name(), err))
			continue
		}

		for _, signal := range signals {
			ta.metrics.SignalGenerated(s.Kind().String(), string(signal.Action))
		}
		pooled = append(pooled, signals...)
	}

	ta.mu.Lock()
	ta.stats.SignalsGenerated += len(pooled)
	ta.stats.StrategyFaults += faults
	ta.mu.Unlock()

	return pooled, faults
}

func (ta *TradingAgent) runStrategy(ctx context.Context, s strategy.Strategy, batch []types.MarketData) (signals []types.TradingSignal, err error) {
	defer func() {
		if r := recover(); r != nil {
			signals = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Analyze(ctx, batch)
}

// ProcessSignals filters signals by the confidence floor and executes the
// rest in order. Execution failures are logged and do not stop processing.
func (ta *TradingAgent) ProcessSignals(ctx context.Context, signals []types.TradingSignal) CycleReport {
	var report CycleReport
	ta.processSignals(ctx, signals, &report)
	return report
}

func (ta *TradingAgent) processSignals(ctx context.Context, signals []types.TradingSignal, report *CycleReport) {
	ta.mu.RLock()
	onSignal, onTrade := ta.onSignal, ta.onTrade
	ta.mu.RUnlock()

	for _, signal := range signals {
		ta.mu.Lock()
		ta.stats.SignalsProcessed++
		ta.mu.Unlock()

		if signal.Confidence < ConfidenceFloor {
			ta.logger.Debug("Signal below confidence floor",
				zap.String("token", signal.Token),
				zap.String("action", string(signal.Action)),
				zap.Float64("confidence", signal.Confidence))
			report.SignalsFiltered++
			ta.metrics.SignalFiltered()
			ta.mu.Lock()
			ta.stats.SignalsRejected++
			ta.mu.Unlock()
			continue
		}

		ta.mu.Lock()
		ta.stats.SignalsAccepted++
		ta.mu.Unlock()

		if onSignal != nil {
			onSignal(signal)
		}

		if signal.Action == types.ActionHold {
			ta.logger.Info("Hold signal", zap.String("token", signal.Token), zap.String("reason", signal.Reason))
			report.HoldSignals++
			ta.mu.Lock()
			ta.stats.HoldSignals++
			ta.mu.Unlock()
			continue
		}

		req := ta.TradeRequest(signal)
		resp, err := ta.executor.ExecuteTrade(ctx, req)
		if err != nil {
			ta.logger.Error("Trade execution failed",
				zap.String("token", signal.Token),
				zap.String("action", string(signal.Action)),
				zap.String("amount", req.Amount),
				zap.Error(err))
			report.TradesFailed++
			ta.metrics.TradeFailed(signal.Token, string(signal.Action))
			ta.mu.Lock()
			ta.stats.TradesFailed++
			ta.mu.Unlock()
			ta.reportError(fmt.Errorf("execute %s %s: %w", signal.Action, signal.Token, err))
			continue
		}

		ta.logger.Info("Trade executed",
			zap.String("category", "trade"),
			zap.String("tradeId", resp.TradeID),
			zap.String("status", resp.Status),
			zap.String("from", req.FromToken),
			zap.String("to", req.ToToken),
			zap.String("amount", req.Amount),
			zap.Float64("confidence", signal.Confidence))

		report.TradesExecuted++
		ta.metrics.TradeExecuted(signal.Token, string(signal.Action))
		ta.mu.Lock()
		ta.stats.TradesExecuted++
		ta.stats.LastTradeTime = time.Now()
		ta.mu.Unlock()

		if onTrade != nil {
			onTrade(signal, req, resp)
		}
	}
}

// TradeRequest maps a signal onto the quote-token pair convention: a buy
// spends the quote token to acquire the signal's token and a sell does the
// inverse.
func (ta *TradingAgent) TradeRequest(signal types.TradingSignal) types.TradeExecutionRequest {
	from, to := ta.config.QuoteToken, signal.Token
	if signal.Action == types.ActionSell {
		from, to = signal.Token, ta.config.QuoteToken
	}

	amount := signal.Amount
	if amount == "" {
		amount = ta.config.DefaultTradeAmount
	}

	return types.TradeExecutionRequest{
		FromToken: from,
		ToToken:   to,
		Amount:    amount,
		Reason:    fmt.Sprintf("%s signal: %s", signal.Action, signal.Reason),
		Chain:     ta.config.Chain,
	}
}

func (ta *TradingAgent) logBalances(ctx context.Context) {
	account, ok := ta.executor.(execution.Account)
	if !ok {
		return
	}
	balances, err := account.GetBalances(ctx, ta.config.Chain)
	if err != nil {
		ta.logger.Warn("Failed to fetch balances", zap.Error(err))
		return
	}
	for _, b := range balances {
		ta.logger.Debug("Balance",
			zap.String("category", "balance"),
			zap.String("token", b.Token),
			zap.String("amount", b.Amount))
	}
}

func (ta *TradingAgent) reportError(err error) {
	ta.mu.RLock()
	onError := ta.onError
	ta.mu.RUnlock()
	if onError != nil {
		onError(err)
	}
}

// Register adds an already built strategy after those already loaded.
func (ta *TradingAgent) Register(s strategy.Strategy) {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	ta.strategies = append(ta.strategies, s)
}

// AddStrategy builds a strategy from config and registers it.
func (ta *TradingAgent) AddStrategy(config types.StrategyConfig) (strategy.Strategy, error) {
	s, err := ta.factory.Create(config)
	if err != nil {
		return nil, err
	}
	ta.Register(s)
	ta.logger.Info("Strategy added",
		zap.String("name", s.Name()),
		zap.String("kind", s.Kind().String()),
		zap.Bool("enabled", s.Enabled()))
	return s, nil
}

// RemoveStrategy removes the first strategy whose display name or kind name
// matches name, ignoring case.
func (ta *TradingAgent) RemoveStrategy(name string) error {
	ta.mu.Lock()
	defer ta.mu.Unlock()

	i := ta.indexOf(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrStrategyNotFound, name)
	}
	removed := ta.strategies[i]
	ta.strategies = slices.Delete(ta.strategies, i, i+1)
	ta.logger.Info("Strategy removed", zap.String("name", removed.Name()))
	return nil
}

// UpdateStrategy applies a partial configuration change to the strategy
// matching name.
func (ta *TradingAgent) UpdateStrategy(name string, update types.StrategyUpdate) (StrategyStatus, error) {
	ta.mu.RLock()
	i := ta.indexOf(name)
	var s strategy.Strategy
	if i >= 0 {
		s = ta.strategies[i]
	}
	ta.mu.RUnlock()

	if s == nil {
		return StrategyStatus{}, fmt.Errorf("%w: %s", ErrStrategyNotFound, name)
	}
	s.UpdateConfig(update)
	ta.logger.Info("Strategy updated", zap.String("name", s.Name()))
	return strategyStatus(s), nil
}

func (ta *TradingAgent) indexOf(name string) int {
	name = strings.TrimSpace(name)
	for i, s := range ta.strategies {
		if strings.EqualFold(s.Name(), name) || strings.EqualFold(s.Kind().String(), name) {
			return i
		}
	}
	return -1
}

// Strategy returns the first strategy whose display name or kind name
// matches name, ignoring case.
func (ta *TradingAgent) Strategy(name string) (strategy.Strategy, bool) {
	ta.mu.RLock()
	defer ta.mu.RUnlock()
	i := ta.indexOf(name)
	if i < 0 {
		return nil, false
	}
	return ta.strategies[i], true
}

// Strategies returns the loaded strategies in registration order.
func (ta *TradingAgent) Strategies() []strategy.Strategy {
	ta.mu.RLock()
	defer ta.mu.RUnlock()
	return slices.Clone(ta.strategies)
}

// AvailableStrategies returns every strategy kind the agent can build.
func (ta *TradingAgent) AvailableStrategies() []string {
	return ta.factory.Available()
}

// GetStatus returns the agent's current status.
func (ta *TradingAgent) GetStatus() AgentStatus {
	strategies := ta.Strategies()

	ta.mu.RLock()
	defer ta.mu.RUnlock()

	status := AgentStatus{
		IsRunning:       ta.isRunning,
		IsPaused:        ta.isPaused,
		Chain:           ta.config.Chain,
		QuoteToken:      ta.config.QuoteToken,
		Interval:        ta.config.Interval,
		PaperTrading:    ta.config.PaperTrading,
		ConfidenceFloor: ConfidenceFloor,
		Strategies:      make([]StrategyStatus, len(strategies)),
		Metrics:         ta.stats,
	}
	if ta.isRunning {
		status.Uptime = time.Since(ta.startTime)
	}
	if ta.lastCycle != nil {
		r := *ta.lastCycle
		status.LastCycle = &r
	}
	for i, s := range strategies {
		status.Strategies[i] = strategyStatus(s)
	}
	return status
}

func strategyStatus(s strategy.Strategy) StrategyStatus {
	return StrategyStatus{
		Name:        s.Name(),
		Kind:        s.Kind(),
		Description: s.Description(),
		Enabled:     s.Enabled(),
		Config:      s.Config(),
	}
}

// GetMetrics returns a snapshot of the agent's counters.
func (ta *TradingAgent) GetMetrics() AgentMetrics {
	ta.mu.RLock()
	defer ta.mu.RUnlock()
	return ta.stats
}

// GetTradeHistory returns up to limit recent trades from the venue.
func (ta *TradingAgent) GetTradeHistory(ctx context.Context, limit int) ([]types.Trade, error) {
	account, ok := ta.executor.(execution.Account)
	if !ok {
		return nil, ErrNotSupported
	}
	return account.GetTradeHistory(ctx, limit, ta.config.Chain)
}

// GetPositions returns open positions from the venue.
func (ta *TradingAgent) GetPositions(ctx context.Context) ([]types.Position, error) {
	account, ok := ta.executor.(execution.Account)
	if !ok {
		return nil, ErrNotSupported
	}
	return account.GetPositions(ctx, ta.config.Chain)
}

// GetBalances returns wallet balances from the venue.
func (ta *TradingAgent) GetBalances(ctx context.Context) ([]types.Balance, error) {
	account, ok := ta.executor.(execution.Account)
	if !ok {
		return nil, ErrNotSupported
	}
	return account.GetBalances(ctx, ta.config.Chain)
}

// SetOnTrade sets the callback invoked after every executed trade.
func (ta *TradingAgent) SetOnTrade(callback func(types.TradingSignal, types.TradeExecutionRequest, *types.TradeExecutionResponse)) {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	ta.onTrade = callback
}

// SetOnSignal sets the callback invoked for every signal that clears the
// confidence floor.
func (ta *TradingAgent) SetOnSignal(callback func(types.TradingSignal)) {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	ta.onSignal = callback
}

// SetOnCycle sets the callback invoked after every cycle.
func (ta *TradingAgent) SetOnCycle(callback func(CycleReport)) {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	ta.onCycle = callback
}

// SetOnError sets the callback invoked for strategy and execution faults.
func (ta *TradingAgent) SetOnError(callback func(error)) {
	ta.mu.Lock()
	defer ta.mu.Unlock()
	ta.onError = callback
}
