// Package main provides the entry point for the Recall trading agent.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/atlas-desktop/recall-agent/internal/api"
	"github.com/atlas-desktop/recall-agent/internal/autonomous"
	"github.com/atlas-desktop/recall-agent/internal/config"
	"github.com/atlas-desktop/recall-agent/internal/data"
	"github.com/atlas-desktop/recall-agent/internal/execution"
	"github.com/atlas-desktop/recall-agent/internal/messaging"
	"github.com/atlas-desktop/recall-agent/internal/metrics"
	"github.com/atlas-desktop/recall-agent/internal/recall"
	"github.com/atlas-desktop/recall-agent/pkg/types"
)

var _ autonomous.MarketDataSource = (*recall.Client)(nil)

func main() {
	configPath := flag.String("config", "", "Path to config file (yaml, json or toml)")
	paper := flag.Bool("paper", false, "Force paper trading mode")
	interval := flag.Duration("interval", 0, "Override the trading interval")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *paper {
		cfg.Agent.PaperTrading = true
	}
	if *interval > 0 {
		cfg.Agent.Interval = *interval
	}

	logger, err := setupLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	redacted := cfg.Redacted()
	logger.Info("Starting Recall trading agent",
		zap.String("chain", cfg.Agent.DefaultChain),
		zap.String("baseUrl", cfg.Agent.BaseURL),
		zap.String("apiKey", redacted.Agent.APIKey),
		zap.Duration("interval", cfg.Agent.Interval),
		zap.Bool("paperTrading", cfg.Agent.PaperTrading),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Market data and execution venue
	var (
		feed     autonomous.MarketDataSource
		executor execution.Executor
	)
	if cfg.Agent.PaperTrading {
		feed = data.NewSimulatedFeed(logger, data.FeedConfig{
			Chain:       cfg.Agent.DefaultChain,
			StartPrices: cfg.Paper.StartPrices,
			Volatility:  cfg.Paper.Volatility,
			Seed:        cfg.Paper.Seed,
		})
		executor = execution.NewPaperExecutor(logger, paperConfig(cfg))
	} else {
		client := recall.NewClient(logger, recall.Config{
			APIKey:            cfg.Agent.APIKey,
			BaseURL:           cfg.Agent.BaseURL,
			DefaultChain:      cfg.Agent.DefaultChain,
			Timeout:           cfg.Agent.RequestTimeout,
			RequestsPerSecond: cfg.Agent.RequestsPerSecond,
			Burst:             1,
		})
		feed = client
		executor = client
	}

	guard := execution.NewRiskGuard(logger, execution.RiskConfig{
		MaxOrderAmount:         decimal.NewFromFloat(cfg.Risk.MaxOrderAmount),
		MaxDailyTrades:         cfg.Risk.MaxDailyTrades,
		MaxConsecutiveFailures: cfg.Risk.MaxConsecutiveFailures,
		CooldownPeriod:         cfg.Risk.CooldownPeriod,
	}, executor)

	agent := autonomous.NewTradingAgent(logger, autonomous.AgentConfig{
		Chain:              cfg.Agent.DefaultChain,
		QuoteToken:         cfg.Agent.QuoteToken,
		DefaultTradeAmount: cfg.Agent.DefaultTradeAmount,
		Interval:           cfg.Agent.Interval,
		PaperTrading:       cfg.Agent.PaperTrading,
		Strategies:         cfg.Strategies,
	}, feed, guard, m)

	// WebSocket hub for dashboard updates
	wsHub := api.NewHub(logger)
	go wsHub.Run(ctx)

	var publisher *messaging.RedisSignalPublisher
	if cfg.Redis.Enabled {
		rdb, err := messaging.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		publisher = messaging.NewRedisSignalPublisher(logger, rdb, cfg.Redis.ChannelPrefix)
	}

	// Wire agent callbacks
	agent.SetOnSignal(wsHub.BroadcastSignal)
	agent.SetOnTrade(func(signal types.TradingSignal, req types.TradeExecutionRequest, resp *types.TradeExecutionResponse) {
		wsHub.BroadcastTrade(signal, req, resp)
		if publisher != nil {
			publisher.OnTrade(signal, req, resp)
		}
	})
	agent.SetOnCycle(wsHub.BroadcastCycle)
	agent.SetOnError(wsHub.BroadcastError)
	guard.OnViolation = wsHub.BroadcastRiskAlert

	var metricsHandler http.Handler
	if cfg.Server.EnableMetrics {
		metricsHandler = m.Handler()
	}
	server := api.NewServer(ctx, logger, cfg.Server, agent, wsHub, metricsHandler)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", zap.Error(err))
		}
	}()

	if err := agent.Start(ctx); err != nil {
		logger.Fatal("Failed to start trading agent", zap.Error(err))
	}

	logger.Info("Agent started successfully",
		zap.String("http", fmt.Sprintf("http://%s:%d/api/v1", cfg.Server.Host, cfg.Server.Port)),
		zap.String("ws", fmt.Sprintf("ws://%s:%d%s", cfg.Server.Host, cfg.Server.Port, cfg.Server.WebSocketPath)),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if agent.IsRunning() {
		if err := agent.Stop(); err != nil {
			logger.Error("Error stopping agent", zap.Error(err))
		}
		select {
		case <-agent.Done():
		case <-shutdownCtx.Done():
			logger.Warn("Timed out waiting for the trading cycle to finish")
		}
	}

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown", zap.Error(err))
	}
	cancel()

	status := agent.GetStatus()
	logger.Info("Agent stopped",
		zap.Int("cycles", status.Metrics.CyclesRun),
		zap.Int("tradesExecuted", status.Metrics.TradesExecuted),
	)
}

func paperConfig(cfg *config.Config) execution.PaperConfig {
	balances := make(map[string]decimal.Decimal, len(cfg.Paper.InitialBalances))
	for token, amount := range cfg.Paper.InitialBalances {
		balances[token] = decimal.NewFromFloat(amount)
	}
	return execution.PaperConfig{
		Chain:           cfg.Agent.DefaultChain,
		InitialBalances: balances,
		SlippageBps:     decimal.NewFromFloat(cfg.Paper.SlippageBps),
	}
}

func setupLogger(level, file string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	outputs := []string{"stdout"}
	if file != "" {
		outputs = append(outputs, file)
	}

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalColorLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}
