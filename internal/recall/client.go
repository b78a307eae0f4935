// Package recall provides a client for the Recall trading competition API.
package recall

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/atlas-desktop/recall-agent/pkg/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the sandbox competition endpoint.
const DefaultBaseURL = "https://api.sandbox.competitions.recall.network"

// Config contains client configuration.
type Config struct {
	APIKey       string
	BaseURL      string
	DefaultChain string
	Timeout      time.Duration
	// RequestsPerSecond bounds outbound calls. Zero disables limiting.
	RequestsPerSecond float64
	Burst             int
}

// Client talks to the Recall REST API.
type Client struct {
	logger       *zap.Logger
	apiKey       string
	baseURL      string
	defaultChain string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

// APIError is returned when the API reports a failure.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("recall api %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// NewClient creates a new Recall API client.
func NewClient(logger *zap.Logger, cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.DefaultChain == "" {
		cfg.DefaultChain = "ethereum"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		logger:       logger.Named("recall"),
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		defaultChain: cfg.DefaultChain,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		limiter:      limiter,
	}
}

// GetMarketData returns the current price snapshot for every token on chain.
func (c *Client) GetMarketData(ctx context.Context, chain string) ([]types.MarketData, error) {
	var data []types.MarketData
	if err := c.do(ctx, http.MethodGet, "/api/market-data", chainQuery(chain), nil, &data); err != nil {
		return nil, fmt.Errorf("get market data: %w", err)
	}
	return data, nil
}

// GetTokenPrice returns the current price of token on chain.
func (c *Client) GetTokenPrice(ctx context.Context, token, chain string) (*types.MarketData, error) {
	query := chainQuery(chain)
	query.Set("token", token)

	var data types.MarketData
	if err := c.do(ctx, http.MethodGet, "/api/price", query, nil, &data); err != nil {
		return nil, fmt.Errorf("get price for %s: %w", token, err)
	}
	return &data, nil
}

// ExecuteTrade submits a trade. An empty chain uses the client's default.
func (c *Client) ExecuteTrade(ctx context.Context, req types.TradeExecutionRequest) (*types.TradeExecutionResponse, error) {
	if req.Chain == "" {
		req.Chain = c.defaultChain
	}

	c.logger.Info("Executing trade",
		zap.String("from", req.FromToken),
		zap.String("to", req.ToToken),
		zap.String("amount", req.Amount),
		zap.String("chain", req.Chain))

	var resp types.TradeExecutionResponse
	if err := c.do(ctx, http.MethodPost, "/api/trade/execute", nil, req, &resp); err != nil {
		return nil, fmt.Errorf("execute trade: %w", err)
	}
	return &resp, nil
}

// GetTradeHistory returns up to limit past trades. A non-positive limit
// leaves the page size to the server.
func (c *Client) GetTradeHistory(ctx context.Context, limit int, chain string) ([]types.Trade, error) {
	query := chainQuery(chain)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var trades []types.Trade
	if err := c.do(ctx, http.MethodGet, "/api/trades/history", query, nil, &trades); err != nil {
		return nil, fmt.Errorf("get trade history: %w", err)
	}
	return trades, nil
}

// GetTradeStatus returns a single trade by ID.
func (c *Client) GetTradeStatus(ctx context.Context, tradeID string) (*types.Trade, error) {
	var trade types.Trade
	if err := c.do(ctx, http.MethodGet, "/api/trades/"+url.PathEscape(tradeID), nil, nil, &trade); err != nil {
		return nil, fmt.Errorf("get trade %s: %w", tradeID, err)
	}
	return &trade, nil
}

// GetBalances returns wallet balances, optionally filtered by chain.
func (c *Client) GetBalances(ctx context.Context, chain string) ([]types.Balance, error) {
	var balances []types.Balance
	if err := c.do(ctx, http.MethodGet, "/api/balances", chainQuery(chain), nil, &balances); err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}
	return balances, nil
}

// GetPositions returns open positions, optionally filtered by chain.
func (c *Client) GetPositions(ctx context.Context, chain string) ([]types.Position, error) {
	var positions []types.Position
	if err := c.do(ctx, http.MethodGet, "/api/positions", chainQuery(chain), nil, &positions); err != nil {
		return nil, fmt.Errorf("get positions: %w", err)
	}
	return positions, nil
}

// HealthCheck reports whether the API answers its health endpoint with 200.
func (c *Client) HealthCheck(ctx context.Context) bool {
	if err := c.limiter.Wait(ctx); err != nil {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Health check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK
}

// GetSupportedChains returns the chains the API can trade on.
func (c *Client) GetSupportedChains(ctx context.Context) ([]string, error) {
	var chains []string
	if err := c.do(ctx, http.MethodGet, "/api/chains", nil, nil, &chains); err != nil {
		return nil, fmt.Errorf("get supported chains: %w", err)
	}
	return chains, nil
}

// DefaultChain returns the chain used when a request names none.
func (c *Client) DefaultChain() string {
	return c.defaultChain
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	reqURL := c.baseURL + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return err
	}
	c.authorize(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("API request",
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func chainQuery(chain string) url.Values {
	query := url.Values{}
	if chain != "" {
		query.Set("chain", chain)
	}
	return query
}
