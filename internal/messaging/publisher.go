// Package messaging fans executed signals out over Redis pub/sub.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/pkg/types"
)

// DefaultChannelPrefix is prepended to the token symbol to form the channel.
const DefaultChannelPrefix = "agent.signals"

// publisher is the subset of *redis.Client used here.
type publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// SignalMessage is the payload published for every executed signal.
type SignalMessage struct {
	Signal    types.TradingSignal           `json:"signal"`
	Request   types.TradeExecutionRequest   `json:"request"`
	Response  *types.TradeExecutionResponse `json:"response,omitempty"`
	Timestamp time.Time                     `json:"timestamp"`
}

// RedisSignalPublisher publishes executed signals to
// "<prefix>.<token>" channels.
type RedisSignalPublisher struct {
	logger *zap.Logger
	client publisher
	prefix string
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
		PoolSize: 10,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewRedisSignalPublisher creates a new signal publisher.
func NewRedisSignalPublisher(logger *zap.Logger, client publisher, prefix string) *RedisSignalPublisher {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	return &RedisSignalPublisher{
		logger: logger.Named("publisher"),
		client: client,
		prefix: prefix,
	}
}

// Channel returns the channel signals for token are published on.
func (p *RedisSignalPublisher) Channel(token string) string {
	return p.prefix + "." + token
}

// Publish sends msg to the channel of its signal's token.
func (p *RedisSignalPublisher) Publish(ctx context.Context, msg SignalMessage) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal signal: %w", err)
	}

	channel := p.Channel(msg.Signal.Token)
	if err := p.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	p.logger.Debug("Signal published",
		zap.String("channel", channel),
		zap.String("action", string(msg.Signal.Action)))
	return nil
}

// OnTrade adapts Publish to the agent's trade callback. Failures are logged
// and never propagate.
func (p *RedisSignalPublisher) OnTrade(signal types.TradingSignal, req types.TradeExecutionRequest, resp *types.TradeExecutionResponse) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := p.Publish(ctx, SignalMessage{Signal: signal, Request: req, Response: resp})
	if err != nil {
		p.logger.Warn("Failed to publish signal", zap.String("token", signal.Token), zap.Error(err))
	}
}
