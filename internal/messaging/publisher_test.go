package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/pkg/types"
)

type published struct {
	channel string
	payload []byte
}

type fakeRedis struct {
	messages []published
	err      error
}

func (f *fakeRedis) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.messages = append(f.messages, published{channel: channel, payload: message.([]byte)})
	cmd.SetVal(1)
	return cmd
}

func TestPublishUsesTokenChannel(t *testing.T) {
	fake := &fakeRedis{}
	p := NewRedisSignalPublisher(zap.NewNop(), fake, "")

	signal := types.TradingSignal{Action: types.ActionBuy, Confidence: 0.8, Reason: "r", Token: "WETH", Amount: "40"}
	req := types.TradeExecutionRequest{FromToken: "USDC", ToToken: "WETH", Amount: "40"}
	require.NoError(t, p.Publish(context.Background(), SignalMessage{Signal: signal, Request: req}))

	require.Len(t, fake.messages, 1)
	assert.Equal(t, "agent.signals.WETH", fake.messages[0].channel)

	var msg SignalMessage
	require.NoError(t, json.Unmarshal(fake.messages[0].payload, &msg))
	assert.Equal(t, signal, msg.Signal)
	assert.Equal(t, req, msg.Request)
	assert.False(t, msg.Timestamp.IsZero())
}

func TestPublishError(t *testing.T) {
	fake := &fakeRedis{err: errors.New("connection refused")}
	p := NewRedisSignalPublisher(zap.NewNop(), fake, "custom")

	err := p.Publish(context.Background(), SignalMessage{Signal: types.TradingSignal{Token: "X"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "custom.X")
}

func TestOnTradeSwallowsErrors(t *testing.T) {
	fake := &fakeRedis{err: errors.New("down")}
	p := NewRedisSignalPublisher(zap.NewNop(), fake, "")

	p.OnTrade(types.TradingSignal{Token: "X"}, types.TradeExecutionRequest{}, nil)
	assert.Empty(t, fake.messages)
}
