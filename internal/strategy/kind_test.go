package strategy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/atlas-desktop/recall-agent/internal/strategy"
	"github.com/atlas-desktop/recall-agent/pkg/types"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name string
		want strategy.Kind
	}{
		{"moving_average", strategy.KindMovingAverage},
		{"MOVING_AVERAGE", strategy.KindMovingAverage},
		{" Simple_Trigger ", strategy.KindSimpleTrigger},
	}
	for _, tt := range tests {
		got, err := strategy.ParseKind(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}

	_, err := strategy.ParseKind("bogus")
	assert.ErrorIs(t, err, strategy.ErrUnknownStrategy)
}

func TestListAvailable(t *testing.T) {
	assert.Equal(t, []string{"moving_average", "simple_trigger"}, strategy.ListAvailable())
}

func TestFactoryCreate(t *testing.T) {
	factory := strategy.NewFactory(zap.NewNop())

	ma, err := factory.Create(types.DefaultMovingAverageConfig())
	require.NoError(t, err)
	assert.Equal(t, strategy.KindMovingAverage, ma.Kind())
	assert.Equal(t, "Moving Average Strategy", ma.Name())
	assert.True(t, ma.Enabled())

	cfg := types.DefaultSimpleTriggerConfig()
	cfg.Name = "Simple_Trigger"
	cfg.Enabled = false
	st, err := factory.Create(cfg)
	require.NoError(t, err)
	assert.Equal(t, strategy.KindSimpleTrigger, st.Kind())
	assert.Equal(t, "Simple Trigger Strategy", st.Name())
	assert.False(t, st.Enabled())
}

func TestFactoryUnknownStrategy(t *testing.T) {
	factory := strategy.NewFactory(zap.NewNop())

	s, err := factory.Create(types.StrategyConfig{Name: "bogus", Enabled: true})
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, strategy.ErrUnknownStrategy))
	assert.Contains(t, err.Error(), "bogus")
}

func TestKindMarshalText(t *testing.T) {
	text, err := strategy.KindSimpleTrigger.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "simple_trigger", string(text))
	assert.Equal(t, "Kind(0)", strategy.Kind(0).String())
}
