package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atlas-desktop/recall-agent/internal/strategy"
)

func TestPriceHistoryBounded(t *testing.T) {
	h := strategy.NewPriceHistory(3)

	for i := 1; i <= 5; i++ {
		n := h.Append("X", float64(i))
		assert.LessOrEqual(t, n, 3)
	}

	assert.Equal(t, 3, h.Len("X"))
	assert.Equal(t, []float64{3, 4, 5}, h.Values("X"))
	assert.Equal(t, []float64{4, 5}, h.Tail(nil, "X", 2))
	assert.Equal(t, []float64{3, 4, 5}, h.Tail(nil, "X", 10))
}

func TestPriceHistoryTokensIndependent(t *testing.T) {
	h := strategy.NewPriceHistory(10)
	h.Append("A", 1)
	h.Append("B", 2)
	h.Append("A", 3)

	assert.Equal(t, []float64{1, 3}, h.Values("A"))
	assert.Equal(t, []float64{2}, h.Values("B"))
	assert.Empty(t, h.Values("C"))
	assert.Equal(t, 0, h.Len("C"))
	assert.Equal(t, 2, h.Tokens())
}

func TestPriceHistoryResize(t *testing.T) {
	h := strategy.NewPriceHistory(4)
	for i := 1; i <= 6; i++ {
		h.Append("X", float64(i))
	}

	h.Resize(2)
	assert.Equal(t, 2, h.Capacity())
	assert.Equal(t, []float64{5, 6}, h.Values("X"))

	h.Resize(5)
	h.Append("X", 7)
	assert.Equal(t, []float64{5, 6, 7}, h.Values("X"))

	h.Resize(0)
	assert.Equal(t, 1, h.Capacity())
	assert.Equal(t, []float64{7}, h.Values("X"))
}

func TestPriceHistoryValuesIsCopy(t *testing.T) {
	h := strategy.NewPriceHistory(3)
	h.Append("X", 1)

	values := h.Values("X")
	values[0] = 99

	assert.Equal(t, []float64{1}, h.Values("X"))
}

func TestPriceHistoryReset(t *testing.T) {
	h := strategy.NewPriceHistory(3)
	h.Append("X", 1)
	h.Reset()

	assert.Equal(t, 0, h.Len("X"))
	assert.Equal(t, 0, h.Tokens())
}
