package strategy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atlas-desktop/recall-agent/pkg/types"
	"go.uber.org/zap"
)

// ErrUnknownStrategy is returned when a configuration names a strategy kind
// that does not exist.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Kind identifies a concrete strategy implementation.
type Kind int

const (
	KindMovingAverage Kind = iota + 1
	KindSimpleTrigger
)

var kinds = []Kind{KindMovingAverage, KindSimpleTrigger}

// String returns the configuration name of the kind.
func (k Kind) String() string {
	switch k {
	case KindMovingAverage:
		return "moving_average"
	case KindSimpleTrigger:
		return "simple_trigger"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseKind resolves a configuration name to a Kind, ignoring case and
// surrounding whitespace.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, k := range kinds {
		if k.String() == normalized {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// ListAvailable returns the names of every known strategy kind.
func ListAvailable() []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

// Factory builds strategies from configuration.
type Factory struct {
	logger *zap.Logger
}

// NewFactory creates a new strategy factory.
func NewFactory(logger *zap.Logger) *Factory {
	return &Factory{logger: logger}
}

// Create builds the strategy named by config.Name. It fails with
// ErrUnknownStrategy for names that match no kind.
func (f *Factory) Create(config types.StrategyConfig) (Strategy, error) {
	kind, err := ParseKind(config.Name)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindMovingAverage:
		return NewMovingAverageStrategy(f.logger, config), nil
	case KindSimpleTrigger:
		return NewSimpleTriggerStrategy(f.logger, config), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, kind)
	}
}

// Available returns the names of every known strategy kind.
func (f *Factory) Available() []string {
	return ListAvailable()
}
