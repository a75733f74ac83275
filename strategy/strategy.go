// Package strategy houses signal generation logic. Strategies map a price
// series and its derived indicators to one discrete signal per bar, the
// simulator consumes them without knowing which strategy produced them.
package strategy

import (
	"fmt"

	"github.com/quantcli/quant/shared"
)

// Strategy defines the requirements for generating trade signals from a
// price series.
type Strategy interface {
	// Name returns the strategy identifier.
	Name() string

	// Signals derives one signal per bar of the provided price series.
	Signals(series *shared.PriceSeries) ([]shared.Signal, error)
}

// Params represents the parameter surface shared by strategy constructors.
type Params struct {
	// FastPeriod is the fast moving average window.
	FastPeriod int
	// SlowPeriod is the slow moving average window.
	SlowPeriod int
	// MovingAverage selects the moving average flavour used.
	MovingAverage MAKind
}

// New initializes the strategy with the provided identifier.
func New(name string, params Params) (Strategy, error) {
	switch name {
	case CrossoverName:
		return NewCrossover(&CrossoverConfig{
			FastPeriod:    params.FastPeriod,
			SlowPeriod:    params.SlowPeriod,
			MovingAverage: params.MovingAverage,
		})
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", name, shared.ErrInvalidParameter)
	}
}
