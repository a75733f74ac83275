package strategy

import (
	"errors"
	"fmt"

	"github.com/quantcli/quant/indicator"
	"github.com/quantcli/quant/shared"
)

const (
	// CrossoverName is the moving average crossover strategy identifier.
	CrossoverName = "ma_crossover"
)

// MAKind represents the moving average flavour a crossover tracks.
type MAKind int

const (
	SimpleMA MAKind = iota
	ExponentialMA
)

// String stringifies the provided moving average kind.
func (k MAKind) String() string {
	switch k {
	case SimpleMA:
		return "sma"
	case ExponentialMA:
		return "ema"
	default:
		return "unknown"
	}
}

// ParseMAKind parses a moving average kind from its name.
func ParseMAKind(name string) (MAKind, error) {
	switch name {
	case "sma":
		return SimpleMA, nil
	case "ema":
		return ExponentialMA, nil
	default:
		return SimpleMA, fmt.Errorf("unknown moving average kind '%s': %w",
			name, shared.ErrInvalidParameter)
	}
}

// CrossoverConfig represents the moving average crossover configuration.
type CrossoverConfig struct {
	// FastPeriod is the fast moving average window.
	FastPeriod int
	// SlowPeriod is the slow moving average window.
	SlowPeriod int
	// MovingAverage selects the moving average flavour used.
	MovingAverage MAKind
}

// Validate asserts the config has sane inputs.
func (cfg *CrossoverConfig) Validate() error {
	var errs error

	if cfg.FastPeriod <= 0 {
		errs = errors.Join(errs, fmt.Errorf("fast period must be positive, got %d: %w",
			cfg.FastPeriod, shared.ErrInvalidParameter))
	}
	if cfg.SlowPeriod <= cfg.FastPeriod {
		errs = errors.Join(errs, fmt.Errorf("slow period %d must exceed fast period %d: %w",
			cfg.SlowPeriod, cfg.FastPeriod, shared.ErrInvalidParameter))
	}
	if cfg.MovingAverage != SimpleMA && cfg.MovingAverage != ExponentialMA {
		errs = errors.Join(errs, fmt.Errorf("unknown moving average kind %d: %w",
			cfg.MovingAverage, shared.ErrInvalidParameter))
	}

	return errs
}

// Crossover represents a moving average crossover strategy. It buys on the
// first bar where the fast average moves from below or equal to strictly
// above the slow average, and sells on the reverse cross.
type Crossover struct {
	cfg *CrossoverConfig
}

// Ensure the crossover strategy implements the Strategy interface.
var _ Strategy = (*Crossover)(nil)

// NewCrossover initializes a new moving average crossover strategy.
func NewCrossover(cfg *CrossoverConfig) (*Crossover, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating crossover config: %w", err)
	}

	return &Crossover{
		cfg: cfg,
	}, nil
}

// Name returns the strategy identifier.
func (c *Crossover) Name() string {
	return CrossoverName
}

// movingAverages derives the fast and slow moving average series for the
// provided price series.
func (c *Crossover) movingAverages(series *shared.PriceSeries) (*indicator.Series, *indicator.Series, error) {
	switch c.cfg.MovingAverage {
	case ExponentialMA:
		fast, err := indicator.EMA(series, c.cfg.FastPeriod)
		if err != nil {
			return nil, nil, fmt.Errorf("computing fast ema: %w", err)
		}

		slow, err := indicator.EMA(series, c.cfg.SlowPeriod)
		if err != nil {
			return nil, nil, fmt.Errorf("computing slow ema: %w", err)
		}

		return fast, slow, nil
	default:
		fast, err := indicator.SMA(series, c.cfg.FastPeriod)
		if err != nil {
			return nil, nil, fmt.Errorf("computing fast sma: %w", err)
		}

		slow, err := indicator.SMA(series, c.cfg.SlowPeriod)
		if err != nil {
			return nil, nil, fmt.Errorf("computing slow sma: %w", err)
		}

		return fast, slow, nil
	}
}

// Signals derives one signal per bar of the provided price series. Detecting
// a cross needs the preceding bar's pair, so the first bar with both averages
// defined always holds. A series too short for the slow window holds
// throughout.
func (c *Crossover) Signals(series *shared.PriceSeries) ([]shared.Signal, error) {
	fast, slow, err := c.movingAverages(series)
	if err != nil {
		return nil, err
	}

	signals := make([]shared.Signal, series.Len())

	var prevFast, prevSlow float64
	var prevDefined bool
	for idx, bar := range series.Bars() {
		kind := shared.Hold

		fastValue, fastDefined := fast.Value(idx)
		slowValue, slowDefined := slow.Value(idx)
		if fastDefined && slowDefined {
			if prevDefined {
				switch {
				case prevFast <= prevSlow && fastValue > slowValue:
					kind = shared.Buy
				case prevFast >= prevSlow && fastValue < slowValue:
					kind = shared.Sell
				}
			}

			prevFast = fastValue
			prevSlow = slowValue
			prevDefined = true
		}

		signals[idx] = shared.NewSignal(series.Market(), kind, bar.Close, bar.Date)
	}

	return signals, nil
}
