// Package backtest simulates a rule based trading strategy bar by bar over a
// price series and derives performance metrics from the outcome.
package backtest

import (
	"errors"
	"fmt"
	"time"

	"github.com/quantcli/quant/position"
	"github.com/quantcli/quant/shared"
	"github.com/rs/zerolog"
)

// State represents the simulator position state.
type State int

const (
	Flat State = iota
	Long
)

// String stringifies the provided state.
func (s State) String() string {
	switch s {
	case Flat:
		return "flat"
	case Long:
		return "long"
	default:
		return "unknown"
	}
}

// EquityPoint represents the portfolio value at a bar.
type EquityPoint struct {
	Date  time.Time
	Value float64
}

// Result represents the outcome of a backtest run: the ordered trade log, the
// equity curve covering every bar, and any position still open at the final
// bar.
type Result struct {
	Market         string
	InitialCapital float64
	FinalEquity    float64
	Trades         []*position.Trade
	EquityCurve    []EquityPoint
	OpenPosition   *position.Position
}

// SimulatorConfig represents the backtest simulator configuration.
type SimulatorConfig struct {
	// InitialCapital is the starting cash for the run.
	InitialCapital float64
	// CloseOnFinish closes a position still open at the final bar and records
	// it as a trade. When unset the open position is excluded from the trade
	// log but still reflected in the final equity value.
	CloseOnFinish bool
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config has sane inputs.
func (cfg *SimulatorConfig) Validate() error {
	var errs error

	if cfg.InitialCapital <= 0 {
		errs = errors.Join(errs, fmt.Errorf("initial capital must be positive, got %f: %w",
			cfg.InitialCapital, shared.ErrInvalidParameter))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil: %w", shared.ErrInvalidParameter))
	}

	return errs
}

// Simulator walks a price series and its signals bar by bar, managing a
// single position at a time. One instance serves one run.
type Simulator struct {
	cfg   *SimulatorConfig
	state State
	cash  float64
	pos   *position.Position
}

// NewSimulator initializes a new backtest simulator.
func NewSimulator(cfg *SimulatorConfig) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating simulator config: %w", err)
	}

	return &Simulator{
		cfg:   cfg,
		state: Flat,
		cash:  cfg.InitialCapital,
	}, nil
}

// checkAlignment asserts the signals line up one to one by date with the
// price series.
func checkAlignment(series *shared.PriceSeries, signals []shared.Signal) error {
	if len(signals) != series.Len() {
		return fmt.Errorf("signal count %d does not match series length %d: %w",
			len(signals), series.Len(), shared.ErrInsufficientData)
	}

	for idx, bar := range series.Bars() {
		if !signals[idx].Date.Equal(bar.Date) {
			return fmt.Errorf("signal date %s misaligned with bar date %s at index %d: %w",
				signals[idx].Date.Format(shared.DateLayout),
				bar.Date.Format(shared.DateLayout), idx, shared.ErrInsufficientData)
		}
	}

	return nil
}

// handleBuy opens a position at the provided bar close, investing all
// available cash. A buy while already long is ignored.
func (s *Simulator) handleBuy(signal *shared.Signal, bar *shared.Bar) error {
	if s.state == Long {
		return nil
	}

	if bar.Close <= 0 {
		return fmt.Errorf("cannot size a position at close %f: %w", bar.Close, shared.ErrInvalidData)
	}

	quantity := s.cash / bar.Close
	pos, err := position.NewPosition(signal, quantity)
	if err != nil {
		return fmt.Errorf("opening position: %w", err)
	}

	s.pos = pos
	s.cash = 0
	s.state = Long

	s.cfg.Logger.Debug().Msgf("opened position (%s) for %s: %f @ %f",
		pos.ID, pos.Market, pos.Quantity, pos.EntryPrice)

	return nil
}

// handleSell closes the open position at the provided bar close and realizes
// the return into cash. A sell while flat is ignored.
func (s *Simulator) handleSell(signal *shared.Signal) (*position.Trade, error) {
	if s.state == Flat {
		return nil, nil
	}

	trade, err := s.pos.Close(signal)
	if err != nil {
		return nil, fmt.Errorf("closing position: %w", err)
	}

	s.cash = trade.Quantity * trade.ExitPrice
	s.pos = nil
	s.state = Flat

	s.cfg.Logger.Debug().Msgf("closed position (%s) for %s: %f @ %f (%.2f%%)",
		trade.ID, trade.Market, trade.Quantity, trade.ExitPrice, trade.ReturnPercent)

	return trade, nil
}

// Run walks the provided series and signals and returns the run result. The
// equity curve always has exactly one point per input bar.
func (s *Simulator) Run(series *shared.PriceSeries, signals []shared.Signal) (*Result, error) {
	if err := checkAlignment(series, signals); err != nil {
		return nil, err
	}

	result := &Result{
		Market:         series.Market(),
		InitialCapital: s.cfg.InitialCapital,
		Trades:         []*position.Trade{},
		EquityCurve:    make([]EquityPoint, 0, series.Len()),
	}

	for idx, bar := range series.Bars() {
		signal := signals[idx]

		switch signal.Kind {
		case shared.Buy:
			if err := s.handleBuy(&signal, bar); err != nil {
				return nil, err
			}
		case shared.Sell:
			trade, err := s.handleSell(&signal)
			if err != nil {
				return nil, err
			}
			if trade != nil {
				result.Trades = append(result.Trades, trade)
			}
		}

		value := s.cash
		if s.state == Long {
			value += s.pos.MarkValue(bar.Close)
		}

		result.EquityCurve = append(result.EquityCurve, EquityPoint{
			Date:  bar.Date,
			Value: value,
		})
	}

	if s.state == Long {
		lastBar, err := series.At(series.Len() - 1)
		if err != nil {
			return nil, err
		}

		switch {
		case s.cfg.CloseOnFinish:
			// Close the terminal position at the final mark price so it is
			// reflected in the trade statistics.
			sell := shared.NewSignal(series.Market(), shared.Sell, lastBar.Close, lastBar.Date)
			trade, err := s.handleSell(&sell)
			if err != nil {
				return nil, err
			}

			result.Trades = append(result.Trades, trade)
		default:
			// The open position stays out of the trade log but its marked
			// value is part of the final equity.
			s.pos.UpdatePNLPercent(lastBar.Close)
			result.OpenPosition = s.pos
			s.cfg.Logger.Debug().Msgf("position (%s) for %s still open at final bar (%.2f%%)",
				s.pos.ID, s.pos.Market, s.pos.PNLPercent)
		}
	}

	result.FinalEquity = result.EquityCurve[len(result.EquityCurve)-1].Value

	return result, nil
}
