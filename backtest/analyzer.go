package backtest

import (
	"fmt"
	"math"

	"github.com/quantcli/quant/position"
	"github.com/quantcli/quant/shared"
)

const (
	// TradingPeriodsPerYear is the annualization factor for daily bars.
	TradingPeriodsPerYear = 252
)

// PerformanceReport summarizes a backtest run. All fields are derived
// together in a single pass over the equity curve and trade log.
type PerformanceReport struct {
	TotalReturn float64
	SharpeRatio float64
	MaxDrawdown float64
	WinRate     float64
	TradeCount  int
}

// Analyze derives a performance report from the provided equity curve, trade
// log and initial capital.
func Analyze(equity []EquityPoint, trades []*position.Trade, initialCapital float64) (*PerformanceReport, error) {
	if initialCapital <= 0 {
		return nil, fmt.Errorf("initial capital must be positive, got %f: %w",
			initialCapital, shared.ErrInvalidParameter)
	}

	if len(equity) == 0 {
		return nil, fmt.Errorf("equity curve cannot be empty: %w", shared.ErrInsufficientData)
	}

	report := &PerformanceReport{
		TotalReturn: (equity[len(equity)-1].Value - initialCapital) / initialCapital,
		SharpeRatio: sharpeRatio(equity),
		MaxDrawdown: maxDrawdown(equity),
		TradeCount:  len(trades),
	}

	var wins int
	for idx := range trades {
		if trades[idx].Win() {
			wins++
		}
	}
	if len(trades) > 0 {
		report.WinRate = float64(wins) / float64(len(trades))
	}

	return report, nil
}

// sharpeRatio derives the annualized ratio of mean per bar return to its
// standard deviation. A curve with zero variance reads as zero rather than
// dividing by it.
func sharpeRatio(equity []EquityPoint) float64 {
	if len(equity) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(equity)-1)
	for idx := 1; idx < len(equity); idx++ {
		if equity[idx-1].Value == 0 {
			continue
		}
		returns = append(returns, equity[idx].Value/equity[idx-1].Value-1)
	}

	if len(returns) == 0 {
		return 0
	}

	var sum float64
	for idx := range returns {
		sum += returns[idx]
	}
	mean := sum / float64(len(returns))

	var variance float64
	for idx := range returns {
		diff := returns[idx] - mean
		variance += diff * diff
	}
	variance /= float64(len(returns))

	stddev := math.Sqrt(variance)
	if stddev == 0 {
		return 0
	}

	return mean / stddev * math.Sqrt(TradingPeriodsPerYear)
}

// maxDrawdown derives the maximum peak to trough decline of the equity curve
// as a non positive fraction, tracking the running peak in one linear pass.
func maxDrawdown(equity []EquityPoint) float64 {
	var drawdown float64
	peak := equity[0].Value

	for idx := range equity {
		if equity[idx].Value > peak {
			peak = equity[idx].Value
		}

		if peak == 0 {
			continue
		}

		dd := (equity[idx].Value - peak) / peak
		if dd < drawdown {
			drawdown = dd
		}
	}

	return drawdown
}
