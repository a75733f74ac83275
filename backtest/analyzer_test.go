package backtest

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/quantcli/quant/position"
	"github.com/quantcli/quant/shared"
)

// generateEquity creates an equity curve from the provided values.
func generateEquity(t *testing.T, values []float64) []EquityPoint {
	t.Helper()

	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	equity := make([]EquityPoint, len(values))
	for idx := range values {
		equity[idx] = EquityPoint{
			Date:  start.AddDate(0, 0, idx),
			Value: values[idx],
		}
	}

	return equity
}

func TestAnalyzeInvalidInputs(t *testing.T) {
	equity := generateEquity(t, []float64{100, 110})

	// Ensure non positive capital errors.
	_, err := Analyze(equity, nil, 0)
	assert.True(t, errors.Is(err, shared.ErrInvalidParameter))

	// Ensure an empty equity curve errors.
	_, err = Analyze([]EquityPoint{}, nil, 100)
	assert.True(t, errors.Is(err, shared.ErrInsufficientData))
}

func TestAnalyzeMaxDrawdown(t *testing.T) {
	equity := generateEquity(t, []float64{100, 120, 90, 110, 80, 130})

	report, err := Analyze(equity, nil, 100)
	assert.NoError(t, err)

	// Peak 120 to trough 80 is a third lost.
	want := (80.0 - 120.0) / 120.0
	if math.Abs(report.MaxDrawdown-want) > 1e-9 {
		t.Errorf("expected max drawdown %v, got %v", want, report.MaxDrawdown)
	}
}

func TestAnalyzeZeroTrades(t *testing.T) {
	// A run with no trades leaves the curve flat at initial capital.
	equity := generateEquity(t, []float64{1000, 1000, 1000, 1000})

	report, err := Analyze(equity, nil, 1000)
	assert.NoError(t, err)

	assert.Equal(t, report.TradeCount, 0)
	assert.Equal(t, report.WinRate, float64(0))
	assert.Equal(t, report.TotalReturn, float64(0))
	assert.Equal(t, report.MaxDrawdown, float64(0))

	// A perfectly flat curve has zero variance, the ratio must read zero
	// rather than dividing by it.
	assert.Equal(t, report.SharpeRatio, float64(0))
}

func TestAnalyzeWinRate(t *testing.T) {
	equity := generateEquity(t, []float64{1000, 1100, 1050, 1200})
	trades := []*position.Trade{
		{ReturnPercent: 10},
		{ReturnPercent: -5},
		{ReturnPercent: 0},
		{ReturnPercent: 15},
	}

	report, err := Analyze(equity, trades, 1000)
	assert.NoError(t, err)

	// Only strictly positive returns count as wins.
	assert.Equal(t, report.TradeCount, 4)
	assert.Equal(t, report.WinRate, 0.5)
}

func TestAnalyzeTotalReturnRoundTrip(t *testing.T) {
	values := []float64{1000, 1100, 990, 1250, 1200}
	equity := generateEquity(t, values)

	report, err := Analyze(equity, nil, 1000)
	assert.NoError(t, err)

	// Ensure the total return agrees with compounding each per bar return.
	compounded := 1.0
	for idx := 1; idx < len(values); idx++ {
		compounded *= values[idx] / values[idx-1]
	}
	want := compounded - 1

	if math.Abs(report.TotalReturn-want) > 1e-9 {
		t.Errorf("expected total return %v, got %v", want, report.TotalReturn)
	}
}

func TestAnalyzeSharpeRatio(t *testing.T) {
	values := []float64{1000, 1100, 990, 1250}
	equity := generateEquity(t, values)

	report, err := Analyze(equity, nil, 1000)
	assert.NoError(t, err)

	// Recompute the annualized ratio independently.
	returns := make([]float64, 0, len(values)-1)
	for idx := 1; idx < len(values); idx++ {
		returns = append(returns, values[idx]/values[idx-1]-1)
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

	want := mean / math.Sqrt(variance) * math.Sqrt(TradingPeriodsPerYear)
	if math.Abs(report.SharpeRatio-want) > 1e-9 {
		t.Errorf("expected sharpe ratio %v, got %v", want, report.SharpeRatio)
	}
}

func TestSimulatorAnalyzerPipeline(t *testing.T) {
	series := testSeries(t, []float64{10, 11, 12, 11, 13})
	signals := generateSignals(t, series, []shared.SignalKind{
		shared.Hold, shared.Buy, shared.Hold, shared.Sell, shared.Hold,
	})

	sim := setupSimulator(t, 1000, false)
	result, err := sim.Run(series, signals)
	assert.NoError(t, err)

	report, err := Analyze(result.EquityCurve, result.Trades, result.InitialCapital)
	assert.NoError(t, err)

	// Ensure the report reflects the single flat round trip.
	assert.Equal(t, report.TradeCount, 1)
	assert.Equal(t, report.WinRate, float64(0))
	if math.Abs(report.TotalReturn) > 1e-9 {
		t.Errorf("expected flat total return, got %v", report.TotalReturn)
	}
	if report.MaxDrawdown > 0 {
		t.Errorf("expected non positive drawdown, got %v", report.MaxDrawdown)
	}
}
