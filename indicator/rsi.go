package indicator

import (
	"fmt"
	"time"

	"github.com/quantcli/quant/shared"
	"go.uber.org/atomic"
)

// RSIGenerator represents a streaming relative strength index over bar closes
// using Wilder's smoothing. The initial averages accumulate over the first
// full window of close changes, each later average folds the newest gain or
// loss in as (prior*(period-1) + current)/period.
type RSIGenerator struct {
	Market         string
	Period         int
	Current        atomic.Float64
	LastUpdateTime atomic.Pointer[time.Time]

	count     int
	prevClose float64
	avgGain   float64
	avgLoss   float64
}

// NewRSIGenerator initializes an RSI indicator for the provided market and period.
func NewRSIGenerator(market string, period int) (*RSIGenerator, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi period must be positive, got %d: %w",
			period, shared.ErrInvalidParameter)
	}

	return &RSIGenerator{
		Market: market,
		Period: period,
	}, nil
}

// Update advances the RSI with the provided bar. The returned point is only
// defined once a full trailing window of close changes is available.
func (g *RSIGenerator) Update(bar *shared.Bar) Point {
	point := Point{Date: bar.Date}

	g.count++
	if g.count == 1 {
		// The first bar carries no change yet.
		g.prevClose = bar.Close
		return point
	}

	change := bar.Close - g.prevClose
	g.prevClose = bar.Close

	var gain, loss float64
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	period := float64(g.Period)
	switch {
	case g.count <= g.Period:
		// Still accumulating the initial averages.
		g.avgGain += gain
		g.avgLoss += loss
		return point
	case g.count == g.Period+1:
		g.avgGain = (g.avgGain + gain) / period
		g.avgLoss = (g.avgLoss + loss) / period
	default:
		g.avgGain = (g.avgGain*(period-1) + gain) / period
		g.avgLoss = (g.avgLoss*(period-1) + loss) / period
	}

	point.Value = g.value()
	point.Defined = true
	g.Current.Store(point.Value)
	g.LastUpdateTime.Store(&bar.Date)

	return point
}

// value derives the index from the smoothed averages. Both zero cases are
// handled explicitly rather than leaving them to float division.
func (g *RSIGenerator) value() float64 {
	switch {
	case g.avgLoss == 0 && g.avgGain == 0:
		// No movement either way reads as neutral.
		return 50
	case g.avgLoss == 0:
		// All gains, relative strength is unbounded.
		return 100
	default:
		rs := g.avgGain / g.avgLoss
		return 100 - 100/(1+rs)
	}
}

// Ready reports whether the generator has a full trailing window of changes.
func (g *RSIGenerator) Ready() bool {
	return g.count > g.Period
}

// Reset clears the RSI state.
func (g *RSIGenerator) Reset() {
	g.count = 0
	g.prevClose = 0
	g.avgGain = 0
	g.avgLoss = 0
	g.Current.Store(0)
}

// RSI computes the relative strength index of the provided price series
// closes over the provided period. The index needs period+1 bars for its
// first value, shorter histories yield a series with no defined points.
func RSI(series *shared.PriceSeries, period int) (*Series, error) {
	gen, err := NewRSIGenerator(series.Market(), period)
	if err != nil {
		return nil, err
	}

	out := newSeries("rsi", series)
	if period+1 > series.Len() {
		return out, nil
	}

	for idx, bar := range series.Bars() {
		point := gen.Update(bar)
		if point.Defined {
			out.set(idx, point.Value)
		}
	}

	return out, nil
}
