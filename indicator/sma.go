package indicator

import (
	"fmt"
	"time"

	"github.com/quantcli/quant/shared"
	"go.uber.org/atomic"
)

// SMAGenerator represents a streaming simple moving average over bar closes.
// The trailing window is kept in a ring buffer with a running sum so each
// update costs constant time.
type SMAGenerator struct {
	Market         string
	Period         int
	Current        atomic.Float64
	LastUpdateTime atomic.Pointer[time.Time]

	window []float64
	start  int
	count  int
	sum    float64
}

// NewSMAGenerator initializes an SMA indicator for the provided market and period.
func NewSMAGenerator(market string, period int) (*SMAGenerator, error) {
	if period <= 0 {
		return nil, fmt.Errorf("sma period must be positive, got %d: %w",
			period, shared.ErrInvalidParameter)
	}

	return &SMAGenerator{
		Market: market,
		Period: period,
		window: make([]float64, period),
	}, nil
}

// Update advances the SMA with the provided bar. The returned point is only
// defined once a full trailing window of closes is available.
func (g *SMAGenerator) Update(bar *shared.Bar) Point {
	if g.count == g.Period {
		// Drop the oldest close when the window is at capacity.
		g.sum -= g.window[g.start]
		g.window[g.start] = bar.Close
		g.start = (g.start + 1) % g.Period
	} else {
		g.window[(g.start+g.count)%g.Period] = bar.Close
		g.count++
	}
	g.sum += bar.Close

	point := Point{Date: bar.Date}
	if g.count < g.Period {
		return point
	}

	point.Value = g.sum / float64(g.Period)
	point.Defined = true
	g.Current.Store(point.Value)
	g.LastUpdateTime.Store(&bar.Date)

	return point
}

// Ready reports whether the generator has a full trailing window.
func (g *SMAGenerator) Ready() bool {
	return g.count == g.Period
}

// Reset clears the SMA window state.
func (g *SMAGenerator) Reset() {
	clear(g.window)
	g.start = 0
	g.count = 0
	g.sum = 0
	g.Current.Store(0)
}

// SMA computes the simple moving average of the provided price series closes
// over the provided period. A period exceeding the available history yields a
// series with no defined points rather than a partially filled one.
func SMA(series *shared.PriceSeries, period int) (*Series, error) {
	gen, err := NewSMAGenerator(series.Market(), period)
	if err != nil {
		return nil, err
	}

	out := newSeries("sma", series)
	if period > series.Len() {
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
