package indicator

import (
	"fmt"
	"time"

	"github.com/quantcli/quant/shared"
	"go.uber.org/atomic"
)

// EMAGenerator represents a streaming exponential moving average over bar
// closes. The first value is seeded with the simple moving average of the
// first full window, subsequent values fold in each close with multiplier
// k = 2/(period+1). Each value depends on the prior one, so updates must be
// applied in strict date order.
type EMAGenerator struct {
	Market         string
	Period         int
	Current        atomic.Float64
	LastUpdateTime atomic.Pointer[time.Time]

	multiplier float64
	count      int
	sum        float64
	prev       float64
}

// NewEMAGenerator initializes an EMA indicator for the provided market and period.
func NewEMAGenerator(market string, period int) (*EMAGenerator, error) {
	if period <= 0 {
		return nil, fmt.Errorf("ema period must be positive, got %d: %w",
			period, shared.ErrInvalidParameter)
	}

	return &EMAGenerator{
		Market:     market,
		Period:     period,
		multiplier: 2 / float64(period+1),
	}, nil
}

// Update advances the EMA with the provided bar.
func (g *EMAGenerator) Update(bar *shared.Bar) Point {
	point := Point{Date: bar.Date}
	value, defined := g.next(bar.Close)
	if !defined {
		return point
	}

	point.Value = value
	point.Defined = true
	g.Current.Store(value)
	g.LastUpdateTime.Store(&bar.Date)

	return point
}

// next folds the provided close into the average.
func (g *EMAGenerator) next(close float64) (float64, bool) {
	g.count++
	if g.count <= g.Period {
		// Accumulate closes for the simple moving average seed.
		g.sum += close
		if g.count < g.Period {
			return 0, false
		}

		g.prev = g.sum / float64(g.Period)
		return g.prev, true
	}

	g.prev = g.multiplier*close + (1-g.multiplier)*g.prev
	return g.prev, true
}

// Ready reports whether the generator has seeded its average.
func (g *EMAGenerator) Ready() bool {
	return g.count >= g.Period
}

// Reset clears the EMA state.
func (g *EMAGenerator) Reset() {
	g.count = 0
	g.sum = 0
	g.prev = 0
	g.Current.Store(0)
}

// EMA computes the exponential moving average of the provided price series
// closes over the provided period. A period exceeding the available history
// yields a series with no defined points.
func EMA(series *shared.PriceSeries, period int) (*Series, error) {
	gen, err := NewEMAGenerator(series.Market(), period)
	if err != nil {
		return nil, err
	}

	out := newSeries("ema", series)
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
