package indicator

import (
	"fmt"
	"time"

	"github.com/quantcli/quant/shared"
)

// MACDPoint represents a unit MACD entry for a bar: the macd line, the signal
// line and the histogram between them. A point is only defined once all
// constituent averages are.
type MACDPoint struct {
	MACD      float64
	Signal    float64
	Histogram float64
	Date      time.Time
	Defined   bool
}

// MACDSeries represents MACD output aligned one to one by position with the
// price series it was derived from.
type MACDSeries struct {
	market string
	points []MACDPoint
}

// Market returns the market the series tracks.
func (s *MACDSeries) Market() string {
	return s.market
}

// Len returns the number of points in the series.
func (s *MACDSeries) Len() int {
	return len(s.points)
}

// At returns the point at the provided position.
func (s *MACDSeries) At(idx int) (MACDPoint, error) {
	if idx < 0 || idx >= len(s.points) {
		return MACDPoint{}, fmt.Errorf("macd point index %d out of range [0, %d): %w",
			idx, len(s.points), shared.ErrInvalidParameter)
	}

	return s.points[idx], nil
}

// FirstDefined returns the position of the first defined point, or -1 when
// the series has no defined points.
func (s *MACDSeries) FirstDefined() int {
	for idx := range s.points {
		if s.points[idx].Defined {
			return idx
		}
	}

	return -1
}

// Empty reports whether the series has no defined points.
func (s *MACDSeries) Empty() bool {
	return s.FirstDefined() == -1
}

// MACD computes the moving average convergence divergence of the provided
// price series: the macd line is the fast EMA minus the slow EMA of the
// closes, the signal line is an EMA of the macd line itself and the histogram
// is the difference between the two. Insufficient history for the slow and
// signal windows yields a series with no defined points.
func MACD(series *shared.PriceSeries, fastPeriod int, slowPeriod int, signalPeriod int) (*MACDSeries, error) {
	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("macd fast period %d must be shorter than slow period %d: %w",
			fastPeriod, slowPeriod, shared.ErrInvalidParameter)
	}

	fast, err := NewEMAGenerator(series.Market(), fastPeriod)
	if err != nil {
		return nil, err
	}

	slow, err := NewEMAGenerator(series.Market(), slowPeriod)
	if err != nil {
		return nil, err
	}

	signal, err := NewEMAGenerator(series.Market(), signalPeriod)
	if err != nil {
		return nil, err
	}

	out := &MACDSeries{
		market: series.Market(),
		points: make([]MACDPoint, series.Len()),
	}

	// The signal line needs a full window of macd values, which in turn need
	// the slow average to be seeded.
	if slowPeriod+signalPeriod-1 > series.Len() {
		for idx, bar := range series.Bars() {
			out.points[idx] = MACDPoint{Date: bar.Date}
		}
		return out, nil
	}

	for idx, bar := range series.Bars() {
		out.points[idx] = MACDPoint{Date: bar.Date}

		fastPoint := fast.Update(bar)
		slowPoint := slow.Update(bar)
		if !fastPoint.Defined || !slowPoint.Defined {
			continue
		}

		macd := fastPoint.Value - slowPoint.Value
		signalValue, defined := signal.next(macd)
		if !defined {
			continue
		}

		out.points[idx] = MACDPoint{
			MACD:      macd,
			Signal:    signalValue,
			Histogram: macd - signalValue,
			Date:      bar.Date,
			Defined:   true,
		}
	}

	return out, nil
}
