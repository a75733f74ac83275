package shared

import (
	"fmt"
	"iter"
	"slices"
	"time"
)

// PriceSeries is an immutable, time ordered collection of bars for a single
// market. It is constructed once from validated input and never mutated,
// derived series reference it by position.
type PriceSeries struct {
	market string
	bars   []Bar
}

// NewPriceSeries validates the provided bars and initializes a price series
// from them. The bars are sorted ascending by date before validation.
func NewPriceSeries(market string, bars []Bar) (*PriceSeries, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars provided for %s price series: %w", market, ErrInvalidData)
	}

	set := make([]Bar, len(bars))
	copy(set, bars)

	slices.SortFunc(set, func(a, b Bar) int {
		return a.Date.Compare(b.Date)
	})

	for idx := range set {
		if err := set[idx].Validate(); err != nil {
			return nil, fmt.Errorf("validating bar at index %d: %w", idx, err)
		}

		if idx > 0 && !set[idx].Date.After(set[idx-1].Date) {
			return nil, fmt.Errorf("duplicate bar date %s at index %d: %w",
				set[idx].Date.Format(DateLayout), idx, ErrInvalidData)
		}
	}

	return &PriceSeries{
		market: market,
		bars:   set,
	}, nil
}

// Market returns the market the price series tracks.
func (s *PriceSeries) Market() string {
	return s.market
}

// Len returns the number of bars in the price series.
func (s *PriceSeries) Len() int {
	return len(s.bars)
}

// At returns the bar at the provided position.
func (s *PriceSeries) At(idx int) (*Bar, error) {
	if idx < 0 || idx >= len(s.bars) {
		return nil, fmt.Errorf("bar index %d out of range [0, %d): %w",
			idx, len(s.bars), ErrInvalidParameter)
	}

	bar := s.bars[idx]
	return &bar, nil
}

// Slice returns a new price series bounded by the provided date range,
// inclusive on both ends.
func (s *PriceSeries) Slice(start time.Time, end time.Time) (*PriceSeries, error) {
	if !end.IsZero() && end.Before(start) {
		return nil, fmt.Errorf("slice end %s precedes start %s: %w",
			end.Format(DateLayout), start.Format(DateLayout), ErrInvalidParameter)
	}

	set := make([]Bar, 0, len(s.bars))
	for idx := range s.bars {
		date := s.bars[idx].Date
		if date.Before(start) {
			continue
		}
		if !end.IsZero() && date.After(end) {
			break
		}

		set = append(set, s.bars[idx])
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("no bars for %s in range [%s, %s]: %w", s.market,
			start.Format(DateLayout), end.Format(DateLayout), ErrInsufficientData)
	}

	return &PriceSeries{
		market: s.market,
		bars:   set,
	}, nil
}

// Bars returns a single pass forward iterator over the bars of the series.
// Re-iterating restarts the pass since the series is immutable.
func (s *PriceSeries) Bars() iter.Seq2[int, *Bar] {
	return func(yield func(int, *Bar) bool) {
		for idx := range s.bars {
			bar := s.bars[idx]
			if !yield(idx, &bar) {
				return
			}
		}
	}
}

// StartTime returns the date of the first bar in the series.
func (s *PriceSeries) StartTime() time.Time {
	return s.bars[0].Date
}

// EndTime returns the date of the last bar in the series.
func (s *PriceSeries) EndTime() time.Time {
	return s.bars[len(s.bars)-1].Date
}
