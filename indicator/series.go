package indicator

import (
	"fmt"
	"time"

	"github.com/quantcli/quant/shared"
)

// Point represents a unit indicator value for a bar. Points with enough
// trailing history are marked defined, leading points without it are not.
// An undefined point is never a valid zero.
type Point struct {
	Value   float64
	Date    time.Time
	Defined bool
}

// Series represents indicator output aligned one to one by position with the
// price series it was derived from.
type Series struct {
	name   string
	market string
	points []Point
}

// newSeries initializes an undefined series aligned to the provided price series.
func newSeries(name string, src *shared.PriceSeries) *Series {
	points := make([]Point, src.Len())
	for idx, bar := range src.Bars() {
		points[idx] = Point{Date: bar.Date}
	}

	return &Series{
		name:   name,
		market: src.Market(),
		points: points,
	}
}

// Name returns the name of the indicator that produced the series.
func (s *Series) Name() string {
	return s.name
}

// Market returns the market the series tracks.
func (s *Series) Market() string {
	return s.market
}

// Len returns the number of points in the series.
func (s *Series) Len() int {
	return len(s.points)
}

// At returns the point at the provided position.
func (s *Series) At(idx int) (Point, error) {
	if idx < 0 || idx >= len(s.points) {
		return Point{}, fmt.Errorf("%s point index %d out of range [0, %d): %w",
			s.name, idx, len(s.points), shared.ErrInvalidParameter)
	}

	return s.points[idx], nil
}

// Value returns the value at the provided position and whether it is defined.
func (s *Series) Value(idx int) (float64, bool) {
	if idx < 0 || idx >= len(s.points) {
		return 0, false
	}

	return s.points[idx].Value, s.points[idx].Defined
}

// FirstDefined returns the position of the first defined point, or -1 when
// the series has no defined points.
func (s *Series) FirstDefined() int {
	for idx := range s.points {
		if s.points[idx].Defined {
			return idx
		}
	}

	return -1
}

// Empty reports whether the series has no defined points.
func (s *Series) Empty() bool {
	return s.FirstDefined() == -1
}

// set marks the point at the provided position defined with the provided value.
func (s *Series) set(idx int, value float64) {
	s.points[idx].Value = value
	s.points[idx].Defined = true
}
