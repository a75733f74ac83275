package shared

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/peterldowns/testy/assert"
)

// generateBars creates sequential daily bars from the provided closes.
func generateBars(t *testing.T, market string, closes []float64) []Bar {
	t.Helper()

	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	bars := make([]Bar, len(closes))
	for idx := range closes {
		bars[idx] = Bar{
			Open:   closes[idx],
			High:   closes[idx] + 1,
			Low:    closes[idx] - 1,
			Close:  closes[idx],
			Volume: 1000,
			Date:   start.AddDate(0, 0, idx),
			Market: market,
		}
	}

	return bars
}

func TestNewPriceSeries(t *testing.T) {
	market := "AAPL"
	date := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		bars    []Bar
		wantErr error
	}{
		{
			"valid series",
			generateBars(t, market, []float64{10, 11, 12}),
			nil,
		},
		{
			"no bars",
			[]Bar{},
			ErrInvalidData,
		},
		{
			"duplicate dates",
			[]Bar{
				{Open: 10, High: 12, Low: 9, Close: 11, Volume: 1, Date: date},
				{Open: 11, High: 13, Low: 10, Close: 12, Volume: 1, Date: date},
			},
			ErrInvalidData,
		},
		{
			"invalid bar",
			[]Bar{
				{Open: 10, High: 9, Low: 12, Close: 11, Volume: 1, Date: date},
			},
			ErrInvalidData,
		},
	}

	for _, test := range tests {
		series, err := NewPriceSeries(market, test.bars)
		if test.wantErr != nil {
			if !errors.Is(err, test.wantErr) {
				t.Errorf("%s: expected error %v, got %v", test.name, test.wantErr, err)
			}
			continue
		}

		if err != nil {
			t.Errorf("%s: unexpected error %v", test.name, err)
			continue
		}

		if series.Len() != len(test.bars) {
			t.Errorf("%s: expected %d bars, got %d", test.name, len(test.bars), series.Len())
		}
	}
}

func TestPriceSeriesSortsBars(t *testing.T) {
	market := "AAPL"
	bars := generateBars(t, market, []float64{10, 11, 12})

	// Supply the bars out of order and ensure the series sorts them.
	shuffled := []Bar{bars[2], bars[0], bars[1]}
	series, err := NewPriceSeries(market, shuffled)
	assert.NoError(t, err)

	first, err := series.At(0)
	assert.NoError(t, err)
	assert.Equal(t, first.Close, float64(10))

	last, err := series.At(series.Len() - 1)
	assert.NoError(t, err)
	assert.Equal(t, last.Close, float64(12))

	// Ensure out of range access errors.
	_, err = series.At(series.Len())
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestPriceSeriesSlice(t *testing.T) {
	market := "AAPL"
	bars := generateBars(t, market, []float64{10, 11, 12, 13, 14})
	series, err := NewPriceSeries(market, bars)
	assert.NoError(t, err)

	// Ensure a bounded slice returns only bars in range.
	sliced, err := series.Slice(bars[1].Date, bars[3].Date)
	assert.NoError(t, err)
	assert.Equal(t, sliced.Len(), 3)
	assert.Equal(t, sliced.StartTime(), bars[1].Date)
	assert.Equal(t, sliced.EndTime(), bars[3].Date)

	// Ensure a zero end time leaves the slice unbounded on the right.
	sliced, err = series.Slice(bars[2].Date, time.Time{})
	assert.NoError(t, err)
	assert.Equal(t, sliced.Len(), 3)

	// Ensure an inverted range errors.
	_, err = series.Slice(bars[3].Date, bars[1].Date)
	assert.True(t, errors.Is(err, ErrInvalidParameter))

	// Ensure an empty range errors.
	_, err = series.Slice(bars[4].Date.AddDate(0, 0, 1), time.Time{})
	assert.True(t, errors.Is(err, ErrInsufficientData))
}

func TestPriceSeriesBarsIterator(t *testing.T) {
	market := "AAPL"
	closes := []float64{10, 11, 12, 11, 13}
	series, err := NewPriceSeries(market, generateBars(t, market, closes))
	assert.NoError(t, err)

	// Ensure a full pass visits every bar in order.
	got := make([]float64, 0, series.Len())
	for _, bar := range series.Bars() {
		got = append(got, bar.Close)
	}
	if diff := cmp.Diff(got, closes); diff != "" {
		t.Errorf("mismatching iterated closes, got %v", diff)
	}

	// Ensure the iterator can be stopped early and restarted.
	var count int
	for idx := range series.Bars() {
		if idx == 2 {
			break
		}
		count++
	}
	assert.Equal(t, count, 2)

	count = 0
	for range series.Bars() {
		count++
	}
	assert.Equal(t, count, series.Len())
}
