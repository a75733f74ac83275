package indicator

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/quantcli/quant/shared"
)

func TestRSIAllGains(t *testing.T) {
	series := testSeries(t, []float64{10, 11, 12, 13, 14, 15})

	rsi, err := RSI(series, 3)
	assert.NoError(t, err)

	// Ensure the first defined value needs period+1 bars.
	assert.Equal(t, rsi.FirstDefined(), 3)

	// Ensure an all gain window reads as maximum strength.
	for idx := 3; idx < rsi.Len(); idx++ {
		value, defined := rsi.Value(idx)
		assert.True(t, defined)
		closeEnough(t, "all gain rsi", value, 100)
	}
}

func TestRSIAllFlat(t *testing.T) {
	series := testSeries(t, []float64{10, 10, 10, 10, 10})

	rsi, err := RSI(series, 3)
	assert.NoError(t, err)

	// Ensure a window with no movement reads as neutral, not a division error.
	for idx := 3; idx < rsi.Len(); idx++ {
		value, defined := rsi.Value(idx)
		assert.True(t, defined)
		closeEnough(t, "flat rsi", value, 50)
	}
}

func TestRSIBounds(t *testing.T) {
	series := testSeries(t, []float64{10, 12, 9, 14, 8, 16, 7, 18, 6, 20})

	rsi, err := RSI(series, 3)
	assert.NoError(t, err)

	// Ensure the index stays within [0, 100] over a volatile series.
	for idx := range rsi.Len() {
		value, defined := rsi.Value(idx)
		if !defined {
			continue
		}
		if value < 0 || value > 100 {
			t.Errorf("rsi value %v at index %d outside [0, 100]", value, idx)
		}
	}
}

func TestRSIWilderSmoothing(t *testing.T) {
	closes := []float64{10, 11, 10.5, 11.5, 12}
	series := testSeries(t, closes)
	period := 3

	rsi, err := RSI(series, period)
	assert.NoError(t, err)

	// First averages over the initial window of changes: gains (1, 1),
	// losses (0.5).
	avgGain := (1.0 + 0 + 1.0) / 3
	avgLoss := (0 + 0.5 + 0) / 3
	want := 100 - 100/(1+avgGain/avgLoss)

	value, defined := rsi.Value(period)
	assert.True(t, defined)
	closeEnough(t, "seed rsi", value, want)

	// Next value folds the newest gain in with Wilder's smoothing.
	avgGain = (avgGain*2 + 0.5) / 3
	avgLoss = (avgLoss * 2) / 3
	want = 100 - 100/(1+avgGain/avgLoss)

	value, defined = rsi.Value(period + 1)
	assert.True(t, defined)
	closeEnough(t, "smoothed rsi", value, want)
}

func TestRSIInsufficientHistory(t *testing.T) {
	series := testSeries(t, []float64{10, 11, 12})

	// Ensure a window needing more changes than available yields an empty series.
	rsi, err := RSI(series, 3)
	assert.NoError(t, err)
	assert.True(t, rsi.Empty())
}

func TestRSIInvalidPeriod(t *testing.T) {
	series := testSeries(t, []float64{10, 11, 12})

	_, err := RSI(series, -1)
	assert.True(t, errors.Is(err, shared.ErrInvalidParameter))
}
