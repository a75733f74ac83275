package indicator

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/quantcli/quant/shared"
)

func TestMACD(t *testing.T) {
	closes := []float64{10, 11, 12, 11, 13, 14, 13, 15, 16, 15}
	series := testSeries(t, closes)
	fast, slow, signal := 3, 5, 3

	macd, err := MACD(series, fast, slow, signal)
	assert.NoError(t, err)
	assert.Equal(t, macd.Len(), series.Len())
	assert.Equal(t, macd.Market(), "AAPL")

	// The macd line needs the slow window, the signal line a further full
	// window of macd values.
	assert.Equal(t, macd.FirstDefined(), slow+signal-2)

	// Ensure defined points agree with independently composed EMAs.
	fastEMA, err := EMA(series, fast)
	assert.NoError(t, err)

	slowEMA, err := EMA(series, slow)
	assert.NoError(t, err)

	signalGen, err := NewEMAGenerator(series.Market(), signal)
	assert.NoError(t, err)

	for idx := range series.Len() {
		fastValue, fastDefined := fastEMA.Value(idx)
		slowValue, slowDefined := slowEMA.Value(idx)
		if !fastDefined || !slowDefined {
			point, err := macd.At(idx)
			assert.NoError(t, err)
			assert.False(t, point.Defined)
			continue
		}

		line := fastValue - slowValue
		signalValue, signalDefined := signalGen.next(line)

		point, err := macd.At(idx)
		assert.NoError(t, err)
		assert.Equal(t, point.Defined, signalDefined)
		if !point.Defined {
			continue
		}

		closeEnough(t, "macd line", point.MACD, line)
		closeEnough(t, "signal line", point.Signal, signalValue)
		closeEnough(t, "histogram", point.Histogram, line-signalValue)
	}
}

func TestMACDInsufficientHistory(t *testing.T) {
	series := testSeries(t, []float64{10, 11, 12, 11, 13})

	// Ensure a history too short for the slow and signal windows yields an
	// entirely empty series.
	macd, err := MACD(series, 3, 5, 3)
	assert.NoError(t, err)
	assert.True(t, macd.Empty())
	assert.Equal(t, macd.Len(), series.Len())

	// Ensure out of range access errors.
	_, err = macd.At(series.Len())
	assert.True(t, errors.Is(err, shared.ErrInvalidParameter))
}

func TestMACDInvalidPeriods(t *testing.T) {
	series := testSeries(t, []float64{10, 11, 12, 11, 13, 14, 13, 15})

	tests := []struct {
		name   string
		fast   int
		slow   int
		signal int
	}{
		{
			"fast not shorter than slow",
			5,
			5,
			3,
		},
		{
			"zero fast period",
			0,
			5,
			3,
		},
		{
			"negative slow period",
			3,
			-5,
			3,
		},
		{
			"zero signal period",
			3,
			5,
			0,
		},
	}

	for _, test := range tests {
		_, err := MACD(series, test.fast, test.slow, test.signal)
		if !errors.Is(err, shared.ErrInvalidParameter) {
			t.Errorf("%s: expected an invalid parameter error, got %v", test.name, err)
		}
	}
}
