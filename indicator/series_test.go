package indicator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/quantcli/quant/shared"
)

// testSeries creates a daily price series from the provided closes.
func testSeries(t *testing.T, closes []float64) *shared.PriceSeries {
	t.Helper()

	market := "AAPL"
	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	bars := make([]shared.Bar, len(closes))
	for idx := range closes {
		bars[idx] = shared.Bar{
			Open:   closes[idx],
			High:   closes[idx] + 1,
			Low:    closes[idx] - 1,
			Close:  closes[idx],
			Volume: 1000,
			Date:   start.AddDate(0, 0, idx),
			Market: market,
		}
	}

	series, err := shared.NewPriceSeries(market, bars)
	assert.NoError(t, err)

	return series
}

// closeEnough asserts two floats agree within floating tolerance.
func closeEnough(t *testing.T, name string, got float64, want float64) {
	t.Helper()

	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: expected %v, got %v", name, want, got)
	}
}

func TestSeriesAccessors(t *testing.T) {
	series := testSeries(t, []float64{10, 11, 12, 11, 13})

	sma, err := SMA(series, 3)
	assert.NoError(t, err)

	// Ensure the series reports its identity and alignment.
	assert.Equal(t, sma.Name(), "sma")
	assert.Equal(t, sma.Market(), "AAPL")
	assert.Equal(t, sma.Len(), series.Len())

	// Ensure undefined leading points are reported as absent, not zero.
	point, err := sma.At(0)
	assert.NoError(t, err)
	assert.False(t, point.Defined)

	_, defined := sma.Value(0)
	assert.False(t, defined)

	// Ensure out of range access errors.
	_, err = sma.At(series.Len())
	assert.True(t, errors.Is(err, shared.ErrInvalidParameter))

	_, defined = sma.Value(-1)
	assert.False(t, defined)
}
