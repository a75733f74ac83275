package shared

import (
	"fmt"
	"math"
	"time"
)

const (
	// DateLayout is the format layout for parsing bar dates.
	DateLayout = "2006-01-02 15:04:05"
	// DayLayout is the format layout for parsing day resolution dates.
	DayLayout = "2006-01-02"
)

// Bar represents a unit OHLCV bar for a market.
type Bar struct {
	Open   float64
	Low    float64
	High   float64
	Close  float64
	Volume float64
	Date   time.Time

	// Metadata fields.
	Market string
}

// Validate asserts the bar has sane fields.
func (b *Bar) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"open", b.Open},
		{"low", b.Low},
		{"high", b.High},
		{"close", b.Close},
		{"volume", b.Volume},
	}

	for idx := range fields {
		if math.IsNaN(fields[idx].value) || math.IsInf(fields[idx].value, 0) {
			return fmt.Errorf("%s is not a finite number: %w", fields[idx].name, ErrInvalidData)
		}
	}

	if b.Date.IsZero() {
		return fmt.Errorf("bar date cannot be zero: %w", ErrInvalidData)
	}

	if b.Volume < 0 {
		return fmt.Errorf("bar volume cannot be negative (%f): %w", b.Volume, ErrInvalidData)
	}

	if b.Low > b.High {
		return fmt.Errorf("bar low (%f) exceeds high (%f): %w", b.Low, b.High, ErrInvalidData)
	}

	if b.Open < b.Low || b.Open > b.High {
		return fmt.Errorf("bar open (%f) outside low/high range [%f, %f]: %w",
			b.Open, b.Low, b.High, ErrInvalidData)
	}

	if b.Close < b.Low || b.Close > b.High {
		return fmt.Errorf("bar close (%f) outside low/high range [%f, %f]: %w",
			b.Close, b.Low, b.High, ErrInvalidData)
	}

	return nil
}

// Sentiment represents the bar sentiment.
type Sentiment int

const (
	Neutral Sentiment = iota
	Bullish
	Bearish
)

// String stringifies the provided sentiment.
func (s Sentiment) String() string {
	switch s {
	case Neutral:
		return "neutral"
	case Bullish:
		return "bullish"
	case Bearish:
		return "bearish"
	default:
		return "unknown"
	}
}

// FetchSentiment returns the provided bar's sentiment.
func (b *Bar) FetchSentiment() Sentiment {
	sentiment := b.Close - b.Open
	switch {
	case sentiment < 0:
		return Bearish
	case sentiment > 0:
		return Bullish
	default:
		return Neutral
	}
}
