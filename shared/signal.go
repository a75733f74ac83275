package shared

import "time"

// SignalKind represents the discrete action a strategy emits for a bar.
type SignalKind int

const (
	Hold SignalKind = iota
	Buy
	Sell
)

// String stringifies the provided signal kind.
func (k SignalKind) String() string {
	switch k {
	case Hold:
		return "hold"
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Signal represents a strategy decision attached to a bar.
type Signal struct {
	Market string
	Kind   SignalKind
	Price  float64
	Date   time.Time
}

// NewSignal initializes a new signal.
func NewSignal(market string, kind SignalKind, price float64, date time.Time) Signal {
	return Signal{
		Market: market,
		Kind:   kind,
		Price:  price,
		Date:   date,
	}
}
