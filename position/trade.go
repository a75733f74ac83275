package position

import (
	"time"
)

// Trade represents a completed round trip produced when a position closes.
// Trades are immutable once created and appended to an ordered log.
type Trade struct {
	ID            string
	Market        string
	EntryDate     time.Time
	EntryPrice    float64
	ExitDate      time.Time
	ExitPrice     float64
	Quantity      float64
	ReturnPercent float64
	HoldingPeriod time.Duration
}

// Win reports whether the trade closed with a positive return.
func (t *Trade) Win() bool {
	return t.ReturnPercent > 0
}
