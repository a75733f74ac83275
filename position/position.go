// Package position tracks the lifecycle of a single market position and the
// immutable trade records produced when positions close.
package position

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/quantcli/quant/shared"
)

// Position represents a long market position opened by a buy signal. At most
// one position is open at any time in the single asset model.
type Position struct {
	ID         string
	Market     string
	EntryDate  time.Time
	EntryPrice float64
	Quantity   float64
	PNLPercent float64
	Open       bool
}

// NewPosition initializes a new open position from the provided buy signal.
func NewPosition(signal *shared.Signal, quantity float64) (*Position, error) {
	if signal == nil {
		return nil, fmt.Errorf("buy signal cannot be nil: %w", shared.ErrInvalidParameter)
	}

	if signal.Kind != shared.Buy {
		return nil, fmt.Errorf("position requires a buy signal, got %s: %w",
			signal.Kind.String(), shared.ErrInvalidParameter)
	}

	if signal.Price <= 0 {
		return nil, fmt.Errorf("entry price must be positive, got %f: %w",
			signal.Price, shared.ErrInvalidParameter)
	}

	if quantity <= 0 {
		return nil, fmt.Errorf("position quantity must be positive, got %f: %w",
			quantity, shared.ErrInvalidParameter)
	}

	pos := &Position{
		ID:         uuid.New().String(),
		Market:     signal.Market,
		EntryDate:  signal.Date,
		EntryPrice: signal.Price,
		Quantity:   quantity,
		Open:       true,
	}

	return pos, nil
}

// MarkValue returns the value of the position at the provided price.
func (p *Position) MarkValue(currentPrice float64) float64 {
	return p.Quantity * currentPrice
}

// UpdatePNLPercent updates the percentage change of the position given the
// current price.
func (p *Position) UpdatePNLPercent(currentPrice float64) float64 {
	p.PNLPercent = ((currentPrice - p.EntryPrice) / p.EntryPrice) * 100
	return p.PNLPercent
}

// Close closes the position using the provided sell signal and returns the
// completed trade record.
func (p *Position) Close(signal *shared.Signal) (*Trade, error) {
	if signal == nil {
		return nil, fmt.Errorf("sell signal cannot be nil: %w", shared.ErrInvalidParameter)
	}

	if signal.Kind != shared.Sell {
		return nil, fmt.Errorf("closing a position requires a sell signal, got %s: %w",
			signal.Kind.String(), shared.ErrInvalidParameter)
	}

	if !p.Open {
		return nil, fmt.Errorf("position %s is already closed: %w", p.ID, shared.ErrInvalidParameter)
	}

	if signal.Date.Before(p.EntryDate) {
		return nil, fmt.Errorf("exit date %s precedes entry date %s: %w",
			signal.Date.Format(shared.DateLayout), p.EntryDate.Format(shared.DateLayout),
			shared.ErrInvalidData)
	}

	p.Open = false
	p.UpdatePNLPercent(signal.Price)

	trade := &Trade{
		ID:            p.ID,
		Market:        p.Market,
		EntryDate:     p.EntryDate,
		EntryPrice:    p.EntryPrice,
		ExitDate:      signal.Date,
		ExitPrice:     signal.Price,
		Quantity:      p.Quantity,
		ReturnPercent: p.PNLPercent,
		HoldingPeriod: signal.Date.Sub(p.EntryDate),
	}

	return trade, nil
}
