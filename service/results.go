package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/quantcli/quant/shared"
)

// tradeSummary is the exported form of a closed trade.
type tradeSummary struct {
	ID            string  `json:"id"`
	EntryDate     string  `json:"entry_date"`
	EntryPrice    float64 `json:"entry_price"`
	ExitDate      string  `json:"exit_date"`
	ExitPrice     float64 `json:"exit_price"`
	Quantity      float64 `json:"quantity"`
	ReturnPercent float64 `json:"return_percent"`
}

// resultSummary is the exported form of a market backtest result.
type resultSummary struct {
	Market         string         `json:"market"`
	Strategy       string         `json:"strategy"`
	InitialCapital float64        `json:"initial_capital"`
	FinalEquity    float64        `json:"final_equity"`
	TotalReturn    float64        `json:"total_return"`
	SharpeRatio    float64        `json:"sharpe_ratio"`
	MaxDrawdown    float64        `json:"max_drawdown"`
	WinRate        float64        `json:"win_rate"`
	TradeCount     int            `json:"trade_count"`
	Trades         []tradeSummary `json:"trades"`
}

// exportResult writes a market backtest summary to the results directory.
func (b *Backtest) exportResult(marketResult *MarketResult) error {
	result := marketResult.Result
	report := marketResult.Report

	summary := resultSummary{
		Market:         marketResult.Market,
		Strategy:       b.strategy.Name(),
		InitialCapital: result.InitialCapital,
		FinalEquity:    result.FinalEquity,
		TotalReturn:    report.TotalReturn,
		SharpeRatio:    report.SharpeRatio,
		MaxDrawdown:    report.MaxDrawdown,
		WinRate:        report.WinRate,
		TradeCount:     report.TradeCount,
		Trades:         make([]tradeSummary, 0, len(result.Trades)),
	}

	for _, trade := range result.Trades {
		summary.Trades = append(summary.Trades, tradeSummary{
			ID:            trade.ID,
			EntryDate:     trade.EntryDate.Format(shared.DayLayout),
			EntryPrice:    trade.EntryPrice,
			ExitDate:      trade.ExitDate.Format(shared.DayLayout),
			ExitPrice:     trade.ExitPrice,
			Quantity:      trade.Quantity,
			ReturnPercent: trade.ReturnPercent,
		})
	}

	err := os.MkdirAll(b.cfg.ResultsDir, 0o755)
	if err != nil {
		return fmt.Errorf("creating results directory: %v", err)
	}

	data, err := json.MarshalIndent(&summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling result summary: %v", err)
	}

	path := filepath.Join(b.cfg.ResultsDir, fmt.Sprintf("%s_backtest_results.json", marketResult.Market))
	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("writing result summary to '%s': %v", path, err)
	}

	return nil
}
