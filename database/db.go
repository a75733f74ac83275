package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/quantcli/quant/backtest"
	"github.com/quantcli/quant/position"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createTradeTableSQL  = "CREATE TABLE IF NOT EXISTS trade (id TEXT PRIMARY KEY, market TEXT, entryprice REAL, exitprice REAL, quantity REAL, returnpercent REAL, entrydate INTEGER, exitdate INTEGER)"
	createReportTableSQL = "CREATE TABLE IF NOT EXISTS report (id TEXT PRIMARY KEY, market TEXT, strategy TEXT, initialcapital REAL, finalequity REAL, totalreturn REAL, sharperatio REAL, maxdrawdown REAL, winrate REAL, tradecount INTEGER, createdon INTEGER)"
	persistTradeSQL      = "INSERT INTO trade(id, market, entryprice, exitprice, quantity, returnpercent, entrydate, exitdate) VALUES(?,?,?,?,?,?,?,?)"
	persistReportSQL     = "INSERT INTO report(id, market, strategy, initialcapital, finalequity, totalreturn, sharperatio, maxdrawdown, winrate, tradecount, createdon) VALUES(?,?,?,?,?,?,?,?,?,?,?)"
)

// ResultStorer defines the requirements for storing backtest results.
type ResultStorer interface {
	// PersistTrade stores the provided closed trade to the database.
	PersistTrade(ctx context.Context, trade *position.Trade) error
	// PersistReport stores the provided backtest run and its performance report to the database.
	PersistReport(ctx context.Context, strategy string, result *backtest.Result, report *backtest.PerformanceReport) error
}

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the ResultStorer interface.
var _ ResultStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	httpc := &http.Client{Timeout: time.Second * 5}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	client.SetBasicAuth(cfg.User, cfg.Pass)

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	_, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{SQL: createTradeTableSQL},
		{SQL: createReportTableSQL},
	}, &rqlitehttp.ExecuteOptions{
		Transaction: true,
		Timings:     true,
	})
	if err != nil {
		return err
	}

	return nil
}

// generateReportID generates deterministic ids for reports using the run time,
// market and strategy.
func generateReportID(currentTime time.Time, market string, strategy string) string {
	id := fmt.Sprintf("%s-%s-%s", currentTime.Format("2006-01-02-150405"), market, strategy)
	return id
}

// PersistTrade stores the provided closed trade to the database.
func (db *Database) PersistTrade(ctx context.Context, trade *position.Trade) error {
	if trade.ExitDate.IsZero() {
		db.cfg.Logger.Error().Msgf("unexpected open trade for persistence: %s", spew.Sdump(trade))
		return fmt.Errorf("persisting trade %s: trade is not closed", trade.ID)
	}

	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: persistTradeSQL,
			PositionalParams: []any{trade.ID, trade.Market, trade.EntryPrice, trade.ExitPrice,
				trade.Quantity, trade.ReturnPercent, trade.EntryDate.Unix(), trade.ExitDate.Unix()},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("persisting trade %s: %d -> %s", trade.ID, idx, errStr)
	}

	return nil
}

// PersistReport stores the provided backtest run and its performance report to the database.
func (db *Database) PersistReport(ctx context.Context, strategy string, result *backtest.Result, report *backtest.PerformanceReport) error {
	now := time.Now().UTC()
	id := generateReportID(now, result.Market, strategy)

	resp, err := db.client.Execute(ctx, rqlitehttp.SQLStatements{
		{
			SQL: persistReportSQL,
			PositionalParams: []any{id, result.Market, strategy, result.InitialCapital,
				result.FinalEquity, report.TotalReturn, report.SharpeRatio, report.MaxDrawdown,
				report.WinRate, report.TradeCount, now.Unix()},
		},
	}, &rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return err
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("persisting report %s: %d -> %s", id, idx, errStr)
	}

	for idx := range result.Trades {
		err = db.PersistTrade(ctx, result.Trades[idx])
		if err != nil {
			return fmt.Errorf("persisting report trades: %w", err)
		}
	}

	return nil
}
