package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/quantcli/quant/backtest"
	"github.com/quantcli/quant/database"
	"github.com/quantcli/quant/fetch"
	"github.com/quantcli/quant/shared"
	"github.com/quantcli/quant/strategy"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

const (
	// maxWorkers is the maximum number of concurrent market backtests.
	maxWorkers = 8
)

// dataExtensions are the supported historic data file extensions, in lookup order.
var dataExtensions = []string{".csv", ".json"}

// BacktestConfig represents the configuration struct for the backtest service.
type BacktestConfig struct {
	// Markets represents the backtested markets.
	Markets []string
	// DataDir is the directory holding per-market historic data files.
	DataDir string
	// Strategy is the name of the trading strategy to run.
	Strategy string
	// StrategyParams are the tunable parameters of the strategy.
	StrategyParams strategy.Params
	// InitialCapital is the starting capital for each market backtest.
	InitialCapital float64
	// CloseOnFinish closes any open position at the final bar of a backtest.
	CloseOnFinish bool
	// Start optionally restricts the backtest to bars on or after it.
	Start time.Time
	// End optionally restricts the backtest to bars on or before it.
	End time.Time
	// ResultsDir is the directory backtest result summaries are written to.
	ResultsDir string
	// Storer optionally persists backtest results to the database.
	Storer database.ResultStorer
	// Cancel is the context cancellation function.
	Cancel context.CancelFunc
}

// Validate asserts the config sane inputs.
func (cfg *BacktestConfig) Validate() error {
	var errs error

	if len(cfg.Markets) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no markets provided for backtest service"))
	}
	if cfg.DataDir == "" {
		errs = errors.Join(errs, fmt.Errorf("data directory cannot be an empty string"))
	}
	if cfg.Strategy == "" {
		errs = errors.Join(errs, fmt.Errorf("strategy cannot be an empty string"))
	}
	if cfg.InitialCapital <= 0 {
		errs = errors.Join(errs, fmt.Errorf("initial capital must be positive: %f", cfg.InitialCapital))
	}
	if !cfg.Start.IsZero() && !cfg.End.IsZero() && cfg.End.Before(cfg.Start) {
		errs = errors.Join(errs, fmt.Errorf("backtest end cannot precede start"))
	}
	if cfg.Cancel == nil {
		errs = errors.Join(errs, fmt.Errorf("context cancellation function cannot be nil"))
	}

	return errs
}

// MarketResult is the outcome of a single market backtest.
type MarketResult struct {
	Market string
	Result *backtest.Result
	Report *backtest.PerformanceReport
}

// Backtest represents a multi-market backtesting service.
type Backtest struct {
	cfg      *BacktestConfig
	strategy strategy.Strategy
	workers  chan struct{}
	logger   *zerolog.Logger

	resultsMtx sync.Mutex
	results    []*MarketResult

	wg sync.WaitGroup
}

// NewBacktest initializes a new backtest service.
func NewBacktest(cfg *BacktestConfig) (*Backtest, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating backtest config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := log.With().Str("service", "backtest").Logger()

	strat, err := strategy.New(cfg.Strategy, cfg.StrategyParams)
	if err != nil {
		return nil, fmt.Errorf("creating strategy: %w", err)
	}

	service := &Backtest{
		cfg:      cfg,
		strategy: strat,
		workers:  make(chan struct{}, maxWorkers),
		logger:   &logger,
		results:  make([]*MarketResult, 0, len(cfg.Markets)),
	}

	return service, nil
}

// findDataFile locates the historic data file for the provided market.
func (b *Backtest) findDataFile(market string) (string, error) {
	for _, ext := range dataExtensions {
		path := filepath.Join(b.cfg.DataDir, market+ext)
		_, err := os.Stat(path)
		if err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no historic data file for %s in %s: %w",
		market, b.cfg.DataDir, shared.ErrInvalidParameter)
}

// runMarket executes a full backtest for the provided market.
func (b *Backtest) runMarket(ctx context.Context, market string) (*MarketResult, error) {
	path, err := b.findDataFile(market)
	if err != nil {
		return nil, err
	}

	historicDataLogger := b.logger.With().Str("component", "historicdata").Logger()
	historicData, err := fetch.NewHistoricData(&fetch.HistoricDataConfig{
		Market:   market,
		FilePath: path,
		Logger:   &historicDataLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating historic data: %w", err)
	}

	series := historicData.Series()
	if !b.cfg.Start.IsZero() || !b.cfg.End.IsZero() {
		series, err = series.Slice(b.cfg.Start, b.cfg.End)
		if err != nil {
			return nil, fmt.Errorf("restricting series to backtest range: %w", err)
		}
	}

	signals, err := b.strategy.Signals(series)
	if err != nil {
		return nil, fmt.Errorf("generating %s signals: %w", b.strategy.Name(), err)
	}

	simulatorLogger := b.logger.With().Str("component", "simulator").Str("market", market).Logger()
	simulator, err := backtest.NewSimulator(&backtest.SimulatorConfig{
		InitialCapital: b.cfg.InitialCapital,
		CloseOnFinish:  b.cfg.CloseOnFinish,
		Logger:         &simulatorLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating simulator: %w", err)
	}

	result, err := simulator.Run(series, signals)
	if err != nil {
		return nil, fmt.Errorf("simulating %s trades: %w", market, err)
	}

	report, err := backtest.Analyze(result.EquityCurve, result.Trades, result.InitialCapital)
	if err != nil {
		return nil, fmt.Errorf("analyzing %s performance: %w", market, err)
	}

	marketResult := &MarketResult{
		Market: market,
		Result: result,
		Report: report,
	}

	if b.cfg.ResultsDir != "" {
		err = b.exportResult(marketResult)
		if err != nil {
			return nil, fmt.Errorf("exporting %s results: %w", market, err)
		}
	}

	if b.cfg.Storer != nil {
		err = b.cfg.Storer.PersistReport(ctx, b.strategy.Name(), result, report)
		if err != nil {
			return nil, fmt.Errorf("persisting %s results: %w", market, err)
		}
	}

	return marketResult, nil
}

// handleMarket runs a market backtest and records its outcome.
func (b *Backtest) handleMarket(ctx context.Context, market string) {
	marketResult, err := b.runMarket(ctx, market)
	if err != nil {
		b.logger.Error().Err(err).Msgf("backtesting %s", market)
		return
	}

	b.resultsMtx.Lock()
	b.results = append(b.results, marketResult)
	b.resultsMtx.Unlock()

	b.logger.Info().Msgf("backtest for %s done: %d trades, total return %.2f%%, sharpe %.2f, "+
		"max drawdown %.2f%%, win rate %.2f%%", market, marketResult.Report.TradeCount,
		marketResult.Report.TotalReturn*100, marketResult.Report.SharpeRatio,
		marketResult.Report.MaxDrawdown*100, marketResult.Report.WinRate*100)
}

// Results returns the completed market results.
func (b *Backtest) Results() []*MarketResult {
	b.resultsMtx.Lock()
	defer b.resultsMtx.Unlock()

	results := make([]*MarketResult, len(b.results))
	copy(results, b.results)

	return results
}

// Run executes backtests for all configured markets.
func (b *Backtest) Run(ctx context.Context) {
	for idx := range b.cfg.Markets {
		select {
		case <-ctx.Done():
			return
		case b.workers <- struct{}{}:
			b.wg.Add(1)
			go func(market string) {
				b.handleMarket(ctx, market)
				<-b.workers
				b.wg.Done()
			}(b.cfg.Markets[idx])
		}
	}

	b.wg.Wait()
	b.cfg.Cancel()
}
