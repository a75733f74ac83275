package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/quantcli/quant/database"
	"github.com/quantcli/quant/service"
	"github.com/quantcli/quant/strategy"
	zlog "github.com/rs/zerolog/log"
)

// handleTermination processes context cancellation signals or interrupt signals from the OS.
func handleTermination(ctx context.Context, cancel context.CancelFunc) {
	// Listen for interrupt signals.
	signals := []os.Signal{os.Interrupt}
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, signals...)

	// Wait for the context to be cancelled or an interrupt signal.
	for {
		select {
		case <-ctx.Done():
			return

		case <-interrupt:
			cancel()
		}
	}
}

func main() {
	var cfg Config
	err := loadConfig(&cfg, "")
	if err != nil {
		log.Printf("loading config: %v", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	movingAverage, err := strategy.ParseMAKind(cfg.MovingAverage)
	if err != nil {
		log.Printf("parsing moving average kind: %v", err)
		return
	}

	start, err := parseDate(cfg.Start)
	if err != nil {
		log.Printf("parsing backtest start: %v", err)
		return
	}

	end, err := parseDate(cfg.End)
	if err != nil {
		log.Printf("parsing backtest end: %v", err)
		return
	}

	var storer database.ResultStorer
	if cfg.DBEndpoint != "" {
		dbLogger := zlog.With().Str("component", "database").Logger()
		db, err := database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DBEndpoint,
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Logger:   &dbLogger,
		})
		if err != nil {
			log.Printf("creating database: %v", err)
			return
		}

		storer = db
	}

	backtestCfg := service.BacktestConfig{
		Markets:  cfg.Markets,
		DataDir:  cfg.DataDir,
		Strategy: cfg.Strategy,
		StrategyParams: strategy.Params{
			FastPeriod:    cfg.FastPeriod,
			SlowPeriod:    cfg.SlowPeriod,
			MovingAverage: movingAverage,
		},
		InitialCapital: cfg.InitialCapital,
		CloseOnFinish:  cfg.CloseOnFinish,
		Start:          start,
		End:            end,
		ResultsDir:     cfg.ResultsDir,
		Storer:         storer,
		Cancel:         cancel,
	}
	backtest, err := service.NewBacktest(&backtestCfg)
	if err != nil {
		log.Printf("creating backtest service: %v", err)
		return
	}

	go handleTermination(ctx, cancel)
	backtest.Run(ctx)
}
