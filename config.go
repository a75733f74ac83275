package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/quantcli/quant/shared"
	"github.com/quantcli/quant/strategy"
)

const (
	// defaultStrategy is the strategy used when none is configured.
	defaultStrategy = strategy.CrossoverName
	// defaultFastPeriod is the default fast moving average window.
	defaultFastPeriod = 50
	// defaultSlowPeriod is the default slow moving average window.
	defaultSlowPeriod = 200
	// defaultMovingAverage is the default moving average kind.
	defaultMovingAverage = "sma"
	// defaultInitialCapital is the default starting capital for a backtest.
	defaultInitialCapital = float64(100000)
	// defaultResultsDir is the default directory result summaries are written to.
	defaultResultsDir = "results"
)

// Config is the configuration struct for the service.
type Config struct {
	// Markets represents the backtested markets.
	Markets []string
	// DataDir is the directory holding per-market historic data files.
	DataDir string
	// Strategy is the name of the trading strategy to run.
	Strategy string
	// FastPeriod is the fast moving average window.
	FastPeriod int
	// SlowPeriod is the slow moving average window.
	SlowPeriod int
	// MovingAverage is the moving average kind used by the strategy.
	MovingAverage string
	// InitialCapital is the starting capital for each market backtest.
	InitialCapital float64
	// CloseOnFinish closes any open position at the final bar of a backtest.
	CloseOnFinish bool
	// Start optionally restricts backtests to bars on or after it.
	Start string
	// End optionally restricts backtests to bars on or before it.
	End string
	// ResultsDir is the directory result summaries are written to.
	ResultsDir string
	// DBEndpoint is the optional database connection endpoint.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string

	registeredFlags map[string]bool
}

// parseDate parses an optional date config value.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}

	dt, err := time.Parse(shared.DayLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date '%s': expected %s format", raw, shared.DayLayout)
	}

	return dt, nil
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if len(cfg.Markets) == 0 {
		errs = errors.Join(errs, fmt.Errorf("no markets provided for backtest service"))
	}
	if cfg.DataDir == "" {
		errs = errors.Join(errs, fmt.Errorf("data directory cannot be an empty string"))
	}
	if cfg.FastPeriod <= 0 {
		errs = errors.Join(errs, fmt.Errorf("fast period must be positive: %d", cfg.FastPeriod))
	}
	if cfg.SlowPeriod <= cfg.FastPeriod {
		errs = errors.Join(errs, fmt.Errorf("slow period (%d) must exceed fast period (%d)",
			cfg.SlowPeriod, cfg.FastPeriod))
	}
	if cfg.InitialCapital <= 0 {
		errs = errors.Join(errs, fmt.Errorf("initial capital must be positive: %f", cfg.InitialCapital))
	}

	_, err := strategy.ParseMAKind(cfg.MovingAverage)
	if err != nil {
		errs = errors.Join(errs, err)
	}

	start, err := parseDate(cfg.Start)
	if err != nil {
		errs = errors.Join(errs, err)
	}
	end, err := parseDate(cfg.End)
	if err != nil {
		errs = errors.Join(errs, err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		errs = errors.Join(errs, fmt.Errorf("backtest end (%s) cannot precede start (%s)", cfg.End, cfg.Start))
	}

	return errs
}

// registerFlag registers command line arguments of any type and tracks them to avoid reregistration.
func (cfg *Config) registerFlag(name string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(name)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	case reflect.Bool:
		var def bool
		if defValue != "" {
			def, _ = strconv.ParseBool(defValue)
		}
		flag.BoolVar(value.(*bool), name, def, usage)
	case reflect.Int:
		var def int
		if defValue != "" {
			def, _ = strconv.Atoi(defValue)
		}
		flag.IntVar(value.(*int), name, def, usage)
	case reflect.Float64:
		var def float64
		if defValue != "" {
			def, _ = strconv.ParseFloat(defValue, 64)
		}
		flag.Float64Var(value.(*float64), name, def, usage)
	case reflect.Slice:
		// Only handle []string
		if val.Elem().Type().Elem().Kind() == reflect.String {
			var def []string
			if defValue != "" {
				def = strings.Split(defValue, ",")
			}
			flag.Func(name, usage, func(s string) error {
				*value.(*[]string) = strings.Split(s, ",")
				return nil
			})
			// Set default if not provided via flag
			if len(def) > 0 {
				*value.(*[]string) = def
			}
		} else {
			return fmt.Errorf("%s: unsupported slice type", name)
		}
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// applyDefaults fills unset config fields with their defaults.
func (cfg *Config) applyDefaults() {
	if cfg.Strategy == "" {
		cfg.Strategy = defaultStrategy
	}
	if cfg.FastPeriod == 0 {
		cfg.FastPeriod = defaultFastPeriod
	}
	if cfg.SlowPeriod == 0 {
		cfg.SlowPeriod = defaultSlowPeriod
	}
	if cfg.MovingAverage == "" {
		cfg.MovingAverage = defaultMovingAverage
	}
	if cfg.InitialCapital == 0 {
		cfg.InitialCapital = defaultInitialCapital
	}
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = defaultResultsDir
	}
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	err = cfg.registerFlag("markets", &cfg.Markets, "the backtested markets")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("datadir", &cfg.DataDir, "the historic data directory")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("strategy", &cfg.Strategy, "the trading strategy")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("fastperiod", &cfg.FastPeriod, "the fast moving average window")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("slowperiod", &cfg.SlowPeriod, "the slow moving average window")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("movingaverage", &cfg.MovingAverage, "the moving average kind (sma or ema)")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("initialcapital", &cfg.InitialCapital, "the backtest starting capital")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("closeonfinish", &cfg.CloseOnFinish, "close open positions at the final bar")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("start", &cfg.Start, "the backtest start date")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("end", &cfg.End, "the backtest end date")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("resultsdir", &cfg.ResultsDir, "the results directory")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbendpoint", &cfg.DBEndpoint, "the database endpoint")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbuser", &cfg.DBUser, "the database user")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("dbpass", &cfg.DBPass, "the database user pass")
	if err != nil {
		return err
	}

	// Parse command-line flags.
	flag.Parse()

	cfg.applyDefaults()

	return cfg.Validate()
}
