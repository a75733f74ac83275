package fetch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quantcli/quant/shared"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// HistoricDataConfig represents the historic data source configuration.
type HistoricDataConfig struct {
	// Market represents the historic data market.
	Market string
	// FilePath is the filepath to the historic market data.
	FilePath string
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// HistoricData represents historic market data.
type HistoricData struct {
	cfg    *HistoricDataConfig
	series *shared.PriceSeries
}

// loadHistoricData loads the historic data bytes from the provided file path.
func loadHistoricData(filepath string) ([]gjson.Result, error) {
	readb, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading historic data from file with path '%s': %v", filepath, err)
	}

	b := gjson.ParseBytes(readb).Array()

	return b, nil
}

// parseBarDate parses a bar date, with or without a time component.
func parseBarDate(raw string) (time.Time, error) {
	dt, err := time.Parse(shared.DateLayout, raw)
	if err == nil {
		return dt, nil
	}

	dt, err = time.Parse(shared.DayLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing bar date '%s': %w", raw, shared.ErrInvalidData)
	}

	return dt, nil
}

// ParseBars parses price bars from the provided json data.
func ParseBars(data []gjson.Result, market string) ([]shared.Bar, error) {
	bars := make([]shared.Bar, len(data))

	for idx := range data {
		var bar shared.Bar

		bar.Open = data[idx].Get("open").Float()
		bar.Low = data[idx].Get("low").Float()
		bar.High = data[idx].Get("high").Float()
		bar.Close = data[idx].Get("close").Float()
		bar.Volume = data[idx].Get("volume").Float()

		bar.Market = market

		dt, err := parseBarDate(data[idx].Get("date").String())
		if err != nil {
			return nil, fmt.Errorf("parsing bar date: %w", err)
		}

		bar.Date = dt
		bars[idx] = bar
	}

	return bars, nil
}

// NewHistoricData initializes a new historic data source.
func NewHistoricData(cfg *HistoricDataConfig) (*HistoricData, error) {
	var bars []shared.Bar

	switch strings.ToLower(filepath.Ext(cfg.FilePath)) {
	case ".csv":
		csvBars, err := loadCSVBars(cfg.FilePath, cfg.Market)
		if err != nil {
			return nil, fmt.Errorf("loading csv historic data: %v", err)
		}

		bars = csvBars
	default:
		b, err := loadHistoricData(cfg.FilePath)
		if err != nil {
			return nil, fmt.Errorf("loading historic data: %v", err)
		}

		jsonBars, err := ParseBars(b, cfg.Market)
		if err != nil {
			return nil, fmt.Errorf("parsing bars: %v", err)
		}

		bars = jsonBars
	}

	series, err := shared.NewPriceSeries(cfg.Market, bars)
	if err != nil {
		return nil, fmt.Errorf("creating price series: %w", err)
	}

	historicData := HistoricData{
		cfg:    cfg,
		series: series,
	}

	first := series.StartTime()
	last := series.EndTime()
	cfg.Logger.Info().Msgf("loaded %d bars for %s, from %s, to %s",
		series.Len(), cfg.Market, first.Format(time.RFC1123), last.Format(time.RFC1123))

	return &historicData, nil
}

// Series returns the loaded price series.
func (h *HistoricData) Series() *shared.PriceSeries {
	return h.series
}
