package fetch

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/quantcli/quant/shared"
)

// csvColumns is the expected header of a historic data csv file.
var csvColumns = []string{"date", "open", "high", "low", "close", "volume"}

// parseCSVHeader maps the header row of a historic data csv file to column indices.
func parseCSVHeader(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for idx := range header {
		columns[strings.ToLower(strings.TrimSpace(header[idx]))] = idx
	}

	for _, name := range csvColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing '%s' column in csv header: %w", name, shared.ErrInvalidData)
		}
	}

	return columns, nil
}

// parseCSVField parses a numeric csv field.
func parseCSVField(record []string, columns map[string]int, name string) (float64, error) {
	raw := strings.TrimSpace(record[columns[name]])
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing '%s' field from '%s': %w", name, raw, shared.ErrInvalidData)
	}

	return value, nil
}

// loadCSVBars loads price bars from the provided csv file path.
func loadCSVBars(filepath string, market string) ([]shared.Bar, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("opening historic data file with path '%s': %v", filepath, err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading historic data csv: %v", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("no bar records in csv file '%s': %w", filepath, shared.ErrInsufficientData)
	}

	columns, err := parseCSVHeader(records[0])
	if err != nil {
		return nil, err
	}

	bars := make([]shared.Bar, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < len(csvColumns) {
			return nil, fmt.Errorf("short csv record with %d fields: %w", len(record), shared.ErrInvalidData)
		}

		var bar shared.Bar
		bar.Market = market

		bar.Date, err = parseBarDate(strings.TrimSpace(record[columns["date"]]))
		if err != nil {
			return nil, err
		}

		bar.Open, err = parseCSVField(record, columns, "open")
		if err != nil {
			return nil, err
		}

		bar.High, err = parseCSVField(record, columns, "high")
		if err != nil {
			return nil, err
		}

		bar.Low, err = parseCSVField(record, columns, "low")
		if err != nil {
			return nil, err
		}

		bar.Close, err = parseCSVField(record, columns, "close")
		if err != nil {
			return nil, err
		}

		bar.Volume, err = parseCSVField(record, columns, "volume")
		if err != nil {
			return nil, err
		}

		bars = append(bars, bar)
	}

	return bars, nil
}
