package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/screener"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/signals"
)

// signalKeys are the per-indicator snapshot keys exported as columns
func signalKeys() []string {
	keys := make([]string, 0, len(signals.SnapshotKeys)-1)
	for _, k := range signals.SnapshotKeys {
		if k != signals.KeyOverall {
			keys = append(keys, k)
		}
	}
	return keys
}

// ScreenerHeaders returns the column names of a screener export
func ScreenerHeaders() []string {
	headers := []string{"Symbol", "Price", "Change_24h_%", "Volume_24h", "RSI", "MACD", "Bollinger"}
	for _, k := range signalKeys() {
		headers = append(headers, k+"_signal")
	}
	return append(headers, "Overall", "Category")
}

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteScreenerCSV writes screener rows to path. A .xlsx path is delegated to the Excel writer.
func (r *DefaultCSVReporter) WriteScreenerCSV(rows []screener.Row, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteScreenerXLSX(rows, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(ScreenerHeaders()); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.Symbol,
			strconv.FormatFloat(row.Price, 'f', -1, 64),
			fmt.Sprintf("%.2f", row.Change),
			fmt.Sprintf("%.2f", row.Volume),
			optionalCSV(row.RSI),
			optionalCSV(row.MACD),
			row.Bollinger,
		}
		for _, k := range signalKeys() {
			record = append(record, strconv.Itoa(row.Signals[k]))
		}
		record = append(record, strconv.Itoa(row.Overall), string(row.Category))
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func optionalCSV(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.4f", *v)
}

// Package-level convenience function
func WriteScreenerCSV(rows []screener.Row, path string) error {
	return NewDefaultCSVReporter().WriteScreenerCSV(rows, path)
}
