// Package reporting renders pipeline results and screener scans to the
// console, CSV, JSON and Excel.
package reporting

import (
	"io"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/screener"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/signals"
)

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	PrintSnapshot(w io.Writer, symbol, interval string, result *signals.Result, strongThreshold int)
	PrintScreener(w io.Writer, report *screener.Report)
	PrintEvents(w io.Writer, result *signals.Result)
}

// CSVReporter defines interface for CSV output
type CSVReporter interface {
	WriteScreenerCSV(rows []screener.Row, path string) error
}

// ExcelReporter defines interface for Excel output
type ExcelReporter interface {
	WriteScreenerXLSX(rows []screener.Row, path string) error
	WriteSeriesXLSX(symbol string, frame *indicators.Frame, path string) error
}

var (
	_ ConsoleReporter = (*DefaultConsoleReporter)(nil)
	_ CSVReporter     = (*DefaultCSVReporter)(nil)
	_ ExcelReporter   = (*DefaultExcelReporter)(nil)
)

// ExcelStyles holds Excel formatting styles
type ExcelStyles struct {
	HeaderStyle  int
	NumberStyle  int
	PercentStyle int
	BaseStyle    int
	BuyStyle     int
	SellStyle    int
	DateStyle    int
}
