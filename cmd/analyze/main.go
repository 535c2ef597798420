package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/cmd/common"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/api"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/reporting"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

const appName = "analyze"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(stdout)
	commonFlags := common.RegisterCommonFlags(fs)

	var (
		symbol     = fs.String("symbol", "BTCUSDT", "Trading symbol")
		interval   = fs.String("interval", "", "Bar interval, e.g. 15m, 1h, 1d (overrides config)")
		limit      = fs.Int("limit", 0, "Number of bars to analyze (overrides config)")
		since      = fs.String("since", "", "Drop bars before this date (YYYY-MM-DD)")
		selection  = fs.String("indicators", "", "Comma-separated indicators to compute, e.g. rsi,macd,fvg (default: all)")
		events     = fs.Bool("events", false, "Print every fair value gap and break of structure")
		xlsxOutput = fs.String("xlsx", "", "Write the annotated series to this .xlsx file")
		jsonOutput = fs.String("json", "", "Write the snapshot to this .json file")
	)

	usage := common.NewUsageFormatter(appName, "Compute indicator signals for one symbol").
		AddExample(appName+" -symbol BTCUSDT -interval 1h", "Latest signals from Bybit").
		AddExample(appName+" -source csv -data-root data -symbol ETHUSDT -interval 15m -xlsx eth.xlsx", "Analyze local candles and export the series")
	fs.Usage = func() { usage.PrintUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.CheckHelpAndVersion(fs, appName, commonFlags, usage) {
		return nil
	}

	sym := strings.ToUpper(strings.TrimSpace(*symbol))
	validator := common.NewFlagValidator().
		ValidateSymbols("symbol", []string{sym}, true).
		ValidateIntervals("interval", *interval).
		ValidateInt("limit", *limit, 0, 1000).
		ValidateExtension("xlsx", *xlsxOutput, ".xlsx").
		ValidateExtension("json", *jsonOutput, ".json")
	sinceTime := validator.ParseDate("since", *since, time.Time{})
	if validator.HasErrors() {
		return validator.GetError()
	}

	rt, err := common.Bootstrap(commonFlags)
	if err != nil {
		return err
	}
	defer rt.Log.Close()
	cfg := rt.Config

	iv := cfg.Screener.Interval
	if *interval != "" {
		iv = *interval
	}
	n := cfg.Screener.KlineLimit
	if *limit > 0 {
		n = *limit
	}
	if *selection != "" {
		cfg.Indicators.Enabled = common.SplitList(*selection)
	}

	analyzer, err := common.NewAnalyzer(cfg, rt.Log)
	if err != nil {
		return err
	}

	start := time.Now()
	bars, err := rt.Provider.Klines(ctx, sym, iv, n)
	if err != nil {
		return fmt.Errorf("fetch %s %s: %w", sym, iv, err)
	}
	if !sinceTime.IsZero() {
		bars = types.FilterSince(bars, sinceTime)
		if len(bars) == 0 {
			return fmt.Errorf("no %s bars of %s since %s", iv, sym, *since)
		}
	}
	result := analyzer.Run(bars)
	rt.Log.Info("Analyzed %d %s bars of %s in %s", len(bars), iv, sym, common.Elapsed(time.Since(start)))

	threshold := cfg.Indicators.StrongThreshold
	console := reporting.NewDefaultConsoleReporter()
	console.PrintSnapshot(stdout, sym, iv, result, threshold)
	if *events {
		console.PrintEvents(stdout, result)
	}

	if *xlsxOutput != "" {
		if err := reporting.WriteSeriesXLSX(sym, result.Frame, *xlsxOutput); err != nil {
			return fmt.Errorf("write %s: %w", *xlsxOutput, err)
		}
		fmt.Fprintf(stdout, "📊 Series written to %s\n", *xlsxOutput)
	}
	if *jsonOutput != "" {
		resp := api.NewSignalsResponse(sym, iv, bars, result, threshold, true)
		if err := reporting.WriteJSON(resp, *jsonOutput); err != nil {
			return fmt.Errorf("write %s: %w", *jsonOutput, err)
		}
		fmt.Fprintf(stdout, "📄 Snapshot written to %s\n", *jsonOutput)
	}
	return nil
}
