package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/cmd/common"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/screener"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/reporting"
)

const appName = "screener"

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
		symbols  = fs.String("symbols", "", "Comma-separated symbols to scan instead of the top-volume universe")
		universe = fs.Int("top", 0, "Number of top-volume symbols to scan (overrides config)")
		interval = fs.String("interval", "", "Bar interval (overrides config)")
		filter   = fs.String("filter", "", "Row filter: all, buy, sell, strong_buy, strong_sell, neutral (overrides config)")
		sortBy   = fs.String("sort", "", "Row order: volume_desc, volume_asc, change_desc, change_asc (overrides config)")
		output   = fs.String("output", "", "Export rows to a .csv or .xlsx file")
		export   = fs.Bool("export", false, "Export rows to a timestamped CSV under results/")
	)

	usage := common.NewUsageFormatter(appName, "Scan the most liquid symbols and rank them by signal").
		AddExample(appName+" -top 20 -filter buy", "Buy candidates among the 20 most traded USDT pairs").
		AddExample(appName+" -symbols BTCUSDT,ETHUSDT -output scan.xlsx", "Scan a fixed list and export to Excel")
	fs.Usage = func() { usage.PrintUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.CheckHelpAndVersion(fs, appName, commonFlags, usage) {
		return nil
	}

	symList := common.SplitList(strings.ToUpper(*symbols))
	validator := common.NewFlagValidator().
		ValidateSymbols("symbols", symList, false).
		ValidateIntervals("interval", *interval).
		ValidateInt("top", *universe, 0, 500).
		ValidateChoice("filter", *filter, []string{"all", "buy", "sell", "strong_buy", "strong_sell", "neutral"}, true).
		ValidateChoice("sort", *sortBy, []string{"volume_desc", "volume_asc", "change_desc", "change_asc"}, true).
		ValidateExtension("output", *output, ".csv", ".xlsx")
	if validator.HasErrors() {
		return validator.GetError()
	}

	rt, err := common.Bootstrap(commonFlags)
	if err != nil {
		return err
	}
	defer rt.Log.Close()
	cfg := rt.Config

	if len(symList) > 0 {
		cfg.Screener.Symbols = symList
	}
	if *universe > 0 {
		cfg.Screener.Universe = *universe
	}
	if *interval != "" {
		cfg.Screener.Interval = *interval
	}
	if *filter != "" {
		cfg.Screener.Filter = *filter
	}
	if *sortBy != "" {
		cfg.Screener.Sort = *sortBy
	}

	rowFilter, err := screener.ParseFilter(cfg.Screener.Filter)
	if err != nil {
		return err
	}
	order, err := screener.ParseSortOrder(cfg.Screener.Sort)
	if err != nil {
		return err
	}
	analyzer, err := common.NewAnalyzer(cfg, rt.Log)
	if err != nil {
		return err
	}

	rt.Log.Info("Scanning %s %s (universe %d, min volume %.0f)", cfg.Screener.QuoteAsset, cfg.Screener.Interval, cfg.Screener.Universe, cfg.Screener.MinQuoteVolume)
	s := screener.New(rt.Provider, analyzer, rt.Health, rt.Log)
	report, err := s.Scan(ctx, cfg.ScanConfig())
	if err != nil {
		return err
	}
	report.Rows = screener.SortRows(screener.FilterRows(report.Rows, rowFilter), order)
	rt.Log.Info("Scanned %d symbols (%d skipped) in %s", report.Scanned, report.Skipped, common.Elapsed(report.Elapsed))

	reporting.NewDefaultConsoleReporter().PrintScreener(stdout, report)

	path := *output
	if path == "" && *export {
		path = filepath.Join("results", reporting.ScreenerFileName(time.Now(), "csv"))
	}
	if path != "" {
		if err := reporting.WriteScreenerCSV(report.Rows, path); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(stdout, "📊 %d rows written to %s\n", len(report.Rows), path)
	}
	return nil
}
