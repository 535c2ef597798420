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
	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/marketdata"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

const appName = "download-klines"

// historySource is the part of marketdata.BybitProvider the downloader needs
type historySource interface {
	History(ctx context.Context, symbol, interval string, start, end time.Time, progress marketdata.ProgressFunc) ([]types.OHLCV, error)
}

// newSource is replaced in tests
var newSource = func(cfg bybit.Config, category string) historySource {
	return marketdata.NewBybitProvider(bybit.NewClient(cfg), category)
}

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
		symbols   = fs.String("symbols", "BTCUSDT", "Comma-separated list of symbols")
		intervals = fs.String("intervals", "1h", "Comma-separated list of intervals, e.g. 15m,1h,1d")
		category  = fs.String("category", "", "Market category: spot, linear, inverse (overrides config)")
		startDate = fs.String("start", "", "Start date (YYYY-MM-DD, default: one year ago)")
		endDate   = fs.String("end", "", "End date (YYYY-MM-DD, default: now)")
	)

	usage := common.NewUsageFormatter(appName, "Download Bybit klines into the CSV data layout read by -source csv").
		AddExample(appName+" -symbols BTCUSDT,ETHUSDT -intervals 15m,1h -start 2024-01-01", "Two symbols, two intervals").
		AddExample(appName+" -category linear -data-root data -intervals 4h", "Perpetuals into ./data")
	fs.Usage = func() { usage.PrintUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.CheckHelpAndVersion(fs, appName, commonFlags, usage) {
		return nil
	}

	symList := common.SplitList(strings.ToUpper(*symbols))
	intList := common.SplitList(*intervals)

	validator := common.NewFlagValidator().
		ValidateSymbols("symbols", symList, true).
		ValidateIntervals("intervals", intList...).
		ValidateChoice("category", *category, []string{bybit.CategorySpot, bybit.CategoryLinear, bybit.CategoryInverse}, true)
	if len(intList) == 0 {
		validator.AddError("intervals: at least one interval is required")
	}
	end := validator.ParseDate("end", *endDate, time.Now().UTC())
	start := validator.ParseDate("start", *startDate, end.AddDate(-1, 0, 0))
	if !validator.HasErrors() {
		validator.ValidateDateRange(start, end)
	}
	if validator.HasErrors() {
		return validator.GetError()
	}

	rt, err := common.Bootstrap(commonFlags)
	if err != nil {
		return err
	}
	defer rt.Log.Close()
	cfg := rt.Config
	if *category != "" {
		cfg.Exchange.Category = *category
	}

	source := newSource(cfg.BybitConfig(), cfg.Exchange.Category)
	locator := marketdata.NewFileLocator()

	fmt.Fprintf(stdout, "🚀 Bybit Historical Data Downloader\n")
	fmt.Fprintf(stdout, "📊 Category: %s\n", cfg.Exchange.Category)
	fmt.Fprintf(stdout, "🎯 Symbols: %s\n", strings.Join(symList, ", "))
	fmt.Fprintf(stdout, "⏱️  Intervals: %s\n", strings.Join(intList, ", "))
	fmt.Fprintf(stdout, "📅 Date Range: %s to %s\n\n", start.Format("2006-01-02"), end.Format("2006-01-02"))

	failed := 0
	for _, sym := range symList {
		for _, iv := range intList {
			path := locator.DataFilePath(cfg.Screener.DataRoot, "bybit", cfg.Exchange.Category, sym, iv)
			bars, err := source.History(ctx, sym, iv, start, end, func(n int) {
				rt.Log.Debug("%s %s: %d klines downloaded", sym, iv, n)
			})
			if err == nil {
				err = marketdata.SaveCSV(path, bars)
			}
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				rt.Log.Warning("%s %s failed: %v", sym, iv, err)
				failed++
				continue
			}
			printSummary(stdout, sym, iv, path, bars)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d downloads failed", failed)
	}
	fmt.Fprintln(stdout, "🎉 All downloads completed!")
	return nil
}

func printSummary(w io.Writer, symbol, interval, path string, bars []types.OHLCV) {
	fmt.Fprintf(w, "💾 %s %s: %d candles saved to %s\n", symbol, interval, len(bars), path)
	if len(bars) == 0 {
		return
	}

	high, low, volume := bars[0].High, bars[0].Low, 0.0
	for _, b := range bars {
		if b.High > high {
			high = b.High
		}
		if b.Low < low {
			low = b.Low
		}
		volume += b.Volume
	}
	fmt.Fprintf(w, "   First: %s  Last: %s\n", bars[0].Timestamp.Format("2006-01-02 15:04"), bars[len(bars)-1].Timestamp.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "   High: %.2f  Low: %.2f  Avg Volume: %.2f\n", high, low, volume/float64(len(bars)))
}
