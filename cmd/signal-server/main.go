package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ducminhle1904/crypto-signal-scanner/cmd/common"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/api"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/monitoring"
)

const appName = "signal-server"

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
	addr := fs.String("addr", "", "Listen address (overrides config)")

	usage := common.NewUsageFormatter(appName, "Serve indicator signals, screener scans, metrics and health over HTTP").
		AddExample(appName+" -addr :9090", "Serve on port 9090").
		AddExample(appName+" -config scanner.yaml -log-level debug", "Serve with a config file and verbose logs")
	fs.Usage = func() { usage.PrintUsage(fs) }

	if err := fs.Parse(args); err != nil {
		return err
	}
	if common.CheckHelpAndVersion(fs, appName, commonFlags, usage) {
		return nil
	}

	rt, err := common.Bootstrap(commonFlags)
	if err != nil {
		return err
	}
	defer rt.Log.Close()
	cfg := rt.Config

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	server := api.NewServer(api.Options{
		Provider:        rt.Provider,
		Params:          cfg.Params(),
		Scan:            cfg.ScanConfig(),
		Health:          rt.Health,
		Observer:        monitoring.NewPipelineObserver(),
		Log:             rt.Log,
		MetricsPath:     cfg.Server.MetricsPath,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	rt.Log.Info("🚀 Starting %s v%s", appName, common.ProjectVersion)
	if err := server.Start(ctx, cfg.Server.Addr); err != nil {
		return err
	}
	rt.Log.Info("✅ Server stopped")
	return nil
}
