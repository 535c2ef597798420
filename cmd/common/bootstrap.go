package common

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/config"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/logger"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/marketdata"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/monitoring"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/safety"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/signals"
)

// Runtime bundles what every command needs after startup
type Runtime struct {
	Config   *config.Config
	Log      *logger.Logger
	Provider marketdata.Provider
	Health   *monitoring.HealthChecker
}

// Bootstrap loads the environment and configuration, applies the flag
// overrides, and builds the logger and market data provider.
func Bootstrap(flags *CommonFlags) (*Runtime, error) {
	if err := config.LoadDotEnv(*flags.EnvFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	if ApplyOverrides(cfg, flags) {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	provider, err := NewProvider(cfg, log)
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Config:   cfg,
		Log:      log,
		Provider: provider,
		Health:   monitoring.NewHealthChecker(cfg.Server.MaxStale),
	}, nil
}

// ApplyOverrides copies the non-empty flag values into cfg and reports whether anything changed
func ApplyOverrides(cfg *config.Config, flags *CommonFlags) bool {
	changed := false
	if *flags.Source != "" {
		cfg.Screener.Source = *flags.Source
		changed = true
	}
	if *flags.DataRoot != "" {
		cfg.Screener.DataRoot = *flags.DataRoot
		changed = true
	}
	if *flags.LogLevel != "" {
		cfg.Log.Level = *flags.LogLevel
		changed = true
	}
	return changed
}

// NewProvider builds the configured market data source, wrapped in a kline cache when a TTL is set
func NewProvider(cfg *config.Config, log *logger.Logger) (marketdata.Provider, error) {
	var provider marketdata.Provider
	switch cfg.Screener.Source {
	case "bybit":
		bcfg := cfg.BybitConfig()
		bcfg.OnBreakerChange = func(from, to safety.CircuitBreakerState) {
			log.Warning("Bybit circuit breaker %s -> %s", from, to)
			monitoring.RecordBreakerState("bybit", to)
		}
		client := bybit.NewClient(bcfg)
		log.Info("Using Bybit %s market data (%s)", client.Category(), client.GetEnvironment())
		provider = marketdata.NewBybitProvider(client, cfg.Exchange.Category)
	case "csv":
		log.Info("Using CSV market data from %s", cfg.Screener.DataRoot)
		provider = marketdata.NewCSVProvider(cfg.Screener.DataRoot, "bybit", log)
	default:
		return nil, fmt.Errorf("unsupported data source: %s", cfg.Screener.Source)
	}

	if cfg.Screener.CacheTTL > 0 {
		return marketdata.NewCachedProvider(provider, cfg.Screener.CacheTTL), nil
	}
	return provider, nil
}

// NewAnalyzer builds an analyzer from the configured parameters and selection, reporting runs to Prometheus
func NewAnalyzer(cfg *config.Config, log *logger.Logger) (*signals.Analyzer, error) {
	sel, err := cfg.Selection()
	if err != nil {
		return nil, err
	}
	return signals.NewAnalyzer(
		signals.WithParams(cfg.Params()),
		signals.WithSelection(sel),
		signals.WithLogger(log),
		signals.WithObserver(monitoring.NewPipelineObserver()),
	), nil
}

// Elapsed formats a duration in a human-readable way
func Elapsed(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
