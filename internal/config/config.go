package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/logger"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/screener"
)

type Config struct {
	Indicators IndicatorConfig `yaml:"indicators"`
	Exchange   ExchangeConfig  `yaml:"exchange"`
	Screener   ScreenerConfig  `yaml:"screener"`
	Log        logger.Config   `yaml:"log"`
	Server     ServerConfig    `yaml:"server"`
}

// IndicatorConfig holds the indicator periods and signal thresholds
type IndicatorConfig struct {
	Enabled []string `yaml:"enabled"` // empty selects the default battery

	RSIPeriod     int     `yaml:"rsi_period" default:"14" validate:"min=2"`
	RSIOversold   float64 `yaml:"rsi_oversold" default:"30" validate:"gte=0,ltfield=RSIOverbought"`
	RSIOverbought float64 `yaml:"rsi_overbought" default:"70" validate:"lte=100"`

	MACDFast   int `yaml:"macd_fast" default:"12" validate:"min=2,ltfield=MACDSlow"`
	MACDSlow   int `yaml:"macd_slow" default:"26" validate:"min=2"`
	MACDSignal int `yaml:"macd_signal" default:"9" validate:"min=1"`

	BollingerWindow int     `yaml:"bollinger_window" default:"20" validate:"min=2"`
	BollingerStdDev float64 `yaml:"bollinger_std_dev" default:"2" validate:"gt=0"`

	EMAShort  int `yaml:"ema_short" default:"9" validate:"min=1,ltfield=EMAMedium"`
	EMAMedium int `yaml:"ema_medium" default:"21" validate:"min=1,ltfield=EMALong"`
	EMALong   int `yaml:"ema_long" default:"50" validate:"min=1"`

	StochWindow     int     `yaml:"stoch_window" default:"14" validate:"min=1"`
	StochSmooth     int     `yaml:"stoch_smooth" default:"3" validate:"min=1"`
	StochOversold   float64 `yaml:"stoch_oversold" default:"20" validate:"gte=0,ltfield=StochOverbought"`
	StochOverbought float64 `yaml:"stoch_overbought" default:"80" validate:"lte=100"`

	VWAPWindow int `yaml:"vwap_window" default:"14" validate:"min=1"`
	VWEMAShort int `yaml:"vwema_short" default:"5" validate:"min=1,ltfield=VWEMALong"`
	VWEMALong  int `yaml:"vwema_long" default:"20" validate:"min=1"`

	FVGLookback     int `yaml:"fvg_lookback" default:"6" validate:"min=1"`
	BOSWindow       int `yaml:"bos_window" default:"10" validate:"min=1"`
	StrongThreshold int `yaml:"strong_threshold" default:"3" validate:"min=1"`
}

// ExchangeConfig holds the Bybit connection settings
type ExchangeConfig struct {
	Category  string `yaml:"category" default:"spot" validate:"oneof=spot linear inverse"`
	Testnet   bool   `yaml:"testnet"`
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`

	RequestsPerSecond float64       `yaml:"requests_per_second" default:"10" validate:"gte=0"`
	BreakerThreshold  int           `yaml:"breaker_threshold" default:"5" validate:"gte=0"`
	BreakerTimeout    time.Duration `yaml:"breaker_timeout" default:"30s"`
}

// ScreenerConfig holds the universe and scan settings
type ScreenerConfig struct {
	Source         string        `yaml:"source" default:"bybit" validate:"oneof=bybit csv"`
	DataRoot       string        `yaml:"data_root" default:"data"`
	QuoteAsset     string        `yaml:"quote_asset" default:"USDT" validate:"required"`
	MinQuoteVolume float64       `yaml:"min_quote_volume" default:"1000000" validate:"gte=0"`
	Universe       int           `yaml:"universe" default:"50" validate:"min=1,max=500"`
	Symbols        []string      `yaml:"symbols"`
	Interval       string        `yaml:"interval" default:"1h" validate:"required"`
	KlineLimit     int           `yaml:"kline_limit" default:"100" validate:"min=1,max=1000"`
	Filter         string        `yaml:"filter" default:"all" validate:"oneof=all buy sell strong_buy strong_sell neutral"`
	Sort           string        `yaml:"sort" default:"volume_desc" validate:"oneof=volume_desc volume_asc change_desc change_asc"`
	CacheTTL       time.Duration `yaml:"cache_ttl" default:"1m"`
}

// ServerConfig holds the HTTP server settings
type ServerConfig struct {
	Addr            string        `yaml:"addr" default:":8080" validate:"required"`
	MetricsPath     string        `yaml:"metrics_path" default:"/metrics" validate:"startswith=/"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	MaxStale        time.Duration `yaml:"max_stale" default:"1h"`
}

var validate = validator.New()

// Default returns a Config with every default applied
func Default() *Config {
	c := &Config{}
	if err := defaults.Set(c); err != nil {
		panic(fmt.Sprintf("config: invalid default tags: %v", err))
	}
	return c
}

// Load builds the configuration: defaults, then the YAML file at path when
// path is not empty, then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadDotEnv loads the given .env files into the environment, skipping the
// ones that do not exist. Variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Exchange.APIKey = getEnv("BYBIT_API_KEY", c.Exchange.APIKey)
	c.Exchange.APISecret = getEnv("BYBIT_API_SECRET", c.Exchange.APISecret)

	testnet, err := getEnvBool("BYBIT_TESTNET", c.Exchange.Testnet)
	if err != nil {
		return err
	}
	c.Exchange.Testnet = testnet

	if v := os.Getenv("SCANNER_SYMBOLS"); v != "" {
		c.Screener.Symbols = splitList(v)
	}
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	return nil
}

// Validate checks the struct tags and the values the tags cannot express
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.Selection(); err != nil {
		return err
	}
	if _, err := bybit.ParseInterval(c.Screener.Interval); err != nil && c.Screener.Source == "bybit" {
		return err
	}
	return nil
}

// Params converts the indicator settings
func (c *Config) Params() indicators.Params {
	ic := c.Indicators
	p := indicators.DefaultParams()
	p.RSIPeriod = ic.RSIPeriod
	p.RSIOversold = ic.RSIOversold
	p.RSIOverbought = ic.RSIOverbought
	p.MACDFast = ic.MACDFast
	p.MACDSlow = ic.MACDSlow
	p.MACDSignal = ic.MACDSignal
	p.BollingerWindow = ic.BollingerWindow
	p.BollingerStdDev = ic.BollingerStdDev
	p.EMAShort = ic.EMAShort
	p.EMAMedium = ic.EMAMedium
	p.EMALong = ic.EMALong
	p.StochWindow = ic.StochWindow
	p.StochSmooth = ic.StochSmooth
	p.StochOversold = ic.StochOversold
	p.StochOverbought = ic.StochOverbought
	p.VWAPWindow = ic.VWAPWindow
	p.VWEMAShort = ic.VWEMAShort
	p.VWEMALong = ic.VWEMALong
	p.FVGLookback = ic.FVGLookback
	p.BOSWindow = ic.BOSWindow
	p.StrongThreshold = ic.StrongThreshold
	return p
}

// Selection parses the enabled indicator list
func (c *Config) Selection() (indicators.Selection, error) {
	return indicators.ParseSelection(strings.Join(c.Indicators.Enabled, ","))
}

// BybitConfig converts the exchange settings for the Bybit client
func (c *Config) BybitConfig() bybit.Config {
	return bybit.Config{
		APIKey:    c.Exchange.APIKey,
		APISecret: c.Exchange.APISecret,
		Testnet:   c.Exchange.Testnet,
		BaseURL:   c.Exchange.BaseURL,
		Category:  c.Exchange.Category,

		RequestsPerSecond: c.Exchange.RequestsPerSecond,
		BreakerThreshold:  c.Exchange.BreakerThreshold,
		BreakerTimeout:    c.Exchange.BreakerTimeout,
	}
}

// ScanConfig converts the screener settings
func (c *Config) ScanConfig() screener.Config {
	return screener.Config{
		QuoteAsset:     c.Screener.QuoteAsset,
		MinQuoteVolume: c.Screener.MinQuoteVolume,
		Universe:       c.Screener.Universe,
		Symbols:        c.Screener.Symbols,
		Interval:       c.Screener.Interval,
		KlineLimit:     c.Screener.KlineLimit,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
}
