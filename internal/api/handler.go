package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators/smc"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/logger"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/marketdata"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/monitoring"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/safety"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/screener"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/signals"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// SignalsRequest selects the symbol and indicators of GET /api/signals
type SignalsRequest struct {
	Symbol     string `query:"symbol" validate:"required,alphanum"`
	Interval   string `query:"interval" default:"1h"`
	Limit      int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
	Indicators string `query:"indicators"`
	Events     bool   `query:"events"`
}

// ScreenerRequest controls GET /api/screener
type ScreenerRequest struct {
	Filter   string `query:"filter" default:"all" validate:"oneof=all buy sell strong_buy strong_sell neutral"`
	Sort     string `query:"sort" default:"volume_desc" validate:"oneof=volume_desc volume_asc change_desc change_asc"`
	Universe int    `query:"universe" validate:"gte=0,lte=500"`
	Interval string `query:"interval"`
}

// OrderBookRequest controls GET /api/orderbook
type OrderBookRequest struct {
	Symbol string `query:"symbol" validate:"required,alphanum"`
	Limit  int    `query:"limit" default:"25" validate:"gte=1,lte=200"`
}

// OrderBookResponse is the payload of GET /api/orderbook
type OrderBookResponse struct {
	*bybit.OrderBook
	Spread float64 `json:"spread"`
}

// OutcomeResponse reports a degraded indicator
type OutcomeResponse struct {
	Indicator string `json:"indicator"`
	Error     string `json:"error"`
}

// SignalsResponse is the payload of GET /api/signals
type SignalsResponse struct {
	Symbol      string                 `json:"symbol"`
	Interval    string                 `json:"interval"`
	Bars        int                    `json:"bars"`
	Timestamp   time.Time              `json:"timestamp"`
	Close       float64                `json:"close"`
	Overall     int                    `json:"overall"`
	Category    signals.Category       `json:"category"`
	Snapshot    signals.Snapshot       `json:"snapshot"`
	Degraded    []OutcomeResponse      `json:"degraded,omitempty"`
	BullishFVGs []smc.FairValueGap     `json:"bullish_fvgs,omitempty"`
	BearishFVGs []smc.FairValueGap     `json:"bearish_fvgs,omitempty"`
	BOS         []smc.BreakOfStructure `json:"bos,omitempty"`
}

// NewSignalsResponse summarizes a pipeline run over a non-empty bar series.
// The structural events are included only when events is true.
func NewSignalsResponse(symbol, interval string, bars []types.OHLCV, result *signals.Result, strongThreshold int, events bool) SignalsResponse {
	last := bars[len(bars)-1]
	resp := SignalsResponse{
		Symbol:    symbol,
		Interval:  interval,
		Bars:      len(bars),
		Timestamp: last.Timestamp,
		Close:     last.Close,
		Overall:   result.Snapshot.Overall(),
		Category:  result.Category(strongThreshold),
		Snapshot:  result.Snapshot,
	}
	for _, o := range result.Degraded() {
		resp.Degraded = append(resp.Degraded, OutcomeResponse{Indicator: o.Indicator, Error: o.Err.Error()})
	}
	if events {
		resp.BullishFVGs = result.BullishFVGs
		resp.BearishFVGs = result.BearishFVGs
		resp.BOS = result.BOS
	}
	return resp
}

// SignalsHandler serves the pipeline over the configured provider
type SignalsHandler struct {
	provider marketdata.Provider
	params   indicators.Params
	scan     screener.Config
	health   *monitoring.HealthChecker
	observer signals.Observer
	log      *logger.Logger
}

// RegisterRoutes mounts the API under /api
func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.Signals)
	g.GET("/screener", h.Screener)
	g.GET("/orderbook", h.OrderBook)
}

// Signals runs the pipeline for one symbol
func (h *SignalsHandler) Signals(c echo.Context) error {
	req := &SignalsRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	sel, err := indicators.ParseSelection(req.Indicators)
	if err != nil {
		return BadRequestResponse(c, []ValidationError{{Code: "ERR_ONEOF", Field: "indicators", Message: err.Error()}})
	}
	if _, err := bybit.ParseInterval(req.Interval); err != nil {
		return BadRequestResponse(c, []ValidationError{{Code: "ERR_ONEOF", Field: "interval", Message: err.Error()}})
	}

	bars, err := h.provider.Klines(c.Request().Context(), req.Symbol, req.Interval, req.Limit)
	if err != nil {
		h.recordError(err)
		h.log.Warning("fetch %s failed: %v", req.Symbol, err)
		return ErrorResponse(c, fetchStatus(err), err)
	}
	if h.health != nil {
		h.health.RecordFetch(req.Symbol)
	}

	analyzer := h.analyzer(sel)
	result := analyzer.Run(bars)

	resp := NewSignalsResponse(req.Symbol, req.Interval, bars, result, h.params.StrongThreshold, req.Events)
	return SuccessResponse(c, resp)
}

// Screener scans the universe and returns the filtered, sorted rows
func (h *SignalsHandler) Screener(c echo.Context) error {
	req := &ScreenerRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	filter, err := screener.ParseFilter(req.Filter)
	if err != nil {
		return BadRequestResponse(c, []ValidationError{{Code: "ERR_ONEOF", Field: "filter", Message: err.Error()}})
	}
	order, err := screener.ParseSortOrder(req.Sort)
	if err != nil {
		return BadRequestResponse(c, []ValidationError{{Code: "ERR_ONEOF", Field: "sort", Message: err.Error()}})
	}

	cfg := h.scan
	if req.Universe > 0 {
		cfg.Universe = req.Universe
	}
	if req.Interval != "" {
		cfg.Interval = req.Interval
	}

	s := screener.New(h.provider, h.analyzer(nil), h.health, h.log)
	report, err := s.Scan(c.Request().Context(), cfg)
	if err != nil {
		h.recordError(err)
		return ErrorResponse(c, http.StatusBadGateway, err)
	}
	report.Rows = screener.SortRows(screener.FilterRows(report.Rows, filter), order)
	return SuccessResponse(c, report)
}

// OrderBook returns the current depth for one symbol
func (h *SignalsHandler) OrderBook(c echo.Context) error {
	req := &OrderBookRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return BadRequestResponse(c, verr)
	}
	depth, ok := h.provider.(marketdata.DepthProvider)
	if !ok {
		return ErrorResponse(c, http.StatusNotImplemented, marketdata.ErrDepthUnsupported)
	}

	book, err := depth.OrderBook(c.Request().Context(), req.Symbol, req.Limit)
	if err != nil {
		h.recordError(err)
		return ErrorResponse(c, fetchStatus(err), err)
	}
	return SuccessResponse(c, OrderBookResponse{OrderBook: book, Spread: book.Spread()})
}

func (h *SignalsHandler) analyzer(sel indicators.Selection) *signals.Analyzer {
	opts := []signals.Option{
		signals.WithParams(h.params),
		signals.WithSelection(sel),
		signals.WithLogger(h.log),
	}
	if h.observer != nil {
		opts = append(opts, signals.WithObserver(h.observer))
	}
	return signals.NewAnalyzer(opts...)
}

func (h *SignalsHandler) recordError(err error) {
	if h.health != nil {
		h.health.RecordError(err)
	}
}

// fetchStatus maps a market data error to an HTTP status
func fetchStatus(err error) int {
	var empty *marketdata.EmptySeriesError
	switch {
	case errors.As(err, &empty), bybit.IsSymbolNotFoundError(err):
		return http.StatusNotFound
	case bybit.IsRateLimitError(err):
		return http.StatusTooManyRequests
	case errors.Is(err, safety.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.Is(err, marketdata.ErrDepthUnsupported):
		return http.StatusNotImplemented
	default:
		return http.StatusBadGateway
	}
}
