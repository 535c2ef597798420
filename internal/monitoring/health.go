package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker tracks the freshness of the market data feed
type HealthChecker struct {
	mu          sync.RWMutex
	maxStale    time.Duration
	lastFetch   time.Time
	lastSymbol  string
	isConnected bool
	errors      []string
	now         func() time.Time
}

type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	LastFetch   time.Time `json:"last_fetch"`
	LastSymbol  string    `json:"last_symbol,omitempty"`
	IsConnected bool      `json:"is_connected"`
	Uptime      string    `json:"uptime"`
	Errors      []string  `json:"errors,omitempty"`
}

// maxErrors bounds the retained error messages
const maxErrors = 10

// NewHealthChecker reports degraded when no successful fetch happened within maxStale
func NewHealthChecker(maxStale time.Duration) *HealthChecker {
	return &HealthChecker{
		maxStale: maxStale,
		errors:   make([]string, 0),
		now:      time.Now,
	}
}

// RecordFetch marks a successful market data fetch and clears past errors
func (h *HealthChecker) RecordFetch(symbol string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastFetch = h.now()
	h.lastSymbol = symbol
	h.isConnected = true
	h.errors = h.errors[:0]
}

// RecordError marks a failed fetch
func (h *HealthChecker) RecordError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.isConnected = false
	h.errors = append(h.errors, err.Error())
	if len(h.errors) > maxErrors {
		h.errors = h.errors[len(h.errors)-maxErrors:]
	}
}

// Status returns the current health and the HTTP code it maps to
func (h *HealthChecker) Status() (HealthStatus, int) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	now := h.now()
	status, code := "healthy", http.StatusOK
	switch {
	case len(h.errors) > 0:
		status, code = "unhealthy", http.StatusInternalServerError
	case !h.isConnected || now.Sub(h.lastFetch) > h.maxStale:
		status, code = "degraded", http.StatusServiceUnavailable
	}

	errs := make([]string, len(h.errors))
	copy(errs, h.errors)
	return HealthStatus{
		Status:      status,
		Timestamp:   now,
		LastFetch:   h.lastFetch,
		LastSymbol:  h.lastSymbol,
		IsConnected: h.isConnected,
		Uptime:      now.Sub(startTime).String(),
		Errors:      errs,
	}, code
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health, code := h.Status()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}
