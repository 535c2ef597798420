package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/marketdata"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

type fakeSource struct {
	failing map[string]bool
	calls   []string
}

func (f *fakeSource) History(ctx context.Context, symbol, interval string, start, end time.Time, progress marketdata.ProgressFunc) ([]types.OHLCV, error) {
	f.calls = append(f.calls, symbol+"/"+interval)
	if f.failing[symbol] {
		return nil, errors.New("connection reset")
	}
	bars := make([]types.OHLCV, 5)
	for i := range bars {
		bars[i] = types.OHLCV{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: 10, High: 11, Low: 9, Close: 10.5, Volume: 2}
	}
	if progress != nil {
		progress(len(bars))
	}
	return bars, nil
}

func useFake(t *testing.T, fake *fakeSource) {
	t.Helper()
	orig := newSource
	newSource = func(cfg bybit.Config, category string) historySource { return fake }
	t.Cleanup(func() { newSource = orig })
}

func baseArgs(root string) []string {
	return []string{"-env", filepath.Join(root, "missing.env"), "-data-root", root, "-log-level", "error"}
}

func TestRun_WritesCSVLayout(t *testing.T) {
	root := t.TempDir()
	fake := &fakeSource{}
	useFake(t, fake)

	var out bytes.Buffer
	args := append(baseArgs(root), "-symbols", "btcusdt,ethusdt", "-intervals", "1h,15m", "-start", "2024-01-01", "-end", "2024-01-02")
	require.NoError(t, run(context.Background(), args, &out))

	assert.Equal(t, []string{"BTCUSDT/1h", "BTCUSDT/15m", "ETHUSDT/1h", "ETHUSDT/15m"}, fake.calls)
	assert.Contains(t, out.String(), "All downloads completed")

	p := marketdata.NewCSVProvider(root, "bybit", nil)
	bars, err := p.Klines(context.Background(), "ETHUSDT", "15m", 0)
	require.NoError(t, err)
	require.Len(t, bars, 5)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), bars[0].Timestamp)
}

func TestRun_ReportsFailures(t *testing.T) {
	root := t.TempDir()
	useFake(t, &fakeSource{failing: map[string]bool{"XRPUSDT": true}})

	var out bytes.Buffer
	err := run(context.Background(), append(baseArgs(root), "-symbols", "BTCUSDT,XRPUSDT"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 downloads failed")
	assert.Contains(t, out.String(), "BTCUSDT 1h: 5 candles")
}

func TestRun_InvalidFlags(t *testing.T) {
	root := t.TempDir()
	useFake(t, &fakeSource{})
	var out bytes.Buffer

	err := run(context.Background(), append(baseArgs(root), "-intervals", "8h"), &out)
	require.Error(t, err)

	err = run(context.Background(), append(baseArgs(root), "-start", "yesterday"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start date")

	err = run(context.Background(), append(baseArgs(root), "-start", "2024-02-01", "-end", "2024-01-01"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be before")

	err = run(context.Background(), append(baseArgs(root), "-category", "options"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category")
}
