package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeCandles(t *testing.T, root, symbol string, n int) {
	t.Helper()
	dir := filepath.Join(root, "bybit", "spot", symbol, "60")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var sb strings.Builder
	sb.WriteString("timestamp,open,high,low,close,volume\n")
	for i := 0; i < n; i++ {
		p := 100 + 8*math.Sin(float64(i)/6)
		fmt.Fprintf(&sb, "%s,%.4f,%.4f,%.4f,%.4f,%d\n",
			start.Add(time.Duration(i)*time.Hour).Format("2006-01-02 15:04:05"), p-0.2, p+1, p-1, p, 1000+i%9*10)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "candles.csv"), []byte(sb.String()), 0o644))
}

func baseArgs(root string) []string {
	return []string{"-env", filepath.Join(root, "missing.env"), "-source", "csv", "-data-root", root, "-log-level", "error"}
}

func TestRun_CSVSnapshotAndExports(t *testing.T) {
	root := t.TempDir()
	writeCandles(t, root, "BTCUSDT", 120)
	jsonPath := filepath.Join(root, "out", "btc.json")
	xlsxPath := filepath.Join(root, "out", "btc.xlsx")

	var out bytes.Buffer
	args := append(baseArgs(root), "-symbol", "btcusdt", "-interval", "1h", "-limit", "80", "-events", "-json", jsonPath, "-xlsx", xlsxPath)
	require.NoError(t, run(context.Background(), args, &out))

	assert.Contains(t, out.String(), "BTCUSDT 1h SIGNALS")
	assert.Contains(t, out.String(), "BREAKS OF STRUCTURE")

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "BTCUSDT", resp["symbol"])
	assert.Equal(t, float64(80), resp["bars"])
	assert.Contains(t, resp, "snapshot")

	fx, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer fx.Close()
	rows, err := fx.GetRows("Series")
	require.NoError(t, err)
	assert.Len(t, rows, 81)
}

func TestRun_Since(t *testing.T) {
	root := t.TempDir()
	writeCandles(t, root, "BTCUSDT", 120)
	jsonPath := filepath.Join(root, "since.json")

	var out bytes.Buffer
	args := append(baseArgs(root), "-symbol", "BTCUSDT", "-since", "2024-01-04", "-json", jsonPath)
	require.NoError(t, run(context.Background(), args, &out))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, float64(48), resp["bars"])

	err = run(context.Background(), append(baseArgs(root), "-symbol", "BTCUSDT", "-since", "2025-01-01"), &out)
	assert.ErrorContains(t, err, "no 1h bars")

	err = run(context.Background(), append(baseArgs(root), "-since", "yesterday"), &out)
	assert.ErrorContains(t, err, "YYYY-MM-DD")
}

func TestRun_IndicatorSelection(t *testing.T) {
	root := t.TempDir()
	writeCandles(t, root, "ETHUSDT", 60)

	var out bytes.Buffer
	args := append(baseArgs(root), "-symbol", "ETHUSDT", "-indicators", "rsi,macd")
	require.NoError(t, run(context.Background(), args, &out))
	assert.Contains(t, out.String(), "ETHUSDT 1h SIGNALS")

	err := run(context.Background(), append(baseArgs(root), "-symbol", "ETHUSDT", "-indicators", "ichimoku"), &out)
	assert.Error(t, err)
}

func TestRun_InvalidFlags(t *testing.T) {
	root := t.TempDir()
	var out bytes.Buffer

	err := run(context.Background(), append(baseArgs(root), "-xlsx", "series.txt"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xlsx")

	err = run(context.Background(), append(baseArgs(root), "-limit", "5000"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestRun_MissingData(t *testing.T) {
	root := t.TempDir()
	var out bytes.Buffer
	err := run(context.Background(), append(baseArgs(root), "-symbol", "DOGEUSDT"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOGEUSDT")
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &out))
	assert.Contains(t, out.String(), "analyze v")
}
