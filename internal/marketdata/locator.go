package marketdata

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileLocator finds candle files under a data root
type FileLocator struct{}

// NewFileLocator creates a new file locator
func NewFileLocator() *FileLocator {
	return &FileLocator{}
}

// ConvertIntervalToMinutes converts interval strings like "5m", "1h", "4h" to
// minute numbers. Numbers pass through, unknown forms are returned as given.
func (f *FileLocator) ConvertIntervalToMinutes(interval string) string {
	if _, err := strconv.Atoi(interval); err == nil {
		return interval
	}

	interval = strings.ToLower(strings.TrimSpace(interval))
	if len(interval) < 2 {
		return interval
	}

	num, err := strconv.Atoi(interval[:len(interval)-1])
	if err != nil {
		return interval
	}

	switch interval[len(interval)-1:] {
	case "m":
		return strconv.Itoa(num)
	case "h":
		return strconv.Itoa(num * 60)
	case "d":
		return strconv.Itoa(num * 24 * 60)
	case "w":
		return strconv.Itoa(num * 7 * 24 * 60)
	default:
		return interval
	}
}

// DataFilePath returns where the candle file of a category/symbol/interval lives, whether or not it exists
func (f *FileLocator) DataFilePath(dataRoot, exchange, category, symbol, interval string) string {
	return filepath.Join(dataRoot, exchange, category, strings.ToUpper(symbol), f.ConvertIntervalToMinutes(interval), "candles.csv")
}

// FindDataFile returns {root}/{exchange}/{category}/{SYMBOL}/{minutes}/candles.csv
// for the first category that has it, or "" when none does
func (f *FileLocator) FindDataFile(dataRoot, exchange, symbol, interval string) string {
	symbol = strings.ToUpper(symbol)
	minutes := f.ConvertIntervalToMinutes(interval)

	for _, category := range categoriesFor(exchange) {
		path := filepath.Join(dataRoot, exchange, category, symbol, minutes, "candles.csv")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindFirstInterval returns the candle file of the smallest interval stored for symbol
func (f *FileLocator) FindFirstInterval(dataRoot, exchange, symbol string) string {
	symbol = strings.ToUpper(symbol)
	best, bestMinutes := "", -1
	for _, category := range categoriesFor(exchange) {
		dir := filepath.Join(dataRoot, exchange, category, symbol)
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			minutes, err := strconv.Atoi(e.Name())
			if err != nil || !e.IsDir() {
				continue
			}
			path := filepath.Join(dir, e.Name(), "candles.csv")
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if bestMinutes < 0 || minutes < bestMinutes {
				best, bestMinutes = path, minutes
			}
		}
	}
	return best
}

func categoriesFor(exchange string) []string {
	switch strings.ToLower(exchange) {
	case "bybit":
		return []string{"spot", "linear", "inverse"}
	default:
		return []string{"spot", "futures", "linear", "inverse"}
	}
}
