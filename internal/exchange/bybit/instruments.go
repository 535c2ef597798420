package bybit

import (
	"context"
	"fmt"
	"sort"
)

// InstrumentStatusTrading is the status of a listed, tradable instrument
const InstrumentStatusTrading = "Trading"

// Instrument is the listing information needed to build a symbol universe
type Instrument struct {
	Symbol    string `json:"symbol"`
	Status    string `json:"status"`
	BaseCoin  string `json:"baseCoin"`
	QuoteCoin string `json:"quoteCoin"`
}

// maxInstrumentPages bounds cursor pagination
const maxInstrumentPages = 20

// GetInstruments lists every instrument in category, following the page cursor
func (c *Client) GetInstruments(ctx context.Context, category string) ([]Instrument, error) {
	category = c.categoryOr(category)
	var (
		instruments []Instrument
		cursor      string
	)
	for page := 0; page < maxInstrumentPages; page++ {
		params := map[string]interface{}{"category": category}
		if category != CategorySpot {
			params["limit"] = 1000
		}
		if cursor != "" {
			params["cursor"] = cursor
		}

		var result struct {
			Category       string       `json:"category"`
			List           []Instrument `json:"list"`
			NextPageCursor string       `json:"nextPageCursor"`
		}
		if err := c.call(ctx, endpointInstruments, params, &result); err != nil {
			return nil, fmt.Errorf("failed to get instruments: %w", err)
		}
		instruments = append(instruments, result.List...)

		if result.NextPageCursor == "" || result.NextPageCursor == cursor {
			break
		}
		cursor = result.NextPageCursor
	}
	return instruments, nil
}

// GetSymbols returns the sorted symbols of trading instruments quoted in quoteCoin
func (c *Client) GetSymbols(ctx context.Context, category, quoteCoin string) ([]string, error) {
	instruments, err := c.GetInstruments(ctx, category)
	if err != nil {
		return nil, err
	}
	return FilterSymbols(instruments, quoteCoin), nil
}

// FilterSymbols keeps trading instruments quoted in quoteCoin
func FilterSymbols(instruments []Instrument, quoteCoin string) []string {
	var symbols []string
	for _, in := range instruments {
		if in.Status != "" && in.Status != InstrumentStatusTrading {
			continue
		}
		if quoteCoin != "" && in.QuoteCoin != quoteCoin {
			continue
		}
		symbols = append(symbols, in.Symbol)
	}
	sort.Strings(symbols)
	return symbols
}
