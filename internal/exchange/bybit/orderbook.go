package bybit

import (
	"context"
	"fmt"
	"time"
)

// PriceLevel is one side of an order book row
type PriceLevel struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// OrderBook is a depth snapshot; bids descend and asks ascend by price
type OrderBook struct {
	Symbol    string       `json:"symbol"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
	Timestamp time.Time    `json:"timestamp"`
}

// Spread returns best ask minus best bid, 0 when a side is empty
func (ob *OrderBook) Spread() float64 {
	if len(ob.Bids) == 0 || len(ob.Asks) == 0 {
		return 0
	}
	return ob.Asks[0].Price - ob.Bids[0].Price
}

// GetOrderBook gets the order book for a symbol
func (c *Client) GetOrderBook(ctx context.Context, category, symbol string, limit int) (*OrderBook, error) {
	if limit <= 0 {
		limit = 25
	}
	params := map[string]interface{}{
		"category": c.categoryOr(category),
		"symbol":   symbol,
		"limit":    limit,
	}

	var result struct {
		Symbol string     `json:"s"`
		Bids   [][]string `json:"b"`
		Asks   [][]string `json:"a"`
		Ts     int64      `json:"ts"`
	}
	if err := c.call(ctx, endpointOrderBook, params, &result); err != nil {
		return nil, fmt.Errorf("failed to get order book: %w", err)
	}

	return &OrderBook{
		Symbol:    result.Symbol,
		Bids:      parseLevels(result.Bids),
		Asks:      parseLevels(result.Asks),
		Timestamp: time.UnixMilli(result.Ts),
	}, nil
}

func parseLevels(rows [][]string) []PriceLevel {
	levels := make([]PriceLevel, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		levels = append(levels, PriceLevel{
			Price:    parseFloat64(row[0]),
			Quantity: parseFloat64(row[1]),
		})
	}
	return levels
}
