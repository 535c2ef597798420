package marketdata

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/exchange/bybit"
	"github.com/ducminhle1904/crypto-signal-scanner/pkg/types"
)

// ProgressFunc is told how many bars have been collected so far
type ProgressFunc func(collected int)

// History downloads every bar of symbol with a start time in [start, end],
// oldest first. Bybit pages newest first, so the window is walked backwards
// one full page at a time.
func (p *BybitProvider) History(ctx context.Context, symbol, interval string, start, end time.Time, progress ProgressFunc) ([]types.OHLCV, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("start %s is not before end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	iv, err := bybit.ParseInterval(interval)
	if err != nil {
		return nil, err
	}

	byTime := make(map[int64]types.OHLCV)
	cursor := end
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		from, to := start, cursor
		klines, err := p.client.GetKlines(ctx, bybit.KlineParams{
			Category: p.category,
			Symbol:   symbol,
			Interval: iv,
			Start:    &from,
			End:      &to,
			Limit:    bybit.MaxKlineLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("download %s %s: %w", symbol, interval, err)
		}
		if len(klines) == 0 {
			break
		}

		bars := KlinesToBars(klines)
		for _, b := range bars {
			if !b.Timestamp.Before(start) && !b.Timestamp.After(end) {
				byTime[b.Timestamp.UnixMilli()] = b
			}
		}
		if progress != nil {
			progress(len(byTime))
		}

		oldest := bars[0].Timestamp
		if len(klines) < bybit.MaxKlineLimit || !oldest.After(start) {
			break
		}
		cursor = oldest.Add(-time.Millisecond)
	}

	out := make([]types.OHLCV, 0, len(byTime))
	for _, b := range byTime {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}
