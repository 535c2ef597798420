package reporting

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators/smc"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/screener"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/signals"
)

// snapshotLabels are the display names of the snapshot keys
var snapshotLabels = map[string]string{
	signals.KeyRSI:        "RSI",
	signals.KeyMACD:       "MACD",
	signals.KeyBollinger:  "Bollinger Bands",
	signals.KeyEMACross:   "EMA Cross",
	signals.KeyStochastic: "Stochastic",
	signals.KeyVWAP:       "VWAP",
	signals.KeyVWEMACross: "VWEMA Cross",
	signals.KeyFVG:        "Fair Value Gaps",
	signals.KeyBOS:        "Break of Structure",
	signals.KeyCombo:      "FVG + BOS Combo",
}

// DefaultConsoleReporter renders tables with go-pretty
type DefaultConsoleReporter struct{}

// NewDefaultConsoleReporter creates a new console reporter
func NewDefaultConsoleReporter() *DefaultConsoleReporter {
	return &DefaultConsoleReporter{}
}

// PrintSnapshot prints the latest reading of every indicator and the overall verdict
func (r *DefaultConsoleReporter) PrintSnapshot(w io.Writer, symbol, interval string, result *signals.Result, strongThreshold int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%s %s SIGNALS", strings.ToUpper(symbol), interval))
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Indicator", "Value", "Signal"})

	snap := result.Snapshot
	for _, key := range signals.SnapshotKeys {
		if key == signals.KeyOverall {
			continue
		}
		t.AppendRow(table.Row{snapshotLabels[key], snap.Text(key), signals.Marker(snap[key].Signal)})
	}

	t.AppendSeparator()
	category := result.Category(strongThreshold)
	t.AppendRow(table.Row{"Overall", fmt.Sprintf("%+d", snap.Overall()), category.Marker()})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 20, WidthMax: 40, Align: text.AlignLeft},
		{Number: 3, WidthMin: 12, Align: text.AlignLeft},
	})
	t.Render()

	if degraded := result.Degraded(); len(degraded) > 0 {
		fmt.Fprintln(w, "⚠️  Degraded indicators:")
		for _, o := range degraded {
			fmt.Fprintf(w, "   - %s: %v\n", o.Indicator, o.Err)
		}
	}
	fmt.Fprintln(w)
}

// PrintScreener prints one row per scanned symbol
func (r *DefaultConsoleReporter) PrintScreener(w io.Writer, report *screener.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("MARKET SCREENER")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Price", "24h Change", "24h Volume", "RSI", "MACD", "Bollinger", "Overall", "Category"})

	for _, row := range report.Rows {
		t.AppendRow(table.Row{
			row.Symbol,
			formatPrice(row.Price),
			fmt.Sprintf("%+.2f%%", row.Change),
			formatVolume(row.Volume),
			formatOptional(row.RSI),
			formatOptional(row.MACD),
			row.Bollinger,
			fmt.Sprintf("%+d", row.Overall),
			row.Category.Marker(),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "Scanned", report.Scanned, fmt.Sprintf("%d skipped", report.Skipped)})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 8, Align: text.AlignCenter},
	})
	t.Render()
	fmt.Fprintln(w)
}

// PrintEvents lists the detected fair value gaps and structure breaks, oldest first
func (r *DefaultConsoleReporter) PrintEvents(w io.Writer, result *signals.Result) {
	gaps := append(append([]smc.FairValueGap{}, result.BullishFVGs...), result.BearishFVGs...)
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].Index < gaps[j].Index })

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("FAIR VALUE GAPS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Time", "Kind", "Low", "High", "Filled"})
	for _, g := range gaps {
		t.AppendRow(table.Row{g.Timestamp.Format("2006-01-02 15:04"), g.Kind, formatPrice(g.Low), formatPrice(g.High), g.Filled})
	}
	t.Render()

	b := table.NewWriter()
	b.SetOutputMirror(w)
	b.SetTitle("BREAKS OF STRUCTURE")
	b.SetStyle(table.StyleRounded)
	b.AppendHeader(table.Row{"Time", "Kind", "Broken Level"})
	for _, e := range result.BOS {
		b.AppendRow(table.Row{e.Timestamp.Format("2006-01-02 15:04"), e.Kind, formatPrice(e.Price)})
	}
	b.Render()
	fmt.Fprintln(w)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// formatPrice keeps significant digits for sub-dollar prices
func formatPrice(p float64) string {
	switch {
	case p == 0:
		return "-"
	case p < 1:
		return fmt.Sprintf("%.6f", p)
	default:
		return fmt.Sprintf("%.2f", p)
	}
}

// formatVolume abbreviates large quote volumes, e.g. 1.25B
func formatVolume(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
