package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/crypto-signal-scanner/internal/indicators"
	"github.com/ducminhle1904/crypto-signal-scanner/internal/screener"
)

const (
	screenerSheet = "Screener"
	seriesSheet   = "Series"
)

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteScreenerXLSX writes screener rows to a workbook with a single Screener sheet
func (r *DefaultExcelReporter) WriteScreenerXLSX(rows []screener.Row, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()
	fx.SetSheetName(fx.GetSheetName(0), screenerSheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}
	if err := r.writeScreenerSheet(fx, screenerSheet, rows, styles); err != nil {
		return err
	}
	return fx.SaveAs(path)
}

// WriteSeriesXLSX writes every bar of an annotated frame with all of its derived columns
func (r *DefaultExcelReporter) WriteSeriesXLSX(symbol string, frame *indicators.Frame, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()
	fx.SetSheetName(fx.GetSheetName(0), seriesSheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}
	if err := r.writeSeriesSheet(fx, seriesSheet, symbol, frame, styles); err != nil {
		return err
	}
	return fx.SaveAs(path)
}

func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	lightBorder := []excelize.Border{
		{Type: "left", Color: "E0E0E0", Style: 1},
		{Type: "right", Color: "E0E0E0", Style: 1},
		{Type: "bottom", Color: "E0E0E0", Style: 1},
	}

	// Header style - Dark slate gray background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	styles.NumberStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    4, // #,##0.00
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt:    10, // 0.00%
		Alignment: &excelize.Alignment{Horizontal: "right"},
		Border:    lightBorder,
	})
	if err != nil {
		return styles, err
	}

	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{Border: lightBorder})
	if err != nil {
		return styles, err
	}

	styles.DateStyle, err = fx.NewStyle(&excelize.Style{
		CustomNumFmt: stringPtr("yyyy-mm-dd hh:mm"),
		Border:       lightBorder,
	})
	if err != nil {
		return styles, err
	}

	// Buy style (light green background)
	styles.BuyStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "008000", Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"E6FFE6"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    lightBorder,
	})
	if err != nil {
		return styles, err
	}

	// Sell style (light red background)
	styles.SellStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "C00000", Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"FFE6E6"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    lightBorder,
	})
	if err != nil {
		return styles, err
	}

	return styles, nil
}

func (r *DefaultExcelReporter) writeScreenerSheet(fx *excelize.File, sheet string, rows []screener.Row, styles ExcelStyles) error {
	headers := ScreenerHeaders()
	if err := writeHeaderRow(fx, sheet, headers, styles); err != nil {
		return err
	}
	fx.SetColWidth(sheet, "A", "A", 14)
	fx.SetColWidth(sheet, "B", "F", 13)
	fx.SetColWidth(sheet, "G", "G", 32)
	fx.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	keys := signalKeys()
	for i, row := range rows {
		excelRow := i + 2
		values := []interface{}{
			row.Symbol,
			row.Price,
			row.Change / 100,
			row.Volume,
			optionalCell(row.RSI),
			optionalCell(row.MACD),
			row.Bollinger,
		}
		for _, k := range keys {
			values = append(values, row.Signals[k])
		}
		values = append(values, row.Overall, string(row.Category))

		cell, _ := excelize.CoordinatesToCellName(1, excelRow)
		if err := fx.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}

		rowStyles := []int{styles.BaseStyle, styles.NumberStyle, styles.PercentStyle, styles.NumberStyle, styles.NumberStyle, styles.NumberStyle, styles.BaseStyle}
		for col, style := range rowStyles {
			setStyle(fx, sheet, col+1, excelRow, style)
		}
		for j, k := range keys {
			setStyle(fx, sheet, len(rowStyles)+j+1, excelRow, signalStyle(row.Signals[k], styles))
		}
		setStyle(fx, sheet, len(values)-1, excelRow, signalStyle(row.Overall, styles))
		setStyle(fx, sheet, len(values), excelRow, signalStyle(row.Overall, styles))
	}

	if len(rows) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(headers), len(rows)+1)
		if err := fx.AutoFilter(sheet, "A1:"+last, nil); err != nil {
			return err
		}
	}
	return nil
}

func (r *DefaultExcelReporter) writeSeriesSheet(fx *excelize.File, sheet, symbol string, frame *indicators.Frame, styles ExcelStyles) error {
	derived := frame.Columns()
	headers := append([]string{"Timestamp", "Open", "High", "Low", "Close", "Volume"}, derived...)
	if err := writeHeaderRow(fx, sheet, headers, styles); err != nil {
		return err
	}
	fx.SetColWidth(sheet, "A", "A", 18)
	fx.SetPanes(sheet, &excelize.Panes{Freeze: true, XSplit: 1, YSplit: 1, TopLeftCell: "B2", ActivePane: "bottomRight"})
	fx.SetDocProps(&excelize.DocProperties{Title: symbol + " indicator series"})

	for i := 0; i < frame.Len(); i++ {
		bar := frame.Bar(i)
		values := []interface{}{bar.Timestamp, bar.Open, bar.High, bar.Low, bar.Close, bar.Volume}
		for _, col := range derived {
			values = append(values, frameCell(frame, col, i))
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := fx.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		setStyle(fx, sheet, 1, i+2, styles.DateStyle)
	}
	return nil
}

func writeHeaderRow(fx *excelize.File, sheet string, headers []string, styles ExcelStyles) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := fx.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}
	return nil
}

// frameCell returns the value of any column kind; NaN becomes an empty cell
func frameCell(frame *indicators.Frame, col string, i int) interface{} {
	if v, ok := frame.FloatAt(col, i); ok {
		return v
	}
	if v, ok := frame.IntAt(col, i); ok {
		return v
	}
	if v, ok := frame.FlagAt(col, i); ok {
		return v
	}
	return nil
}

func optionalCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func signalStyle(signal int, styles ExcelStyles) int {
	switch {
	case signal > 0:
		return styles.BuyStyle
	case signal < 0:
		return styles.SellStyle
	default:
		return styles.BaseStyle
	}
}

func setStyle(fx *excelize.File, sheet string, col, row, style int) {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	fx.SetCellStyle(sheet, cell, cell, style)
}

func stringPtr(s string) *string {
	return &s
}

// Package-level convenience function
func WriteScreenerXLSX(rows []screener.Row, path string) error {
	return NewDefaultExcelReporter().WriteScreenerXLSX(rows, path)
}

// Package-level convenience function
func WriteSeriesXLSX(symbol string, frame *indicators.Frame, path string) error {
	return NewDefaultExcelReporter().WriteSeriesXLSX(symbol, frame, path)
}
