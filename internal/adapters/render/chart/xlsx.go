package chart

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/stylepulse/internal/domain/ledger"
)

// XLSX layout.
const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	SheetName     = "Trends"
	defaultSheet  = "Sheet1"
	chartAnchor   = "D2"
	tealHex       = "008080"
	solidPattern  = 1
	firstDataRow  = 2
	categoryCol   = 1
	countCol      = 2
	headerCatCell = "A1"
	headerCntCell = "B1"
)

// RenderXLSX writes a workbook with a Category/Count table and a column chart
// over it.
func RenderXLSX(w io.Writer, entries []ledger.Entry) (err error) {
	if len(entries) == 0 {
		return ErrNoData
	}

	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: %w", ErrRender, cerr)
		}
	}()

	if err := f.SetSheetName(defaultSheet, SheetName); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	if err := f.SetCellValue(SheetName, headerCatCell, "Category"); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	if err := f.SetCellValue(SheetName, headerCntCell, axisName); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	for i, e := range entries {
		row := firstDataRow + i
		catCell, err := excelize.CoordinatesToCellName(categoryCol, row)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
		cntCell, err := excelize.CoordinatesToCellName(countCol, row)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
		if err := f.SetCellValue(SheetName, catCell, e.Category.String()); err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
		if err := f.SetCellValue(SheetName, cntCell, e.Count); err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
	}

	lastRow := firstDataRow + len(entries) - 1
	if err := f.AddChart(SheetName, chartAnchor, &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", SheetName),
			Categories: fmt.Sprintf("%s!$A$%d:$A$%d", SheetName, firstDataRow, lastRow),
			Values:     fmt.Sprintf("%s!$B$%d:$B$%d", SheetName, firstDataRow, lastRow),
			Fill:       excelize.Fill{Type: "pattern", Color: []string{tealHex}, Pattern: solidPattern},
		}},
		Title: []excelize.RichTextRun{{Text: chartTitle}},
		YAxis: excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: axisName}}},
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	return nil
}
