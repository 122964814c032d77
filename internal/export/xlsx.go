package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"pomodoro/zenpomo/internal/model"
)

const SheetName = "Productivity"

var columnWidths = []float64{38, 30, 12, 24, 12, 16, 16, 16, 12}

// WriteXLSX writes one sheet with typed numeric cells.
func WriteXLSX(w io.Writer, records []model.CompletionRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(Columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, record := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		cfg := record.Configuration
		values := []interface{}{
			record.ID,
			record.Name,
			record.Date,
			record.TotalFocusSessionsCompleted,
			cfg.FocusDurationSeconds,
			cfg.ShortBreakDurationSeconds,
			cfg.LongBreakDurationSeconds,
			cfg.FocusRepsPerBlock,
			cfg.LongBreakCount,
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %s: %w", record.ID, err)
		}
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
