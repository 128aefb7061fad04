package httpapi

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"agsavn-data/internal/domain"
)

const alertExportSheet = "Alerts"

// AlertExportHeader column order of the alerts spreadsheet.
var AlertExportHeader = []string{
	"Alert ID",
	"Created At",
	"Indicator",
	"Category",
	"Region",
	"Date",
	"Value",
	"Unit",
	"Threshold Type",
	"Threshold Value",
	"Severity",
	"Status",
	"Handled By",
	"Description",
}

var alertExportWidths = []float64{38, 20, 28, 20, 20, 12, 12, 10, 14, 14, 10, 12, 38, 60}

// GenerateAlertExport renders alerts into an xlsx workbook with a frozen header row.
func GenerateAlertExport(items []*domain.AlertSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(alertExportSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range AlertExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(alertExportSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(alertExportSheet, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(alertExportSheet, name, name, alertExportWidths[col]); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, a := range items {
		row := i + 2
		values := []any{
			a.AlertID,
			formatTime(a.CreatedAt),
			a.IndicatorName,
			a.CategoryName,
			a.RegionName,
			a.Date.Format(domain.DateLayout),
			a.Value,
			deref(a.Unit),
			string(a.ThresholdType),
			a.ThresholdValue,
			string(a.Severity),
			string(a.Status),
			deref(a.HandledBy),
			deref(a.Description),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(alertExportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	if err := f.SetPanes(alertExportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
