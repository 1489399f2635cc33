package httpapi

import (
	"bytes"
	"fmt"

	"github.com/JerraForge/hydroponic-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

const exportSheetName = "Measurements"

// GenerateMeasurementExport builds an XLSX with a timestamp column plus one
// column per displayed kind, rows in the given order.
func GenerateMeasurementExport(columns []domain.MeasurementKind, rows []*domain.Measurement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
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

	headers := []any{"Timestamp (UTC)"}
	for _, k := range columns {
		headers = append(headers, k.Label())
	}
	if err := f.SetSheetRow(exportSheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetCellStyle(exportSheetName, "A1", lastHeader, headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}

	for i, m := range rows {
		row := []any{m.Timestamp.UTC().Format("2006-01-02 15:04:05")}
		for _, k := range columns {
			v, _ := m.Value(k)
			row = append(row, v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(exportSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	_ = f.SetColWidth(exportSheetName, "A", "A", 20)
	if len(columns) > 0 {
		lastCol, _ := excelize.ColumnNumberToName(len(columns) + 1)
		_ = f.SetColWidth(exportSheetName, "B", lastCol, 18)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
